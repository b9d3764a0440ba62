package diagfmt

import (
	"encoding/json"
	"io"

	"wgsmaster/internal/diag"
)

// LocationJSON points at a file and a record.
type LocationJSON struct {
	File   string `json:"file,omitempty"`
	Record string `json:"record,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Category string       `json:"category"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	RunID       string           `json:"run_id,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

func makeLocation(loc diag.Location, opts JSONOpts) LocationJSON {
	return LocationJSON{
		File:   formatPath(loc.File, opts.PathMode, opts.BaseDir),
		Record: loc.Record,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)

	for _, d := range items[:maxItems] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Category: d.Code.Category().String(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Where, opts),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Location: makeLocation(note.Where, opts)}
			}
		}
		diagnostics = append(diagnostics, dj)
	}

	return DiagnosticsOutput{
		RunID:       opts.RunID,
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Dropped:     bag.Dropped() + len(items) - maxItems,
	}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, opts))
}
