package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Record   string
	Message  string
}

// FormatShortDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation intended for CLI short output and golden files:
//
//	<severity> <ERR_ID> <file>[#record] <message>
//
// Entries are sorted by path, record, severity and code; the result is empty
// when there is nothing to print.
func FormatShortDiagnostics(diags []*Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		if d == nil {
			continue
		}
		rendered = append(rendered, shortDiagnostic{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Path:     normalizePath(d.Where.File),
			Record:   d.Where.Record,
			Message:  sanitizeMessage(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, shortDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     normalizePath(note.Where.File),
				Record:   note.Where.Record,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Record != dj.Record {
			return di.Record < dj.Record
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for i, d := range rendered {
		where := d.Path
		if where == "" {
			where = "-"
		}
		if d.Record != "" {
			where += "#" + d.Record
		}
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, where, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	if path == "" {
		return ""
	}
	p := filepath.ToSlash(path)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
