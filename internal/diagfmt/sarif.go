package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"

	"wgsmaster/internal/diag"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool         `json:"tool"`
	Invocations       []sarifInvocation `json:"invocations,omitempty"`
	AutomationDetails *sarifAutomation  `json:"automationDetails,omitempty"`
	Results           []sarifResult     `json:"results"`
}

type sarifAutomation struct {
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID        string       `json:"id"`
	ShortDesc sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	Physical *sarifPhysical `json:"physicalLocation,omitempty"`
	Logical  []sarifLogical `json:"logicalLocations,omitempty"`
}

type sarifPhysical struct {
	Artifact sarifArtifact `json:"artifactLocation"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifLogical struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevInfo:
		return "note"
	case diag.SevWarning:
		return "warning"
	}
	return "error"
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0). Records appear as
// logical locations inside the file's artifact.
func Sarif(w io.Writer, bag *diag.Bag, meta SarifRunMeta) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion}},
		Results: make([]sarifResult, 0, bag.Len()),
	}
	if meta.RunID != "" {
		run.AutomationDetails = &sarifAutomation{GUID: meta.RunID}
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}
	seen := make(map[diag.Code]bool)
	for _, d := range bag.Items() {
		if !seen[d.Code] {
			seen[d.Code] = true
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
				ID:        d.Code.ID(),
				ShortDesc: sarifMessage{Text: d.Code.Title()},
			})
		}
		res := sarifResult{
			RuleID:  d.Code.ID(),
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		if !d.Where.IsZero() {
			var loc sarifLocation
			if d.Where.File != "" {
				loc.Physical = &sarifPhysical{Artifact: sarifArtifact{URI: filepath.ToSlash(d.Where.File)}}
			}
			if d.Where.Record != "" {
				loc.Logical = []sarifLogical{{Name: d.Where.Record, Kind: "object"}}
			}
			res.Locations = []sarifLocation{loc}
		}
		run.Results = append(run.Results, res)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Version: "2.1.0", Schema: sarifSchema, Runs: []sarifRun{run}})
}
