package report

import (
	"encoding/json"
	"io"

	"github.com/esm-dev/breakcheck/internal/diffengine"
)

// jsonBrokenExport and friends mirror diffengine's types as a stable wire
// shape, per SPEC_FULL.md's "-json" supplemental report mode.
type jsonBrokenExport struct {
	Label string `json:"label"`
	Break string `json:"break"`
}

type jsonBrokenEntry struct {
	Kind          string             `json:"kind"`
	Name          string             `json:"name"`
	Missing       bool               `json:"missing"`
	BrokenExports []jsonBrokenExport `json:"brokenExports,omitempty"`
}

type jsonReport struct {
	RemovedAssets []string          `json:"removedAssets"`
	BrokenEntries []jsonBrokenEntry `json:"brokenEntries"`
	IssueCount    int               `json:"issueCount"`
}

// WriteJSON serializes r for machine consumption. Exit-code semantics are
// unaffected: the caller still derives the exit code from r.IssueCount().
func WriteJSON(w io.Writer, r *diffengine.Report) error {
	out := jsonReport{
		RemovedAssets: r.RemovedAssets,
		IssueCount:    r.IssueCount(),
	}
	if out.RemovedAssets == nil {
		out.RemovedAssets = []string{}
	}
	for _, entry := range r.BrokenEntries {
		je := jsonBrokenEntry{Kind: entry.Kind, Name: entry.Name, Missing: entry.Missing}
		for _, be := range entry.BrokenExports {
			je.BrokenExports = append(je.BrokenExports, jsonBrokenExport{Label: be.Label, Break: be.Break.String()})
		}
		out.BrokenEntries = append(out.BrokenEntries, je)
	}
	if out.BrokenEntries == nil {
		out.BrokenEntries = []jsonBrokenEntry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
