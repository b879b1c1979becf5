// Package diffengine implements the Diff Engine described in
// SPEC_FULL.md §4.7: asset set-difference, per-entry-class set-difference,
// and per-export set-difference, classifying each loss as Removed or
// RemovedOrRenamed. Grounded in original_source/src/diff/analyzer.rs,
// which is the up-to-date orchestrator in original_source/src/diff (mod.rs,
// comparer.rs and modules.rs are earlier iterations superseded by it).
//
// Matching default/named exports present on both sides are never compared
// further — original_source leaves that branch as an explicit todo!(), and
// spec.md's Non-goals exclude semantic/behavioral diffing, so presence is
// the whole story here.
package diffengine

import "fmt"

// BreakType classifies how a public export was lost.
type BreakType int

const (
	// Removed means the export existed and now resolves to nothing.
	Removed BreakType = iota
	// RemovedOrRenamed means a named export disappeared; since renames and
	// removals look identical from the outside, they're reported as one.
	RemovedOrRenamed
)

func (b BreakType) String() string {
	if b == Removed {
		return "removed"
	}
	return "removed or renamed"
}

// BrokenExport is a single lost export within an entry.
type BrokenExport struct {
	Label string
	Break BreakType
}

// BrokenEntry reports what changed for one named entry point (main, bin,
// browser, or exports kind).
type BrokenEntry struct {
	Kind          string
	Name          string
	Missing       bool
	BrokenExports []BrokenExport
}

// IssueCount is 1 for a missing entry, or the number of broken exports
// otherwise.
func (e BrokenEntry) IssueCount() int {
	if e.Missing {
		return 1
	}
	return len(e.BrokenExports)
}

// Report is the full comparison result between a previous and current
// package.
type Report struct {
	RemovedAssets []string
	BrokenEntries []BrokenEntry
}

// IssueCount sums every breaking change the report found.
func (r Report) IssueCount() int {
	count := len(r.RemovedAssets)
	for _, e := range r.BrokenEntries {
		count += e.IssueCount()
	}
	return count
}

// HasBreakingChanges reports whether the comparison found anything at all.
func (r Report) HasBreakingChanges() bool {
	return r.IssueCount() > 0
}

func defaultExportLabel() string { return "Default export" }

func namedExportLabel(name string) string { return fmt.Sprintf("Named export '%s'", name) }
