// Package report implements the Reporter described in SPEC_FULL.md §4.8:
// it formats a diffengine.Report as ANSI text (or, behind the
// supplemental "-json" flag, as JSON for CI consumption) and computes the
// process exit status. ANSI escape sequences and header wording are
// grounded verbatim in original_source/src/diff/printer.rs, including its
// pluralization quirk (every nonzero count reads "breaking changes", only
// zero reads "breaking change" singular) — kept for fidelity to the tool
// this was distilled from, not fixed as a bug, since the spec names no
// different wording.
package report

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/esm-dev/breakcheck/internal/diffengine"
)

const (
	styleBold  = "\x1b[1m"
	styleRed   = "\x1b[31m"
	styleReset = "\x1b[0m"
)

// ColorEnabled decides whether ANSI styling should be written, following
// the "detect, don't assume" judgment server/server.go applies with
// NO_COLOR for its long-lived logger, adapted to a one-shot CLI: check the
// destination is a real terminal, and honor NO_COLOR when set.
func ColorEnabled(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Printer writes a diffengine.Report as the ANSI text report.
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

// PrintReport writes every section of r, then the final tally header.
func (p *Printer) PrintReport(r *diffengine.Report, elapsedSeconds float64) {
	p.printAssetIssues(r)
	p.printEntryIssues(r)
	p.printTally(r.IssueCount(), fmt.Sprintf("in %.2fs.", elapsedSeconds), r.HasBreakingChanges())
}

func (p *Printer) printAssetIssues(r *diffengine.Report) {
	if len(r.RemovedAssets) == 0 {
		return
	}
	p.printTally(len(r.RemovedAssets), "to assets:", true)
	for _, path := range r.RemovedAssets {
		fmt.Fprintf(p.w, "  - %s was removed.\n", path)
	}
}

func (p *Printer) printEntryIssues(r *diffengine.Report) {
	for _, entry := range r.BrokenEntries {
		count := entry.IssueCount()
		if count == 0 {
			continue
		}

		if entry.Kind == "main" {
			p.printTally(count, fmt.Sprintf("to %s entry:", entry.Kind), true)
		} else {
			p.printTally(count, fmt.Sprintf("to %s entry %s:", entry.Kind, entry.Name), true)
		}

		if entry.Missing {
			fmt.Fprintln(p.w, "  - was removed.")
			continue
		}
		for _, be := range entry.BrokenExports {
			fmt.Fprintf(p.w, "  - %s was %s.\n", be.Label, be.Break)
		}
	}
}

func (p *Printer) printTally(count int, suffix string, isError bool) {
	noun := "breaking changes"
	if count == 0 {
		noun = "breaking change"
	}
	prefix := fmt.Sprintf("Found %d %s", count, noun)

	if !p.color {
		fmt.Fprintf(p.w, "\n%s %s\n", prefix, suffix)
		return
	}
	if isError {
		prefix = styleRed + prefix
	}
	fmt.Fprintf(p.w, "%s\n%s %s%s\n", styleBold, prefix, suffix, styleReset)
}

// ExitCode returns 0 when the report found nothing, 1 otherwise. Internal
// errors (exit code 2) are the caller's responsibility: they never produce
// a Report at all.
func ExitCode(r *diffengine.Report) int {
	if r.HasBreakingChanges() {
		return 1
	}
	return 0
}
