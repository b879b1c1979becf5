package diffengine

import (
	"sort"
	"testing"

	"github.com/esm-dev/breakcheck/internal/entries"
)

type fakeSource map[string]string

func (f fakeSource) AllFiles() ([]string, error) {
	var out []string
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (f fakeSource) AssetList() ([]string, error) {
	var out []string
	for k := range f {
		if k == "README.md" {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f fakeSource) LoadFile(path string) ([]byte, bool, error) {
	data, ok := f[path]
	if !ok {
		return nil, false, nil
	}
	return []byte(data), true, nil
}

func mainTable(path string) entries.Table {
	return entries.Table{
		entries.Main: {"main": {Name: "main", Kind: entries.Main, Path: path, Ext: ".js"}},
	}
}

func TestDiffNoChanges(t *testing.T) {
	src := "export function greet() {}\nexport default greet;\n"
	previous := fakeSource{"index.js": src, "README.md": "hi"}
	current := fakeSource{"index.js": src, "README.md": "hi"}

	report, err := Diff(previous, current, mainTable("index.js"), mainTable("index.js"))
	if err != nil {
		t.Fatal(err)
	}
	if report.HasBreakingChanges() {
		t.Fatalf("expected no breaking changes, got %+v", report)
	}
}

func TestDiffRemovedNamedExport(t *testing.T) {
	previous := fakeSource{"index.js": "export function greet() {}\nexport function farewell() {}\n"}
	current := fakeSource{"index.js": "export function greet() {}\n"}

	report, err := Diff(previous, current, mainTable("index.js"), mainTable("index.js"))
	if err != nil {
		t.Fatal(err)
	}
	if !report.HasBreakingChanges() {
		t.Fatal("expected breaking changes")
	}
	if len(report.BrokenEntries) != 1 || len(report.BrokenEntries[0].BrokenExports) != 1 {
		t.Fatalf("expected one broken export, got %+v", report.BrokenEntries)
	}
	be := report.BrokenEntries[0].BrokenExports[0]
	if be.Break != RemovedOrRenamed {
		t.Fatalf("expected RemovedOrRenamed, got %v", be.Break)
	}
}

func TestDiffRemovedDefaultExport(t *testing.T) {
	previous := fakeSource{"index.js": "export default function() {}\n"}
	current := fakeSource{"index.js": "export function named() {}\n"}

	report, err := Diff(previous, current, mainTable("index.js"), mainTable("index.js"))
	if err != nil {
		t.Fatal(err)
	}
	exports := report.BrokenEntries[0].BrokenExports
	if len(exports) != 1 || exports[0].Break != Removed {
		t.Fatalf("expected a single Removed break for the default export, got %+v", exports)
	}
}

func TestDiffRemovedEntryPoint(t *testing.T) {
	previous := fakeSource{"index.js": "export function greet() {}\n", "extra.js": "export function helper() {}\n"}
	current := fakeSource{"index.js": "export function greet() {}\n"}

	previousEntries := entries.Table{
		entries.Exports: {
			".":       {Name: ".", Kind: entries.Exports, Path: "index.js", Ext: ".js"},
			"./extra": {Name: "./extra", Kind: entries.Exports, Path: "extra.js", Ext: ".js"},
		},
	}
	currentEntries := entries.Table{
		entries.Exports: {
			".": {Name: ".", Kind: entries.Exports, Path: "index.js", Ext: ".js"},
		},
	}

	report, err := Diff(previous, current, previousEntries, currentEntries)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, be := range report.BrokenEntries {
		if be.Name == "./extra" && be.Missing {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ./extra to be reported missing, got %+v", report.BrokenEntries)
	}
}

func TestDiffRemovedAsset(t *testing.T) {
	previous := fakeSource{"index.js": "export default 1;\n", "README.md": "hi"}
	current := fakeSource{"index.js": "export default 1;\n"}

	report, err := Diff(previous, current, mainTable("index.js"), mainTable("index.js"))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.RemovedAssets) != 1 || report.RemovedAssets[0] != "README.md" {
		t.Fatalf("expected README.md reported removed, got %+v", report.RemovedAssets)
	}
}
