package jsmod

import (
	"sort"
	"testing"
)

type mapSource map[string]string

func (m mapSource) AllFiles() ([]string, error) {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (m mapSource) AssetList() ([]string, error) { return nil, nil }

func (m mapSource) LoadFile(path string) ([]byte, bool, error) {
	data, ok := m[path]
	if !ok {
		return nil, false, nil
	}
	return []byte(data), true, nil
}

func TestExtractLocalDeclarations(t *testing.T) {
	src := mapSource{
		"index.js": `
			export function greet() {}
			export class Widget {}
			export const count = 1;
			function hidden() {}
			export default greet;
		`,
	}
	ex, err := NewExtractor(src)
	if err != nil {
		t.Fatal(err)
	}
	exports, err := ex.Extract("index.js")
	if err != nil {
		t.Fatal(err)
	}
	if exports.Default == nil || exports.Default.Kind != KindFunction || exports.Default.Name != "greet" {
		t.Fatalf("expected default to resolve to function greet, got %+v", exports.Default)
	}
	if len(exports.Named) != 3 {
		t.Fatalf("expected 3 named exports, got %d: %+v", len(exports.Named), exports.Named)
	}
	if exports.Named["greet"].Kind != KindFunction {
		t.Fatal("expected greet to be a function")
	}
	if exports.Named["Widget"].Kind != KindClass {
		t.Fatal("expected Widget to be a class")
	}
	if exports.Named["count"].Kind != KindVar {
		t.Fatal("expected count to be a var")
	}
	if _, ok := exports.Named["hidden"]; ok {
		t.Fatal("hidden should not be exported")
	}
}

func TestExtractReExportStar(t *testing.T) {
	src := mapSource{
		"utils.js": `export function helper() {}`,
		"index.js": `export * from "./utils";`,
	}
	ex, err := NewExtractor(src)
	if err != nil {
		t.Fatal(err)
	}
	exports, err := ex.Extract("index.js")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exports.Named["helper"]; !ok {
		t.Fatalf("expected helper to be re-exported, got %+v", exports.Named)
	}
}

func TestExtractNamedReExportWithAlias(t *testing.T) {
	src := mapSource{
		"impl.js": `export function run() {}`,
		"index.js": `export { run as execute } from "./impl";`,
	}
	ex, err := NewExtractor(src)
	if err != nil {
		t.Fatal(err)
	}
	exports, err := ex.Extract("index.js")
	if err != nil {
		t.Fatal(err)
	}
	decl, ok := exports.Named["execute"]
	if !ok {
		t.Fatalf("expected execute to be present, got %+v", exports.Named)
	}
	if decl.Kind != KindFunction || decl.Name != "run" {
		t.Fatalf("expected execute to resolve to function run, got %+v", decl)
	}
	if _, ok := exports.Named["run"]; ok {
		t.Fatal("run should not itself be re-exported under its original name")
	}
}

func TestExtractReExportedDefault(t *testing.T) {
	src := mapSource{
		"impl.js": `export default class Widget {}`,
		"index.js": `export { default } from "./impl";`,
	}
	ex, err := NewExtractor(src)
	if err != nil {
		t.Fatal(err)
	}
	exports, err := ex.Extract("index.js")
	if err != nil {
		t.Fatal(err)
	}
	if exports.Default == nil || exports.Default.Kind != KindClass || exports.Default.Name != "Widget" {
		t.Fatalf("expected default to resolve to class Widget, got %+v", exports.Default)
	}
}

func TestExtractCyclicReExportDetected(t *testing.T) {
	src := mapSource{
		"a.js": `export * from "./b";`,
		"b.js": `export * from "./a";`,
	}
	ex, err := NewExtractor(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ex.Extract("a.js"); err == nil {
		t.Fatal("expected a cyclic re-export error")
	}
}

func TestExtractNamespaceReExport(t *testing.T) {
	src := mapSource{
		"utils.js": `export function helper() {}`,
		"index.js": `export * as utils from "./utils";`,
	}
	ex, err := NewExtractor(src)
	if err != nil {
		t.Fatal(err)
	}
	exports, err := ex.Extract("index.js")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exports.Named["utils"]; ok {
		t.Fatalf("expected no opaque 'utils' placeholder, members should be spread under dotted keys, got %+v", exports.Named)
	}
	decl, ok := exports.Named["utils.helper"]
	if !ok {
		t.Fatalf("expected utils.helper to be present, got %+v", exports.Named)
	}
	if decl.Kind != KindFunction || decl.Name != "helper" {
		t.Fatalf("expected utils.helper to resolve to function helper, got %+v", decl)
	}
}
