// Package jsmod implements the Export Extractor described in
// SPEC_FULL.md §4.5: it parses a single JS/TS module and reduces it to the
// (default, named) pair of EntityDeclarations the Diff Engine compares,
// resolving "export * from", "export {a} from" and "export * as ns from"
// re-exports recursively against the package's own Content Source.
//
// Grounded on server/js.go's validateJSFile, which parses with the same
// github.com/ije/esbuild-internal/js_parser and already reads named exports
// straight off ast.NamedExports rather than hand-walking the AST for that
// part; this package leans on the same field, plus ast.NamedImports to tell
// a local export apart from a re-export.
package jsmod

// EntityKind classifies the runtime construct backing an exported binding.
type EntityKind int

const (
	KindVar EntityKind = iota
	KindFunction
	KindClass
	KindOther
)

func (k EntityKind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	default:
		return "other"
	}
}

// EntityDeclaration is what an export name resolves to: not the value, just
// the shape of the binding that produces it.
type EntityDeclaration struct {
	Kind EntityKind
	Name string
}

// Exports is a module's export surface, per SPEC_FULL.md §4.5.
type Exports struct {
	Default *EntityDeclaration
	Named   map[string]EntityDeclaration
}
