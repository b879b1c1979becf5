package jsmod

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ije/esbuild-internal/js_ast"
	"github.com/ije/esbuild-internal/logger"

	"github.com/esm-dev/breakcheck/internal/bcerr"
	"github.com/esm-dev/breakcheck/internal/content"
)

// extractCacheSize bounds the per-invocation memoization cache. A
// breakcheck run parses a handful of modules per package, so this is
// generous headroom rather than a tuned limit.
const extractCacheSize = 512

// Extractor walks a package's Content Source, parsing each module it's
// asked about and resolving re-exports against sibling modules in the same
// source. One Extractor is built per package comparison side (old/new) and
// reused across every entry point it's asked to extract, so the
// hashicorp/golang-lru cache pays off whenever multiple entries share
// re-exported barrels.
type Extractor struct {
	src   content.Source
	cache *lru.Cache[string, *Exports]
}

// NewExtractor builds an Extractor over src.
func NewExtractor(src content.Source) (*Extractor, error) {
	cache, err := lru.New[string, *Exports](extractCacheSize)
	if err != nil {
		return nil, err
	}
	return &Extractor{src: src, cache: cache}, nil
}

// Extract parses filePath and returns its fully resolved export surface,
// following re-exports to other modules in the same Content Source.
func (e *Extractor) Extract(filePath string) (*Exports, error) {
	return e.extract(filePath, nil)
}

func (e *Extractor) extract(filePath string, stack []string) (*Exports, error) {
	for _, seen := range stack {
		if seen == filePath {
			return nil, &bcerr.CyclicReExport{Cycle: append(append([]string{}, stack...), filePath)}
		}
	}
	if cached, ok := e.cache.Get(filePath); ok {
		return cached, nil
	}

	data, ok, err := e.src.LoadFile(filePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &bcerr.ImportNotFound{From: "", Spec: filePath}
	}

	ast, err := parseModule(filePath, data)
	if err != nil {
		return nil, err
	}

	decls, defaultDecl := classifyLocals(&ast)
	stack = append(stack, filePath)

	named := make(map[string]EntityDeclaration)
	for name, ne := range ast.NamedExports {
		if name == "default" {
			continue
		}
		if imp, ok := ast.NamedImports[ne.Ref]; ok && imp.AliasIsStar {
			spread, err := e.resolveNamespaceSpread(&ast, imp, filePath, stack)
			if err != nil {
				return nil, err
			}
			for k, d := range spread {
				named[name+"."+k] = d
			}
			continue
		}
		decl, err := e.resolveExportRef(&ast, ne.Ref, decls, filePath, stack)
		if err != nil {
			return nil, err
		}
		if decl != nil {
			named[name] = *decl
		}
	}

	for _, idx := range ast.ExportStarImportRecords {
		spec := ast.ImportRecords[idx].Path.Text
		target, err := e.extractReExportTarget(filePath, spec, stack)
		if err != nil {
			return nil, err
		}
		if target == nil {
			continue // crosses the package boundary into a bare import specifier
		}
		for n, d := range target.Named {
			named[n] = d
		}
	}

	if defaultDecl == nil {
		if ne, ok := ast.NamedExports["default"]; ok {
			defaultDecl, err = e.resolveExportRef(&ast, ne.Ref, decls, filePath, stack)
			if err != nil {
				return nil, err
			}
		}
	}

	exports := &Exports{Default: defaultDecl, Named: named}
	e.cache.Add(filePath, exports)
	return exports, nil
}

// resolveExportRef turns a Ref found in ast.NamedExports into the
// EntityDeclaration it denotes, following it across a module boundary when
// ast.NamedImports marks it as a re-export. A namespace re-export
// (AliasIsStar) has no single EntityDeclaration to return here — see
// resolveNamespaceSpread, which the caller uses instead whenever the
// export position can hold more than one name; this opaque placeholder
// only covers the remaining case of a namespace aliased straight to the
// module's default export (e.g. "export * as default from ...").
func (e *Extractor) resolveExportRef(ast *js_ast.AST, ref js_ast.Ref, decls map[js_ast.Ref]EntityDeclaration, fromFile string, stack []string) (*EntityDeclaration, error) {
	if imp, ok := ast.NamedImports[ref]; ok {
		record := ast.ImportRecords[imp.ImportRecordIndex]
		target, err := e.extractReExportTarget(fromFile, record.Path.Text, stack)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, nil
		}
		if imp.AliasIsStar {
			return &EntityDeclaration{Kind: KindOther, Name: imp.Alias}, nil
		}
		if imp.Alias == "default" {
			return target.Default, nil
		}
		if d, ok := target.Named[imp.Alias]; ok {
			return &d, nil
		}
		return nil, nil
	}
	if d, ok := decls[ref]; ok {
		return &d, nil
	}
	return nil, nil
}

// resolveNamespaceSpread resolves the module a namespace re-export
// ("export * as ns from './mod'") points at, returning its named exports
// to be folded into the caller's named map under "ns.<name>" keys, per
// SPEC_FULL.md §4.5.
func (e *Extractor) resolveNamespaceSpread(ast *js_ast.AST, imp js_ast.NamedImport, fromFile string, stack []string) (map[string]EntityDeclaration, error) {
	record := ast.ImportRecords[imp.ImportRecordIndex]
	target, err := e.extractReExportTarget(fromFile, record.Path.Text, stack)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, nil
	}
	return target.Named, nil
}

func (e *Extractor) extractReExportTarget(fromFile, spec string, stack []string) (*Exports, error) {
	if !isRelativeSpecifier(spec) {
		return nil, nil
	}
	target, ok, err := resolveSpecifier(e.src, fromFile, spec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &bcerr.ImportNotFound{From: fromFile, Spec: spec}
	}
	return e.extract(target, stack)
}

// classifyLocals builds a lookup from every top-level declaration's symbol
// Ref to the EntityDeclaration it represents, plus the module's own default
// export if it names a function, class, or local identifier directly.
func classifyLocals(ast *js_ast.AST) (map[js_ast.Ref]EntityDeclaration, *EntityDeclaration) {
	decls := make(map[js_ast.Ref]EntityDeclaration)
	var defaultStmt *js_ast.SExportDefault

	for _, part := range ast.Parts {
		for _, stmt := range part.Stmts {
			switch s := stmt.Data.(type) {
			case *js_ast.SFunction:
				if s.Fn.Name != nil {
					decls[s.Fn.Name.Ref] = EntityDeclaration{Kind: KindFunction, Name: symbolName(ast, s.Fn.Name.Ref)}
				}
			case *js_ast.SClass:
				if s.Class.Name != nil {
					decls[s.Class.Name.Ref] = EntityDeclaration{Kind: KindClass, Name: symbolName(ast, s.Class.Name.Ref)}
				}
			case *js_ast.SLocal:
				js_ast.ForEachIdentifierBindingInDecls(s.Decls, func(_ logger.Loc, b *js_ast.BIdentifier) {
					decls[b.Ref] = EntityDeclaration{Kind: KindVar, Name: symbolName(ast, b.Ref)}
				})
			case *js_ast.SEnum:
				decls[s.Name.Ref] = EntityDeclaration{Kind: KindOther, Name: symbolName(ast, s.Name.Ref)}
			case *js_ast.SNamespace:
				decls[s.Name.Ref] = EntityDeclaration{Kind: KindOther, Name: symbolName(ast, s.Name.Ref)}
			case *js_ast.SExportDefault:
				defaultStmt = s
			}
		}
	}

	var defaultDecl *EntityDeclaration
	if defaultStmt != nil {
		defaultDecl = classifyDefault(ast, defaultStmt, decls)
	}
	return decls, defaultDecl
}

func classifyDefault(ast *js_ast.AST, s *js_ast.SExportDefault, decls map[js_ast.Ref]EntityDeclaration) *EntityDeclaration {
	switch v := s.Value.Data.(type) {
	case *js_ast.SFunction:
		name := "default"
		if v.Fn.Name != nil {
			name = symbolName(ast, v.Fn.Name.Ref)
		}
		return &EntityDeclaration{Kind: KindFunction, Name: name}
	case *js_ast.SClass:
		name := "default"
		if v.Class.Name != nil {
			name = symbolName(ast, v.Class.Name.Ref)
		}
		return &EntityDeclaration{Kind: KindClass, Name: name}
	case *js_ast.SExpr:
		if id, ok := v.Value.Data.(*js_ast.EIdentifier); ok {
			if d, ok := decls[id.Ref]; ok {
				return &d
			}
		}
	}
	// a bare expression default ("export default 5") names nothing resolvable
	return nil
}

func symbolName(ast *js_ast.AST, ref js_ast.Ref) string {
	return ast.Symbols[ref.InnerIndex].OriginalName
}
