// Package content implements the Content Source described in
// SPEC_FULL.md §4.3: a uniform facade over a package's shipped files,
// backed either by a live directory tree or by an unpacked release
// archive. Grounded on original_source/src/pkg/contents.rs
// (resolve_contents_in_dir) for the directory walk and
// original_source/src/pkg/tarball.rs (get_files) for the archive variant.
package content

import (
	"sort"
	"strings"
)

// SourceExtensions are the JS/TS extensions the Export Extractor consumes
// directly; everything else is an "asset" per the GLOSSARY.
var SourceExtensions = map[string]bool{
	".js": true, ".jsx": true, ".cjs": true, ".mjs": true,
	".ts": true, ".tsx": true, ".cts": true, ".mts": true,
}

func isSourceExtension(p string) bool {
	i := strings.LastIndexByte(p, '.')
	if i < 0 {
		return false
	}
	return SourceExtensions[p[i:]]
}

// Source is the polymorphic Content Source value from SPEC_FULL.md §3.
type Source interface {
	// AssetList enumerates non-source files accepted by the package's Glob
	// Program, in deterministic (sorted) order.
	AssetList() ([]string, error)
	// AllFiles enumerates every accepted file, source modules included.
	AllFiles() ([]string, error)
	// LoadFile returns the bytes at path, or ok=false if path is absent.
	LoadFile(path string) (data []byte, ok bool, err error)
}

func filterAssets(paths []string) []string {
	var assets []string
	for _, p := range paths {
		if !isSourceExtension(p) {
			assets = append(assets, p)
		}
	}
	sort.Strings(assets)
	return assets
}
