package jsmod

import (
	"path"
	"strings"

	"github.com/esm-dev/breakcheck/internal/content"
)

// candidateExts is the order module resolution probes when a relative
// specifier carries no extension, mirroring the lookup order bundlers apply
// to extension-less ESM/TS specifiers.
var candidateExts = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"}

// isRelativeSpecifier reports whether spec names a sibling file within the
// same package rather than a bare (npm) import specifier. Bare specifiers
// cross the package boundary and are outside the Export Extractor's reach.
func isRelativeSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || strings.HasPrefix(spec, "/")
}

// resolveSpecifier finds the concrete file within src that a relative
// specifier, written from fromFile, refers to.
func resolveSpecifier(src content.Source, fromFile, spec string) (string, bool, error) {
	joined := spec
	if !strings.HasPrefix(spec, "/") {
		joined = path.Join(path.Dir(fromFile), spec)
	}
	joined = path.Clean("/" + joined)[1:]

	if content.SourceExtensions[extOf(joined)] {
		if _, ok, err := src.LoadFile(joined); err != nil {
			return "", false, err
		} else if ok {
			return joined, true, nil
		}
		return "", false, nil
	}

	for _, ext := range candidateExts {
		candidate := joined + ext
		if _, ok, err := src.LoadFile(candidate); err != nil {
			return "", false, err
		} else if ok {
			return candidate, true, nil
		}
	}

	for _, ext := range candidateExts {
		candidate := path.Join(joined, "index"+ext)
		if _, ok, err := src.LoadFile(candidate); err != nil {
			return "", false, err
		} else if ok {
			return candidate, true, nil
		}
	}

	return "", false, nil
}

func extOf(p string) string {
	i := strings.LastIndexByte(p, '.')
	if i < 0 {
		return ""
	}
	return p[i:]
}
