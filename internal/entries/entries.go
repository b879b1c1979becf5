// Package entries resolves a package's declared entry points (main, bin,
// browser, exports) into a uniform table, following
// original_source/src/pkg/entries.rs's PkgEntries::new and its per-field
// resolve_string_or_object_entries helper.
package entries

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/esm-dev/breakcheck/internal/bcerr"
	"github.com/esm-dev/breakcheck/internal/content"
	"github.com/esm-dev/breakcheck/internal/globset"
	"github.com/esm-dev/breakcheck/internal/manifest"
)

// Kind is the logical_kind of an Entry, per SPEC_FULL.md §3.
type Kind string

const (
	Main    Kind = "main"
	Bin     Kind = "bin"
	Browser Kind = "browser"
	Exports Kind = "exports"
)

// Entry is a single resolved entry point.
type Entry struct {
	Name string
	Kind Kind
	Path string // relative to the package root, "/"-separated
	Ext  string
}

// Table holds every resolved entry, grouped by kind then by name.
type Table map[Kind]map[string]Entry

// Resolve builds the entry Table for a manifest. directoryBacked controls
// whether existence/inclusion validation runs: the distilled spec scopes
// that validation to directory-backed sources only (archive-backed
// sources, being an already-published tarball, are trusted as-is).
func Resolve(m *manifest.Manifest, src content.Source, program *globset.Program, directoryBacked bool) (Table, error) {
	table := make(Table)

	mainPath := m.Main
	if mainPath == "" {
		mainPath = "index.js"
	}
	mainEntry, err := newEntry(Main, "main", mainPath, src, program, directoryBacked)
	if err != nil {
		return nil, fmt.Errorf("while resolving main entry: %w", err)
	}
	table[Main] = map[string]Entry{"main": *mainEntry}

	for _, kind := range []Kind{Bin, Browser, Exports} {
		raw := fieldFor(m, kind)
		group, err := resolveStringOrObject(kind, raw, src, program, directoryBacked)
		if err != nil {
			return nil, fmt.Errorf("while resolving %s entries: %w", kind, err)
		}
		if len(group) > 0 {
			table[kind] = group
		}
	}

	return table, nil
}

func fieldFor(m *manifest.Manifest, kind Kind) json.RawMessage {
	switch kind {
	case Bin:
		return m.Bin
	case Browser:
		return m.Browser
	case Exports:
		return m.Exports
	default:
		return nil
	}
}

func resolveStringOrObject(kind Kind, raw json.RawMessage, src content.Source, program *globset.Program, directoryBacked bool) (map[string]Entry, error) {
	result := make(map[string]Entry)
	if len(raw) == 0 {
		return result, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		entry, err := newEntry(kind, string(kind), asString, src, program, directoryBacked)
		if err != nil {
			return nil, err
		}
		result[string(kind)] = *entry
		return result, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return result, nil // neither a string nor an object: ignore, per the distilled spec's contract
	}

	for name, value := range asObject {
		var asBool bool
		if err := json.Unmarshal(value, &asBool); err == nil {
			if kind == Browser {
				if asBool {
					return nil, &bcerr.InvalidBrowserOverride{Name: name}
				}
				continue // false: suppressed from analysis
			}
			continue
		}

		var path string
		if err := json.Unmarshal(value, &path); err == nil {
			entry, err := newEntry(kind, name, path, src, program, directoryBacked)
			if err != nil {
				return nil, err
			}
			result[name] = *entry
			continue
		}

		// one level of nesting, e.g. "exports": {".": {"import": "..."}}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(value, &nested); err != nil {
			return nil, &bcerr.InvalidManifestField{Field: string(kind), Reason: fmt.Sprintf("%q must be a string, boolean, or object", name)}
		}
		for subName, subValue := range nested {
			var subPath string
			if err := json.Unmarshal(subValue, &subPath); err != nil {
				continue
			}
			entry, err := newEntry(kind, subName, subPath, src, program, directoryBacked)
			if err != nil {
				return nil, err
			}
			result[subName] = *entry
		}
	}

	return result, nil
}

func newEntry(kind Kind, name, rawPath string, src content.Source, program *globset.Program, directoryBacked bool) (*Entry, error) {
	clean := path.Clean("/" + rawPath)[1:]
	ext := extOf(clean)
	if !content.SourceExtensions[ext] {
		return nil, &bcerr.InvalidEntryExtension{Kind: string(kind), Name: name, Path: clean}
	}

	if directoryBacked {
		_, ok, err := src.LoadFile(clean)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &bcerr.EntryMissing{Kind: string(kind), Name: name, Path: clean}
		}
		if !program.MatchesInclude(clean) {
			return nil, &bcerr.EntryNotPublished{Kind: string(kind), Name: name, Path: clean}
		}
	}

	return &Entry{Name: name, Kind: kind, Path: clean, Ext: ext}, nil
}

func extOf(p string) string {
	i := strings.LastIndexByte(p, '.')
	if i < 0 {
		return ""
	}
	return p[i:]
}
