// Package manifest reads a package.json manifest and the registry
// configuration files (.npmrc) that live alongside it, grounded on
// original_source/src/pkg/mod.rs's Pkg::parse_config_in_dir and
// Pkg::get_registry_url, and on the teacher's utils.ParseJSONFile
// convention (server/utils.go) for the JSON decoding itself.
package manifest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/esm-dev/breakcheck/internal/bcerr"
)

const DefaultRegistryURL = "https://registry.npmjs.org/"

// Manifest is the subset of package.json breakcheck reads. Bin, Browser,
// and Exports stay as raw JSON since their shape varies (string, object,
// or one level of nesting) and entries.Resolve is what interprets them.
type Manifest struct {
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	Private       bool            `json:"private"`
	Files         []string        `json:"files"`
	Main          string          `json:"main"`
	Bin           json.RawMessage `json:"bin"`
	Browser       json.RawMessage `json:"browser"`
	Exports       json.RawMessage `json:"exports"`
	PublishConfig struct {
		Registry string `json:"registry"`
	} `json:"publishConfig"`
}

// Parse reads and validates <dir>/package.json.
func Parse(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "package.json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, bcerr.ErrMissingManifest)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseBytes validates a package.json document already read into memory,
// e.g. one pulled out of a registry tarball rather than off disk.
func ParseBytes(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", bcerr.ErrInvalidJSON, err)
	}

	if m.Name == "" {
		return nil, &bcerr.InvalidManifestField{Field: "name", Reason: "required string field is missing or empty"}
	}
	if m.Version == "" {
		return nil, &bcerr.InvalidManifestField{Field: "version", Reason: "required string field is missing or empty"}
	}

	return &m, nil
}

// RegistryURL resolves the registry endpoint for dir: publishConfig.registry
// in package.json wins, then the first "registry=" line of .npmrc, then the
// public default. This is a supplemental precedence rule beyond the
// distilled spec's .npmrc-or-default contract (see SPEC_FULL.md §4.1).
func RegistryURL(dir string, m *Manifest) (*url.URL, error) {
	if m != nil && m.PublishConfig.Registry != "" {
		return parseRegistryURL(m.PublishConfig.Registry)
	}

	npmrcPath := filepath.Join(dir, ".npmrc")
	f, err := os.Open(npmrcPath)
	if err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if strings.HasPrefix(line, "registry=") {
				return parseRegistryURL(strings.TrimPrefix(line, "registry="))
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", npmrcPath, err)
	}

	u, _ := url.Parse(DefaultRegistryURL)
	return u, nil
}

func parseRegistryURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q: %w", raw, bcerr.ErrInvalidURL)
	}
	return u, nil
}
