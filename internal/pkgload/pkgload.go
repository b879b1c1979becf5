// Package pkgload assembles a Package (manifest, Content Source, and
// resolved entry Table) from either side of a comparison: a live working
// directory, or the tarball of the most recently published version.
// Grounded on original_source/src/pkg/registry.rs's load_from_dir and
// fetch_from_server, which run the same three-step construction
// (manifest -> contents -> entries) against the two different sources.
package pkgload

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/esm-dev/breakcheck/internal/content"
	"github.com/esm-dev/breakcheck/internal/entries"
	"github.com/esm-dev/breakcheck/internal/globset"
	"github.com/esm-dev/breakcheck/internal/manifest"
	"github.com/esm-dev/breakcheck/internal/registry"
)

// Package is a fully resolved comparison side.
type Package struct {
	Manifest *manifest.Manifest
	Content  content.Source
	Entries  entries.Table
	Version  string
}

// FromDir loads the prospective package from a live working directory.
func FromDir(dir string) (*Package, error) {
	m, err := manifest.Parse(dir)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}

	program, err := globset.Build(m.Files, filepath.Join(dir, ".npmignore"))
	if err != nil {
		return nil, fmt.Errorf("building glob program: %w", err)
	}

	src := content.NewDirSource(dir, program)

	tbl, err := entries.Resolve(m, src, program, true)
	if err != nil {
		return nil, fmt.Errorf("resolving entries: %w", err)
	}

	return &Package{Manifest: m, Content: src, Entries: tbl, Version: m.Version}, nil
}

// FromRegistry fetches and unpacks the latest published tarball for the
// package named by localManifest, using client to talk to registryURL.
// The published package.json (not localManifest) governs its own Content
// Source, since a package's "files" list can change release to release.
func FromRegistry(client *registry.Client, registryURL *url.URL, localManifest *manifest.Manifest) (*Package, error) {
	version, tarData, err := client.FetchPackageTarball(registryURL, localManifest.Name)
	if err != nil {
		return nil, fmt.Errorf("fetching %s from registry: %w", localManifest.Name, err)
	}

	permissive, err := globset.Build(nil, "")
	if err != nil {
		return nil, err
	}
	raw, err := content.NewArchiveSource(tarData, permissive)
	if err != nil {
		return nil, fmt.Errorf("reading tarball for %s: %w", localManifest.Name, err)
	}

	data, ok, err := raw.LoadFile("package.json")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s@%s: tarball has no package.json", localManifest.Name, version)
	}
	m, err := manifest.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s@%s: %w", localManifest.Name, version, err)
	}

	program, err := globset.Build(m.Files, "")
	if err != nil {
		return nil, err
	}
	src, err := content.NewArchiveSource(tarData, program)
	if err != nil {
		return nil, err
	}

	tbl, err := entries.Resolve(m, src, program, false)
	if err != nil {
		return nil, fmt.Errorf("resolving entries for %s@%s: %w", localManifest.Name, version, err)
	}

	return &Package{Manifest: m, Content: src, Entries: tbl, Version: version}, nil
}
