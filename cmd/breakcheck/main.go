// Command breakcheck compares a local npm package's public export surface
// against its most recently published registry version and reports any
// breaking removals, following SPEC_FULL.md §7's CLI contract. Flag
// registration and logging wiring follow server.go's Serve: flat
// flag.StringVar/BoolVar declarations parsed once at startup, a single
// package-level *logx.Logger for diagnostics.
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/esm-dev/breakcheck/internal/applog"
	"github.com/esm-dev/breakcheck/internal/cache"
	"github.com/esm-dev/breakcheck/internal/diffengine"
	"github.com/esm-dev/breakcheck/internal/manifest"
	"github.com/esm-dev/breakcheck/internal/pkgload"
	"github.com/esm-dev/breakcheck/internal/registry"
	"github.com/esm-dev/breakcheck/internal/report"
)

// Exit codes per SPEC_FULL.md §7.
const (
	exitClean    = 0
	exitBreaking = 1
	exitError    = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		registryOverride string
		cacheDir         string
		noColor          bool
		logLevel         string
		jsonOutput       bool
	)
	flag.StringVar(&registryOverride, "registry", "", "registry URL override, default resolves from package.json/.npmrc")
	flag.StringVar(&cacheDir, "cache-dir", "", "directory for cached tarballs and the digest index, default '<dir>/.tmp'")
	flag.BoolVar(&noColor, "no-color", false, "disable ANSI styling in the text report")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.BoolVar(&jsonOutput, "json", false, "emit the report as JSON instead of text")
	flag.Parse()

	applog.SetLevel(logLevel)
	defer applog.FlushBuffer()

	dir := flag.Arg(0)
	if dir == "" {
		dir = "."
	}
	if cacheDir == "" {
		cacheDir = filepath.Join(dir, ".tmp")
	}

	start := time.Now()

	current, err := pkgload.FromDir(dir)
	if err != nil {
		return fail(err)
	}

	registryURL, err := resolveRegistryURL(dir, current.Manifest, registryOverride)
	if err != nil {
		return fail(err)
	}

	idx, err := cache.Open(filepath.Join(cacheDir, "index.db"))
	if err != nil {
		return fail(err)
	}
	defer idx.Close()

	client := registry.NewClient(cacheDir, idx)

	previous, err := pkgload.FromRegistry(client, registryURL, current.Manifest)
	if err != nil {
		return fail(err)
	}

	applog.Debugf("comparing %s@%s against published %s", current.Manifest.Name, current.Manifest.Version, previous.Version)

	result, err := diffengine.Diff(previous.Content, current.Content, previous.Entries, current.Entries)
	if err != nil {
		return fail(err)
	}

	if jsonOutput {
		if err := report.WriteJSON(os.Stdout, result); err != nil {
			return fail(err)
		}
		return report.ExitCode(result)
	}

	printer := report.NewPrinter(os.Stdout, report.ColorEnabled(os.Stdout, noColor))
	printer.PrintReport(result, time.Since(start).Seconds())
	return report.ExitCode(result)
}

func resolveRegistryURL(dir string, m *manifest.Manifest, override string) (*url.URL, error) {
	if override != "" {
		u, err := url.Parse(override)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid -registry value %q: %w", override, err)
		}
		return u, nil
	}
	return manifest.RegistryURL(dir, m)
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "breakcheck: %v\n", err)
	applog.Errorf("%v", err)
	return exitError
}

