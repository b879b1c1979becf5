package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/esm-dev/breakcheck/internal/bcerr"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParseMissingManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := Parse(dir)
	if err == nil {
		t.Fatal("expected an error for a missing package.json")
	}
}

func TestParseRequiresNameAndVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"widget"}`)
	_, err := Parse(dir)
	var field *bcerr.InvalidManifestField
	if err == nil {
		t.Fatal("expected an error for a missing version field")
	}
	if !asInvalidManifestField(err, &field) {
		t.Fatalf("expected InvalidManifestField, got %v", err)
	}
}

func asInvalidManifestField(err error, target **bcerr.InvalidManifestField) bool {
	return errors.As(err, target)
}

func TestParseValidManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name":"widget","version":"1.0.0","main":"index.js"}`)
	m, err := Parse(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "widget" || m.Version != "1.0.0" || m.Main != "index.js" {
		t.Fatalf("got %+v", m)
	}
}

func TestRegistryURLPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".npmrc", "registry=https://npmrc.example/\n")

	u, err := RegistryURL(dir, &Manifest{})
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "https://npmrc.example/" {
		t.Fatalf("expected .npmrc registry to win over the default, got %s", u.String())
	}

	m := &Manifest{}
	m.PublishConfig.Registry = "https://publishconfig.example/"
	u, err = RegistryURL(dir, m)
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != "https://publishconfig.example/" {
		t.Fatalf("expected publishConfig.registry to win over .npmrc, got %s", u.String())
	}
}

func TestRegistryURLDefaultsWhenNothingConfigured(t *testing.T) {
	dir := t.TempDir()
	u, err := RegistryURL(dir, &Manifest{})
	if err != nil {
		t.Fatal(err)
	}
	if u.String() != DefaultRegistryURL {
		t.Fatalf("expected default registry, got %s", u.String())
	}
}
