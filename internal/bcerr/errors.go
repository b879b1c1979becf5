// Package bcerr collects the error taxonomy shared across breakcheck's
// pipeline stages, following the sentinel/typed-error idiom the teacher
// uses for its own storage layer (storage.ErrorNotFound in
// server/storage/db.go) rather than a generic error-codes enum.
package bcerr

import (
	"errors"
	"fmt"
)

// Configuration-phase errors.
var (
	ErrMissingManifest = errors.New("missing package.json")
	ErrInvalidJSON     = errors.New("invalid package.json: not valid JSON")
	ErrInvalidURL      = errors.New("invalid registry URL")
)

// InvalidManifestField reports a manifest field that is missing or of the
// wrong shape (wrong type or otherwise malformed).
type InvalidManifestField struct {
	Field  string
	Reason string
}

func (e *InvalidManifestField) Error() string {
	return fmt.Sprintf("invalid manifest field %q: %s", e.Field, e.Reason)
}

// Resolution-phase errors (Entry Resolver).
type EntryMissing struct {
	Kind, Name, Path string
}

func (e *EntryMissing) Error() string {
	return fmt.Sprintf("%s entry %q: file %q does not exist", e.Kind, e.Name, e.Path)
}

type EntryNotPublished struct {
	Kind, Name, Path string
}

func (e *EntryNotPublished) Error() string {
	return fmt.Sprintf("%s entry %q: file %q exists but is not included in the published files", e.Kind, e.Name, e.Path)
}

type InvalidEntryExtension struct {
	Kind, Name, Path string
}

func (e *InvalidEntryExtension) Error() string {
	return fmt.Sprintf("%s entry %q: file %q has an unsupported extension", e.Kind, e.Name, e.Path)
}

type InvalidBrowserOverride struct {
	Name string
}

func (e *InvalidBrowserOverride) Error() string {
	return fmt.Sprintf("browser entry %q: a value of \"true\" is not a valid override", e.Name)
}

// Registry-phase errors.
type RequestFailed struct {
	URL        string
	StatusCode int
}

func (e *RequestFailed) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}

var ErrMalformedRegistryPayload = errors.New("malformed registry payload")

type UnsupportedIntegrity struct {
	Algorithm string
}

func (e *UnsupportedIntegrity) Error() string {
	return fmt.Sprintf("unsupported integrity algorithm %q: only sha512 is supported", e.Algorithm)
}

var ErrIntegrityMismatch = errors.New("tarball failed integrity verification")

// Archive-phase errors.
var (
	ErrTarMalformed  = errors.New("malformed tar archive")
	ErrGzipMalformed = errors.New("malformed gzip stream")
)

// Parser-phase errors.
type ParseFailure struct {
	File string
	Msg  string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// Export-graph errors.
type CyclicReExport struct {
	Cycle []string
}

func (e *CyclicReExport) Error() string {
	return fmt.Sprintf("cyclic re-export: %v", e.Cycle)
}

type ImportNotFound struct {
	From, Spec string
}

func (e *ImportNotFound) Error() string {
	return fmt.Sprintf("%s: import %q could not be resolved", e.From, e.Spec)
}

type UnsupportedDeclaration struct {
	Kind string
}

func (e *UnsupportedDeclaration) Error() string {
	return fmt.Sprintf("unsupported declaration kind %q", e.Kind)
}
