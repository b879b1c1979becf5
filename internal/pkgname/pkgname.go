// Package pkgname models an npm package identity, following the
// Pkg/PkgNameInfo split in esm.sh's server/pkg.go: a small value type with
// String()/Equals()-style methods rather than ad-hoc string splitting
// scattered across callers.
package pkgname

import (
	"fmt"

	"github.com/ije/gox/utils"
)

// Identity is a package's (name, version) pair, as read from a
// package.json manifest or derived from a registry response.
type Identity struct {
	Name    string
	Version string
}

func (id Identity) String() string {
	return fmt.Sprintf("%s@%s", id.Name, id.Version)
}

func (id Identity) Equals(other Identity) bool {
	return id.Name == other.Name && id.Version == other.Version
}

// ScopeAndName splits a (possibly scoped) package name into its scope
// (without the leading "@", empty if unscoped) and bare name, mirroring
// parsePkgNameInfo's scope-handling in server/pkg.go.
func ScopeAndName(fullName string) (scope, name string) {
	if len(fullName) == 0 || fullName[0] != '@' {
		return "", fullName
	}
	scope, name = utils.SplitByFirstByte(fullName[1:], '/')
	return scope, name
}
