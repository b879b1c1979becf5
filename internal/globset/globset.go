// Package globset builds and evaluates the Glob Program described in
// SPEC_FULL.md §4.2: an includes/excludes/exclude-negations triple that
// decides which files a package ships. Matching itself is delegated to
// github.com/gobwas/glob (wired the way google-osv-scalibr's filesystem
// extractor wires it for its own skip-dir glob), rather than hand-rolled
// pattern matching; this is the "glob-matching primitive" the distilled
// spec calls an external collaborator.
package globset

import (
	"bufio"
	"os"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// hardExcludes always apply and can never be negated by .npmignore or by
// an include pattern, per SPEC_FULL.md §4.2.
var hardExcludes = []string{
	"**/.git",
	"**/.npmrc",
	"**/node_modules",
	"**/package-lock.json",
	"**/pnpm-lock.yaml",
	"**/yarn.lock",
}

// softExcludes are suppressed when an include pattern matches them
// literally.
var softExcludes = []string{
	"**/*.orig",
	"**/.*.swp",
	"**/.DS_Store",
	"**/._*",
	"**/.hg",
	"**/.lock-wscript",
	"**/.svn",
	"**/.wafpickle-*",
	"**/CVS",
	"**/config.gypi",
	"**/npm-debug.log",
}

// alwaysIncluded names are never excluded regardless of any other rule.
var alwaysIncluded = []string{
	"package.json",
	"README", "README.*",
	"LICENSE", "LICENSE.*",
	"LICENCE", "LICENCE.*",
}

// Program is a compiled Glob Program: a path is accepted iff it matches
// any include or one of the always-included names, matches no hard
// exclude, AND (it matches no soft/npmignore exclude OR it matches some
// negation). hardExcludeGlobs is kept separate
// from excludes so negations (from .npmignore or a literal include) can
// never resurrect a hard-excluded path, per SPEC_FULL.md §4.2's "always
// apply and cannot be negated" invariant.
type Program struct {
	includes         []glob.Glob
	hardExcludeGlobs []glob.Glob
	excludes         []glob.Glob
	negations        []glob.Glob
}

// Build compiles a Glob Program from the manifest's "files" field and an
// optional .npmignore file found at npmignorePath.
func Build(filesField []string, npmignorePath string) (*Program, error) {
	p := &Program{}

	if len(filesField) == 0 {
		g, err := glob.Compile("**/*", '/')
		if err != nil {
			return nil, err
		}
		p.includes = []glob.Glob{g}
	} else {
		for _, pattern := range filesField {
			if strings.HasPrefix(pattern, "../") {
				continue // package-escape patterns are dropped, never included
			}
			g, err := compilePattern(pattern)
			if err != nil {
				return nil, err
			}
			p.includes = append(p.includes, g)
		}
	}

	for _, pattern := range hardExcludes {
		g, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		p.hardExcludeGlobs = append(p.hardExcludeGlobs, g)
	}

	var literalSoftExcludes []string
	for _, pattern := range softExcludes {
		if !p.matchesLiteralInclude(pattern) {
			literalSoftExcludes = append(literalSoftExcludes, pattern)
		}
	}
	for _, pattern := range literalSoftExcludes {
		g, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		p.excludes = append(p.excludes, g)
	}

	for _, pattern := range alwaysIncluded {
		g, err := compilePattern(pattern)
		if err != nil {
			return nil, err
		}
		p.negations = append(p.negations, g)
	}

	if npmignorePath != "" {
		if err := p.applyNpmignore(npmignorePath); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Program) applyNpmignore(npmignorePath string) error {
	f, err := os.Open(npmignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "!") {
			g, err := compilePattern(strings.TrimPrefix(line, "!"))
			if err != nil {
				return err
			}
			p.negations = append(p.negations, g)
			continue
		}
		g, err := compilePattern(line)
		if err != nil {
			return err
		}
		p.excludes = append(p.excludes, g)
	}
	return scanner.Err()
}

// MatchesInclude reports whether path matches at least one include
// pattern, ignoring excludes/negations entirely. Entry validation
// (SPEC_FULL.md §4.4) asks specifically this question: is the file among
// the ones the manifest's "files" field names, regardless of whether an
// unrelated exclude rule would otherwise drop it from AssetList.
func (p *Program) MatchesInclude(relPath string) bool {
	relPath = path.Clean("/" + relPath)[1:]
	for _, g := range p.includes {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// Matches reports whether path (relative to the package root, using "/"
// separators) is accepted by the program.
func (p *Program) Matches(relPath string) bool {
	relPath = path.Clean("/" + relPath)[1:]

	included := false
	for _, g := range p.includes {
		if g.Match(relPath) {
			included = true
			break
		}
	}
	if !included {
		// Build compiles the always-included names first, ahead of any
		// .npmignore negation, so they accept a path on their own.
		for _, g := range p.negations[:len(alwaysIncluded)] {
			if g.Match(relPath) {
				included = true
				break
			}
		}
	}
	if !included {
		return false
	}

	for _, g := range p.hardExcludeGlobs {
		if g.Match(relPath) {
			return false
		}
	}

	excluded := false
	for _, g := range p.excludes {
		if g.Match(relPath) {
			excluded = true
			break
		}
	}
	if !excluded {
		return true
	}

	for _, g := range p.negations {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// matchesLiteralInclude reports whether pattern itself (as a plain path,
// not expanded) would already be matched by one of the configured include
// globs, used to decide whether a soft-exclude should be suppressed.
func (p *Program) matchesLiteralInclude(pattern string) bool {
	literal := strings.TrimPrefix(strings.TrimSuffix(pattern, "/**/*"), "**/")
	for _, g := range p.includes {
		if g.Match(literal) {
			return true
		}
	}
	return false
}

func compilePattern(pattern string) (glob.Glob, error) {
	return glob.Compile(pattern, '/')
}
