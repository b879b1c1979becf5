package content

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/esm-dev/breakcheck/internal/globset"
)

// skipByName short-circuits the walk for directories that are always
// excluded, the same pragmatic optimization server/utils.go's findFiles
// applies for "node_modules" before any glob matching happens.
var skipByName = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// DirSource walks a live directory tree and applies the package's Glob
// Program to every file it finds, following resolve_contents_in_dir in
// original_source/src/pkg/contents.rs.
type DirSource struct {
	root    string
	program *globset.Program
}

func NewDirSource(root string, program *globset.Program) *DirSource {
	return &DirSource{root: root, program: program}
}

func (s *DirSource) AllFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == s.root {
			return nil
		}
		if d.IsDir() {
			if skipByName[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if s.program.Matches(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (s *DirSource) AssetList() ([]string, error) {
	files, err := s.AllFiles()
	if err != nil {
		return nil, err
	}
	return filterAssets(files), nil
}

func (s *DirSource) LoadFile(p string) ([]byte, bool, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+p))[1:])
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
