package content

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/esm-dev/breakcheck/internal/bcerr"
	"github.com/esm-dev/breakcheck/internal/globset"
)

// ArchiveSource indexes an already gzip-decompressed npm tarball, stripping
// the conventional "package/" top-level prefix, following
// PkgTarball::get_files in original_source/src/pkg/tarball.rs. The archive
// is indexed once at construction so repeated AssetList/LoadFile calls
// don't re-walk the tar stream.
type ArchiveSource struct {
	program *globset.Program
	files   map[string][]byte
}

// NewArchiveSource indexes every regular file in a gzip-decompressed tar
// stream (tarData), applying program to the member paths after the
// "package/" prefix has been stripped.
func NewArchiveSource(tarData []byte, program *globset.Program) (*ArchiveSource, error) {
	s := &ArchiveSource{program: program, files: make(map[string][]byte)}

	tr := tar.NewReader(bytes.NewReader(tarData))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", bcerr.ErrTarMalformed, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := strings.TrimPrefix(hdr.Name, "package/")
		if name == hdr.Name {
			// tarball doesn't use the conventional prefix; keep the path as-is
			name = hdr.Name
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", bcerr.ErrTarMalformed, name, err)
		}
		s.files[name] = data
	}

	return s, nil
}

func (s *ArchiveSource) AllFiles() ([]string, error) {
	var files []string
	for name := range s.files {
		if s.program.Matches(name) {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *ArchiveSource) AssetList() ([]string, error) {
	files, err := s.AllFiles()
	if err != nil {
		return nil, err
	}
	return filterAssets(files), nil
}

func (s *ArchiveSource) LoadFile(p string) ([]byte, bool, error) {
	p = strings.TrimPrefix(p, "./")
	data, ok := s.files[p]
	return data, ok, nil
}
