package pipeline

import (
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Discover returns the directories directly under dir, sorted by name.
//
// Under a publisher directory these are album folders; under the library
// root they are publisher directories.
func Discover(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// DiscoverLibrary returns every album folder of a library laid out as
// <library>/<publisher>/<album>.
func DiscoverLibrary(fs afero.Fs, library string) ([]string, error) {
	publishers, err := Discover(fs, library)
	if err != nil {
		return nil, err
	}

	var albums []string
	for _, p := range publishers {
		folders, err := Discover(fs, p)
		if err != nil {
			return nil, err
		}
		albums = append(albums, folders...)
	}
	return albums, nil
}
