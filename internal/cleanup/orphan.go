package cleanup

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ThumbnailName is the file name the fetcher gives album thumbnails.
const ThumbnailName = "_ - thumbnail.jpg"

// IsOrphan reports whether folder is what an aborted download leaves behind:
// exactly two files, the thumbnail and an info JSON, and no audio.
func IsOrphan(fs afero.Fs, folder string) (bool, error) {
	entries, err := afero.ReadDir(fs, folder)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if len(entries) != 2 {
		return false, nil
	}

	var thumbnail, info bool
	for _, entry := range entries {
		if entry.IsDir() {
			return false, nil
		}
		switch {
		case entry.Name() == ThumbnailName:
			thumbnail = true
		case filepath.Ext(entry.Name()) == ".json":
			info = true
		}
	}
	return thumbnail && info, nil
}

// RemoveOrphans deletes the orphan album folders directly under
// publisherDir and returns their paths.
func RemoveOrphans(fs afero.Fs, publisherDir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, publisherDir)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var removed []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := filepath.Join(publisherDir, entry.Name())
		orphan, err := IsOrphan(fs, folder)
		if err != nil {
			return removed, err
		}
		if !orphan {
			continue
		}
		if err := fs.RemoveAll(folder); err != nil {
			return removed, errors.WithStack(err)
		}
		removed = append(removed, folder)
	}
	return removed, nil
}
