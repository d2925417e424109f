package cleanup

import (
	"path/filepath"
	"sort"

	"github.com/handiism/tubetag/internal/model"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// AudioPattern matches the audio files the fetcher leaves in an album folder.
	AudioPattern = "*.mp3"

	// CoverPattern matches the thumbnails converted by the fetcher.
	CoverPattern = "*.jpg"
)

// Selection is the outcome of classifying one album folder.
type Selection struct {
	// ToTag are the files to tag, in name order.
	ToTag []string

	// ToDelete are redundant whole-recording files. The caller removes them
	// before tagging.
	ToDelete []string
}

// Selector decides which audio files of an album folder are canonical.
//
// A folder holding a single audio file is a single-track album: that file is
// kept whatever its name. A folder holding several files holds per-chapter
// splits, and the "Full - ..." rendition next to them is redundant.
//
// Selector only classifies; it never deletes or tags anything.
type Selector struct {
	fs afero.Fs
}

// NewSelector creates a Selector listing folders through fs.
func NewSelector(fs afero.Fs) *Selector {
	return &Selector{fs: fs}
}

// Select lists the audio files directly in folder and classifies them.
func (s *Selector) Select(folder string) (Selection, error) {
	files, err := Glob(s.fs, folder, AudioPattern)
	if err != nil {
		return Selection{}, err
	}

	var sel Selection
	if len(files) == 1 {
		sel.ToTag = files
		return sel, nil
	}

	for _, f := range files {
		if model.IsFullRecording(f) {
			sel.ToDelete = append(sel.ToDelete, f)
			continue
		}
		sel.ToTag = append(sel.ToTag, f)
	}
	return sel, nil
}

// Glob returns the regular files directly in folder whose name matches
// pattern, sorted by name. Only the file name is matched, so brackets in the
// folder path need no escaping.
func Glob(fs afero.Fs, folder, pattern string) ([]string, error) {
	entries, err := afero.ReadDir(fs, folder)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if ok {
			files = append(files, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FindCover returns the first thumbnail in folder, or "" when there is none.
func FindCover(fs afero.Fs, folder string) (string, error) {
	files, err := Glob(fs, folder, CoverPattern)
	if err != nil || len(files) == 0 {
		return "", err
	}
	return files[0], nil
}
