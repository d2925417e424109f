package model

import (
	"path/filepath"
	"strings"
)

// FullTrackMarker prefixes the file name of a whole-recording rendition,
// as opposed to the per-chapter splits numbered 1, 2, 3...
const FullTrackMarker = "Full"

// Track represents a single audio file once its name has been resolved.
//
// Number is kept as a string because it goes straight into the TRCK frame
// and the fetcher's chapter numbering is not always clean. A "Full" marker is
// already rewritten to "1" by the resolver.
//
// Example:
//
//	track := Track{Number: "3", Artist: "ArtistX", Title: "SongY", Path: "/music/P/A/3 - ArtistX - SongY.mp3"}
type Track struct {
	// Number is the track number.
	Number string

	// Artist is the track artist. Falls back to the album artist.
	Artist string

	// Title is the track title.
	Title string

	// Path is the audio file on disk.
	Path string

	// GrammarIndex is the position of the grammar that matched the file
	// name, or -1. Only used for diagnostics.
	GrammarIndex int
}

// BaseName returns the file name without directory and extension.
func (t *Track) BaseName() string {
	return BaseName(t.Path)
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IsFullRecording reports whether a file name marks a whole-recording rendition.
func IsFullRecording(fileName string) bool {
	return strings.HasPrefix(filepath.Base(fileName), FullTrackMarker)
}
