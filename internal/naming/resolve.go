package naming

import (
	"github.com/handiism/tubetag/internal/model"
	"github.com/pkg/errors"
)

// NoMatch is the grammar index reported when no track grammar matched.
const NoMatch = -1

var (
	// ErrUnresolvedAlbum means the folder name gave no album title or no
	// release date. It is a diagnostic, not a failure.
	ErrUnresolvedAlbum = errors.New("unresolved album metadata")

	// ErrUnresolvedTrack means the file name gave no track number or no
	// title. It is a diagnostic, not a failure.
	ErrUnresolvedTrack = errors.New("unresolved track metadata")
)

// ResolveAlbum extracts album metadata from an album folder name.
//
// The returned album always carries the publisher, and its Artist falls back
// to the publisher when no grammar captured an album artist. An 8 digit
// release date is rewritten as YYYY-MM-DD; any other value, "NA" included, is
// kept as is. When the title or the release date stays empty the partial
// album is returned together with ErrUnresolvedAlbum.
func ResolveAlbum(folderName, publisher string, grammars []Grammar) (model.Album, error) {
	name := Normalize(folderName)

	var groups map[string]string
	for _, g := range grammars {
		if m, ok := g.Match(name); ok {
			groups = m
			break
		}
	}

	album := model.Album{
		Title:       groups["album"],
		Artist:      groups["album_artist"],
		ReleaseDate: groups["release_date"],
		Publisher:   publisher,
	}

	var diag error
	if album.Title == "" || album.ReleaseDate == "" {
		diag = errors.Wrapf(ErrUnresolvedAlbum, "folder %q", name)
	}

	album.ReleaseDate = formatReleaseDate(album.ReleaseDate)

	if album.Artist == "" {
		album.Artist = publisher
	}

	return album, diag
}

// ResolveTrack extracts track metadata from a file name without extension.
//
// Artist falls back to the album artist and a "Full" track number becomes
// "1". The index of the matching grammar is returned, or NoMatch. When the
// track number or the title stays empty the partial track is returned together
// with ErrUnresolvedTrack.
func ResolveTrack(fileBaseName string, album model.Album, grammars []Grammar) (model.Track, int, error) {
	name := Normalize(fileBaseName)

	index := NoMatch
	var groups map[string]string
	for i, g := range grammars {
		if m, ok := g.Match(name); ok {
			index, groups = i, m
			break
		}
	}

	track := model.Track{
		Number:       groups["track_number"],
		Artist:       groups["artist"],
		Title:        groups["title"],
		GrammarIndex: index,
	}

	var diag error
	if track.Number == "" || track.Title == "" {
		diag = errors.Wrapf(ErrUnresolvedTrack, "file %q", name)
	}

	if track.Artist == "" {
		track.Artist = album.Artist
	}
	if track.Number == model.FullTrackMarker {
		track.Number = "1"
	}

	return track, index, diag
}

// formatReleaseDate turns "20230115" into "2023-01-15" and passes anything
// else through.
func formatReleaseDate(date string) string {
	if len(date) != 8 {
		return date
	}
	for i := 0; i < len(date); i++ {
		if date[i] < '0' || date[i] > '9' {
			return date
		}
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:]
}
