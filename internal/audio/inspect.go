package audio

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"
)

// TagSummary is what ReadTags found in a file.
type TagSummary struct {
	Format   string
	FileType string
	TagFields

	// CoverMIMEType is empty when the file has no picture.
	CoverMIMEType string
}

// ReadTags reads back the tag of an audio file.
//
// It works on any container dhowden/tag understands, so it can also be used
// to look at files WriteTags refuses.
func ReadTags(path string) (*TagSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read tags of %s", path)
	}

	summary := &TagSummary{
		Format:   string(m.Format()),
		FileType: string(m.FileType()),
		TagFields: TagFields{
			Album:       m.Album(),
			AlbumArtist: m.AlbumArtist(),
			Artist:      m.Artist(),
			Title:       m.Title(),
		},
	}

	raw := m.Raw()
	summary.Publisher = rawText(raw, FramePublisher)
	summary.TrackNumber = rawText(raw, FrameTrackNumber)
	summary.AlbumArtistSort = rawText(raw, FrameAlbumArtistSort)
	summary.ReleaseDate = rawText(raw, FrameDate)
	if summary.ReleaseDate == "" {
		summary.ReleaseDate = rawText(raw, FrameYear)
	}

	if p := m.Picture(); p != nil {
		summary.Cover = p.Data
		summary.CoverMIMEType = p.MIMEType
	}

	return summary, nil
}

func rawText(raw map[string]interface{}, id string) string {
	s, ok := raw[id].(string)
	if !ok {
		return ""
	}
	return strings.TrimRight(s, "\x00")
}
