package audio

import (
	"io"
	"os"
	"unicode"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
	"github.com/pkg/errors"
)

// ErrTagContainer means the file cannot carry ID3 tags: it is missing, not an
// MP3 stream, or the tag could not be saved. It only fails that one file.
var ErrTagContainer = errors.New("unsupported tag container")

// Frame IDs written by the tagger. TYER is the ID3v2.3 year, TDRC the
// ID3v2.4 recording date; both are written as players read one or the other.
const (
	FrameAlbum           = "TALB"
	FrameTitle           = "TIT2"
	FrameArtist          = "TPE1"
	FrameAlbumArtist     = "TPE2"
	FramePublisher       = "TPUB"
	FrameTrackNumber     = "TRCK"
	FrameYear            = "TYER"
	FrameDate            = "TDRC"
	FrameAlbumArtistSort = "TSO2"
)

// TagFields is the complete set of frames written to one file.
//
// Every write replaces the previous tag entirely, so an empty field leaves
// the matching frame absent.
type TagFields struct {
	Album           string
	AlbumArtist     string
	AlbumArtistSort string
	Artist          string
	Title           string
	TrackNumber     string
	ReleaseDate     string
	Publisher       string

	// Cover is a JPEG embedded as the front cover. Nil skips the picture.
	Cover []byte
}

// TagConfig holds tagging configuration.
type TagConfig struct {
	// EmbedCover controls whether TagFields.Cover is written as an APIC frame.
	EmbedCover bool

	// Version is the ID3v2 major version written, 3 or 4.
	Version byte
}

// DefaultTagConfig returns the default tag configuration: ID3v2.4 with UTF-8
// text and cover art.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		EmbedCover: true,
		Version:    4,
	}
}

// Tagger writes ID3 tags to MP3 files.
//
// Tagger uses the id3v2 library for writing and dhowden/tag to make sure the
// file is MP3 audio before touching it. Existing frames are always dropped so
// the result only reflects the resolved names.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.WriteTags("/music/Pub/20230115 - Album/1 - Song.mp3", TagFields{
//	    Album:       "Album",
//	    AlbumArtist: "Pub",
//	    Artist:      "Pub",
//	    Title:       "Song",
//	    TrackNumber: "1",
//	    ReleaseDate: "2023-01-15",
//	    Publisher:   "Pub",
//	    Cover:       jpegBytes,
//	})
//	if errors.Is(err, ErrTagContainer) {
//	    // skip this file, keep going
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// WriteTags replaces the tag of the MP3 file at path with fields.
func (t *Tagger) WriteTags(path string, fields TagFields) error {
	if err := ValidateMP3(path); err != nil {
		return err
	}

	tg, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return errors.Wrapf(ErrTagContainer, "%s: %v", path, err)
	}
	defer tg.Close()

	tg.DeleteAllFrames()
	if t.config.Version == 3 {
		tg.SetVersion(3)
	} else {
		tg.SetVersion(4)
	}

	frames := []struct {
		id, value string
	}{
		{FrameAlbum, fields.Album},
		{FrameTitle, fields.Title},
		{FrameArtist, fields.Artist},
		{FrameAlbumArtist, fields.AlbumArtist},
		{FramePublisher, fields.Publisher},
		{FrameTrackNumber, fields.TrackNumber},
		{FrameYear, releaseYear(fields.ReleaseDate)},
		{FrameDate, fields.ReleaseDate},
		{FrameAlbumArtistSort, fields.AlbumArtistSort},
	}
	for _, f := range frames {
		if f.value != "" {
			tg.AddTextFrame(f.id, t.encoding(f.value), f.value)
		}
	}

	if t.config.EmbedCover && len(fields.Cover) > 0 {
		tg.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    t.encoding("Cover"),
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     fields.Cover,
		})
	}

	if err := tg.Save(); err != nil {
		return errors.Wrapf(ErrTagContainer, "%s: %v", path, err)
	}
	return nil
}

// encoding picks the text encoding of one frame. ID3v2.3 has no UTF-8, and
// id3v2 pads UTF-16 frames to an odd length that dhowden/tag refuses, so
// v2.3 only falls back to UTF-16 for text outside Latin-1.
func (t *Tagger) encoding(value string) id3v2.Encoding {
	if t.config.Version != 3 {
		return id3v2.EncodingUTF8
	}
	if isLatin1(value) {
		return id3v2.EncodingISO
	}
	return id3v2.EncodingUTF16
}

func isLatin1(s string) bool {
	for _, r := range s {
		if r > unicode.MaxLatin1 {
			return false
		}
	}
	return true
}

// releaseYear returns the leading year of a YYYY-MM-DD date, or date itself.
func releaseYear(date string) string {
	if len(date) >= 4 {
		for _, c := range date[:4] {
			if c < '0' || c > '9' {
				return date
			}
		}
		return date[:4]
	}
	return date
}

// ValidateMP3 checks that path holds an MP3 stream, either behind an ID3 tag
// or starting with an MPEG audio frame header.
func ValidateMP3(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrTagContainer, "%s: %v", path, err)
	}
	defer f.Close()

	_, fileType, err := tag.Identify(f)
	if err == nil && fileType != tag.UnknownFileType {
		if fileType == tag.MP3 {
			return nil
		}
		return errors.Wrapf(ErrTagContainer, "%s: %s file", path, fileType)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrapf(ErrTagContainer, "%s: %v", path, err)
	}
	header := make([]byte, 2)
	if _, err := io.ReadFull(f, header); err != nil || !isFrameSync(header) {
		return errors.Wrapf(ErrTagContainer, "%s: not an MP3 stream", path)
	}
	return nil
}

// isFrameSync reports whether b starts with the 11 set bits of an MPEG audio
// frame header.
func isFrameSync(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}
