package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/tubetag/internal/model"
)

// PlaylistCreator renders the playlist of a tagged album folder. Paths are
// file names, as the playlist sits next to the tracks. yt-dlp output carries
// no durations, so M3U and PLS lengths are -1.
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool
}

// NewPlaylistCreator returns a creator for format. extended adds the
// #EXTM3U header and #EXTINF lines to M3U output.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{format: format, extended: extended}
}

// playlistEntry is one resolved track as the playlist shows it.
type playlistEntry struct {
	file   string
	title  string
	artist string
}

// label is "artist - title", or the bare title for tracks without an artist.
func (e playlistEntry) label() string {
	if e.artist == "" {
		return e.title
	}
	return e.artist + " - " + e.title
}

func playlistEntries(album *model.Album) []playlistEntry {
	entries := make([]playlistEntry, 0, len(album.Tracks))
	for _, track := range album.Tracks {
		file := filepath.Base(track.Path)
		title := track.Title
		if title == "" {
			title = strings.TrimSuffix(file, filepath.Ext(file))
		}
		artist := track.Artist
		if artist == "" {
			artist = album.Artist
		}
		entries = append(entries, playlistEntry{file: file, title: title, artist: artist})
	}
	return entries
}

// CreatePlaylist returns the playlist content for album.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album) string {
	entries := playlistEntries(album)

	var sb strings.Builder
	switch p.format {
	case model.PlaylistFormatPLS:
		writePLS(&sb, entries)
	case model.PlaylistFormatWPL:
		writeSMIL(&sb, "wpl", "1.0", album, entries, false)
	case model.PlaylistFormatZPL:
		writeSMIL(&sb, "zpl", "2.0", album, entries, true)
	default:
		p.writeM3U(&sb, entries)
	}
	return sb.String()
}

func (p *PlaylistCreator) writeM3U(sb *strings.Builder, entries []playlistEntry) {
	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(sb, "#EXTINF:-1,%s\n", e.label())
		}
		sb.WriteString(e.file + "\n")
	}
}

func writePLS(sb *strings.Builder, entries []playlistEntry) {
	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		n := i + 1
		fmt.Fprintf(sb, "File%d=%s\nTitle%d=%s\nLength%d=-1\n", n, e.file, n, e.label(), n)
	}
	fmt.Fprintf(sb, "NumberOfEntries=%d\nVersion=2\n", len(entries))
}

// writeSMIL renders the WPL and ZPL dialects. detailed adds the ZPL item
// count and per-media track attributes.
func writeSMIL(sb *strings.Builder, kind, version string, album *model.Album, entries []playlistEntry, detailed bool) {
	fmt.Fprintf(sb, "<?%s version=\"%s\"?>\n<smil>\n  <head>\n", kind, version)
	fmt.Fprintf(sb, "    <title>%s</title>\n", escapeXML(album.Title))
	if detailed {
		sb.WriteString("    <meta name=\"Generator\" content=\"tubetag\"/>\n")
		fmt.Fprintf(sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	}
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")

	for _, e := range entries {
		fmt.Fprintf(sb, "      <media src=\"%s\"", escapeXML(e.file))
		if detailed {
			fmt.Fprintf(sb, " albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\"",
				escapeXML(album.Title), escapeXML(album.Artist), escapeXML(e.title), escapeXML(e.artist))
		}
		sb.WriteString("/>\n")
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
