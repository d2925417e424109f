package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Album represents one album folder once its name has been resolved.
//
// Album contains everything written into the album level tag frames:
//   - Title and Artist (the album artist) for TALB and TPE2
//   - ArtistSort for TSO2
//   - ReleaseDate for TYER, "YYYY-MM-DD" when the folder carried 8 digits
//   - Publisher, the channel folder the album was downloaded under (TPUB)
//
// Fields may be empty strings when the folder name could not be resolved,
// except Artist which falls back to Publisher.
//
// Example:
//
//	album := Album{Title: "My Album", Artist: "Various", ReleaseDate: "2023-01-15", Publisher: "SomePublisher"}
//	album.SetPaths("/music/SomePublisher/20230115 - Various - My Album", &PathConfig{
//	    PlaylistFileNameFormat: "{album}",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	})
//	// album.PlaylistPath = "/music/SomePublisher/20230115 - Various - My Album/My Album.m3u"
type Album struct {
	// Title is the album title.
	Title string

	// Artist is the album artist. Never empty when Publisher is set.
	Artist string

	// ArtistSort is the sortable form of Artist ("Beatles, The").
	ArtistSort string

	// ReleaseDate is the release date as resolved from the folder name.
	ReleaseDate string

	// Publisher is the name of the channel folder enclosing the album.
	Publisher string

	// Tracks contains the tracks tagged in this album.
	Tracks []*Track

	// Path is the album folder on disk.
	Path string

	// CoverPath is the thumbnail found in the album folder.
	// Empty string means the folder has no cover.
	CoverPath string

	// PlaylistPath is the computed local file path for the playlist file.
	PlaylistPath string
}

// HasCover returns true if the album folder holds a thumbnail.
func (a *Album) HasCover() bool {
	return a.CoverPath != ""
}

// Year returns the first four characters of ReleaseDate when they are digits.
func (a *Album) Year() string {
	if len(a.ReleaseDate) < 4 {
		return ""
	}
	for _, c := range a.ReleaseDate[:4] {
		if c < '0' || c > '9' {
			return ""
		}
	}
	return a.ReleaseDate[:4]
}

// SetPaths records the album folder and computes the playlist path.
func (a *Album) SetPaths(folder string, cfg *PathConfig) {
	a.Path = folder
	a.PlaylistPath = a.parsePlaylistPath(cfg)
}

// PathConfig holds path formatting settings for album side files.
//
// PlaylistFileNameFormat supports placeholders that are replaced with actual values:
//   - {album} - Album title
//   - {artist} - Album artist
//   - {publisher} - Channel name
//   - {date} - Release date as resolved
//   - {year} - Release year
type PathConfig struct {
	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	// Example: "{album}"
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps a settings value ("m3u", "pls", "wpl", "zpl") to a
// PlaylistFormat. Unknown values give PlaylistFormatM3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// parsePlaylistPath computes the full playlist file path.
func (a *Album) parsePlaylistPath(cfg *PathConfig) string {
	if cfg == nil || cfg.PlaylistFileNameFormat == "" {
		return ""
	}

	fileName := cfg.PlaylistFileNameFormat
	fileName = strings.ReplaceAll(fileName, "{year}", a.Year())
	fileName = strings.ReplaceAll(fileName, "{date}", a.ReleaseDate)
	fileName = strings.ReplaceAll(fileName, "{album}", a.Title)
	fileName = strings.ReplaceAll(fileName, "{artist}", a.Artist)
	fileName = strings.ReplaceAll(fileName, "{publisher}", a.Publisher)
	fileName = SanitizeFileName(fileName)
	if fileName == "" {
		fileName = "playlist"
	}

	ext := cfg.PlaylistFormat.Extension()
	filePath := filepath.Join(a.Path, fileName+ext)

	// Limit total path length for Windows compatibility
	if len(filePath) >= 260 {
		maxLen := 11 - len(ext)
		if maxLen > 0 && maxLen < len(fileName) {
			filePath = filepath.Join(a.Path, fileName[:maxLen]+ext)
		}
	}

	return filePath
}

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in file names.
//
// Example:
//
//	SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
