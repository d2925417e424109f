package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file", "normal-file"},
		{"file:with:colons", "file_with_colons"},
		{"file<with>brackets", "file_with_brackets"},
		{"file/with\\slashes", "file_with_slashes"},
		{"file?with*wildcards", "file_with_wildcards"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.input))
		})
	}
}

func TestAlbum_SetPaths(t *testing.T) {
	album := Album{Title: "My Album: Live", Artist: "Various", ReleaseDate: "2023-01-15", Publisher: "Pub"}
	album.SetPaths("/music/Pub/20230115 - Various - My Album", &PathConfig{
		PlaylistFileNameFormat: "{year} {album}",
		PlaylistFormat:         PlaylistFormatPLS,
	})

	assert.Equal(t, "/music/Pub/20230115 - Various - My Album", album.Path)
	assert.Equal(t, "/music/Pub/20230115 - Various - My Album/2023 My Album_ Live.pls", album.PlaylistPath)
}

func TestAlbum_SetPathsWithoutPlaylist(t *testing.T) {
	album := Album{Title: "My Album"}
	album.SetPaths("/music/Pub/x", &PathConfig{})

	assert.Empty(t, album.PlaylistPath)
	assert.False(t, album.HasCover())
}

func TestAlbum_Year(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2023-01-15", "2023"},
		{"NA", ""},
		{"", ""},
		{"abcd-01-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			a := Album{ReleaseDate: tt.date}
			assert.Equal(t, tt.want, a.Year())
		})
	}
}

func TestPlaylistFormat_Extension(t *testing.T) {
	tests := []struct {
		format PlaylistFormat
		want   string
	}{
		{PlaylistFormatM3U, ".m3u"},
		{PlaylistFormatPLS, ".pls"},
		{PlaylistFormatWPL, ".wpl"},
		{PlaylistFormatZPL, ".zpl"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.Extension())
		})
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	assert.Equal(t, PlaylistFormatZPL, ParsePlaylistFormat("ZPL"))
	assert.Equal(t, PlaylistFormatM3U, ParsePlaylistFormat("unknown"))
}

func TestTrack_BaseNameAndFullMarker(t *testing.T) {
	track := Track{Path: "/music/Pub/Album/Full - X.mp3"}

	assert.Equal(t, "Full - X", track.BaseName())
	assert.True(t, IsFullRecording(track.Path))
	assert.False(t, IsFullRecording("/music/Pub/Full/1 - a.mp3"))
}
