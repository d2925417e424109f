package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/handiism/tubetag/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSettings_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	s := DefaultSettings()
	s.LibraryPath = "/music"
	s.BlackThreshold = 8
	s.MaxConcurrentFolders = 4
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"library_path": "/lib", "max_concurrent_folders": 0}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/lib", s.LibraryPath)
	assert.Equal(t, "yt-dlp", s.FetcherPath)
	assert.Equal(t, 1, s.MaxConcurrentFolders)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSettings_ToPathConfig(t *testing.T) {
	s := DefaultSettings()
	s.PlaylistFormat = "zpl"

	cfg := s.ToPathConfig()
	assert.Equal(t, model.PlaylistFormatZPL, cfg.PlaylistFormat)
	assert.Empty(t, cfg.PlaylistFileNameFormat)

	s.CreatePlaylist = true
	assert.Equal(t, "{album}", s.ToPathConfig().PlaylistFileNameFormat)
}

func TestChannel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		channel Channel
		wantErr bool
	}{
		{"minimal", Channel{Name: "Chanson", URL: "https://www.youtube.com/@chanson"}, false},
		{"with date and patterns", Channel{
			Name:         "Chanson",
			URL:          "https://www.youtube.com/@chanson",
			LastDate:     "2024-05-01T12:34:56.123456",
			AlbumRegexes: []string{`(?P<album>.*)`},
			TrackRegexes: []string{`(?P<track_number>\d+) - (?P<title>.*)`},
		}, false},
		{"missing name", Channel{URL: "https://www.youtube.com/@chanson"}, true},
		{"missing url", Channel{Name: "Chanson"}, true},
		{"bad url", Channel{Name: "Chanson", URL: "not a url"}, true},
		{"bad date", Channel{Name: "Chanson", URL: "https://x.test", LastDate: "yesterday"}, true},
		{"bad pattern", Channel{Name: "Chanson", URL: "https://x.test", TrackRegexes: []string{`(?P<title>.*`}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.channel.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestChannel_SinceAndStamp(t *testing.T) {
	c := Channel{Name: "A", URL: "https://x.test"}
	_, ok := c.Since()
	assert.False(t, ok)

	now := time.Date(2024, 5, 1, 12, 34, 56, 123456000, time.UTC)
	c.Stamp(now)
	assert.Equal(t, "2024-05-01T12:34:56.123456", c.LastDate)

	since, ok := c.Since()
	require.True(t, ok)
	assert.True(t, now.Equal(since))

	for _, s := range []string{"2024-05-01", "2024-05-01T12:34:56", "2024-05-01T12:34:56+02:00"} {
		c.LastDate = s
		since, ok := c.Since()
		require.True(t, ok, s)
		assert.Equal(t, "20240501", since.Format("20060102"), s)
	}
}

func TestLoadChannels(t *testing.T) {
	dir := t.TempDir()

	channels, err := LoadChannels(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, channels)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o644))
	channels, err = LoadChannels(empty)
	require.NoError(t, err)
	assert.Empty(t, channels)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`[{"name": "A", "url": "https://x.test", "album_regexes": ["("]}]`), 0o644))
	_, err = LoadChannels(invalid)
	assert.Error(t, err)
}

func TestLoadChannels_OnlyMusicDefaultsToTrue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	data := `[
		{"name": "Chanson", "url": "https://www.youtube.com/@chanson"},
		{"name": "Talks", "url": "https://www.youtube.com/@talks", "only_music": false}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	channels, err := LoadChannels(path)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.True(t, channels[0].OnlyMusic)
	assert.False(t, channels[1].OnlyMusic)
}

func TestSaveChannels_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "channels.json")
	in := []Channel{
		{Name: "Chanson", URL: "https://www.youtube.com/@chanson", OnlyMusic: true, LastDate: "2024-05-01T12:34:56.000000"},
		{Name: "Jazz", URL: "https://www.youtube.com/@jazz", TrackRegexes: []string{`(?P<title>.*)`}},
	}

	require.NoError(t, SaveChannels(path, in))
	out, err := LoadChannels(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"only_music": true`)
	assert.NotContains(t, string(data), "album_regexes")
}
