package config

import (
	"os"
	"path/filepath"

	"github.com/handiism/tubetag/internal/model"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// Settings holds all configuration options.
type Settings struct {
	// Library layout
	LibraryPath  string `json:"library_path"`
	ChannelsPath string `json:"channels_path"`
	LogFile      string `json:"log_file"`

	// Fetcher settings
	FetcherPath  string `json:"fetcher_path"`
	AudioFormat  string `json:"audio_format"`
	AudioQuality string `json:"audio_quality"`

	// Cover art settings
	SaveCoverInTags bool  `json:"save_cover_in_tags"`
	CropCovers      bool  `json:"crop_covers"`
	CoverMaxSize    int   `json:"cover_max_size"`
	BlackThreshold  uint8 `json:"black_threshold"`

	// Playlist settings
	CreatePlaylist         bool   `json:"create_playlist"`
	PlaylistFormat         string `json:"playlist_format"` // m3u, pls, wpl, zpl
	PlaylistFileNameFormat string `json:"playlist_file_name_format"`
	M3UExtended            bool   `json:"m3u_extended"`

	// Tagging pass
	DryRun               bool `json:"dry_run"`
	MaxConcurrentFolders int  `json:"max_concurrent_folders"`
}

// ConfigDir is the directory holding the settings, the channel list and the
// log file.
func ConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".yt-downloader")
}

// DefaultSettingsPath is where the CLI looks for settings without --config.
func DefaultSettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		LibraryPath:  filepath.Join(homeDir, "Music", "tubetag"),
		ChannelsPath: filepath.Join(ConfigDir(), "last_dled_channels.json"),
		LogFile:      filepath.Join(ConfigDir(), "tubetag.log"),

		FetcherPath:  "yt-dlp",
		AudioFormat:  "mp3",
		AudioQuality: "192",

		SaveCoverInTags: true,
		CropCovers:      true,
		CoverMaxSize:    1000,
		BlackThreshold:  0,

		CreatePlaylist:         false,
		PlaylistFormat:         "m3u",
		PlaylistFileNameFormat: "{album}",
		M3UExtended:            true,

		DryRun:               false,
		MaxConcurrentFolders: 1,
	}
}

// Load reads settings from a JSON file. A missing file gives the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, errors.WithStack(err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if settings.MaxConcurrentFolders < 1 {
		settings.MaxConcurrentFolders = 1
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithStack(err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.WriteFile(path, data, 0o644))
}

// ToPathConfig converts settings to PathConfig. Playlists are disabled by
// returning an empty file name format.
func (s *Settings) ToPathConfig() *model.PathConfig {
	cfg := &model.PathConfig{
		PlaylistFormat: model.ParsePlaylistFormat(s.PlaylistFormat),
	}
	if s.CreatePlaylist {
		cfg.PlaylistFileNameFormat = s.PlaylistFileNameFormat
	}
	return cfg
}
