// Package config provides configuration management for tubetag.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - The channel list file read and stamped by the batch runner
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// Library in ~/Music/tubetag, channels in ~/.yt-downloader/last_dled_channels.json
//	// Covers cropped and embedded, one folder at a time
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/settings.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Channel List
//
// The channel list is a JSON array:
//
//	[
//	    {
//	        "name": "Chanson",
//	        "url": "https://www.youtube.com/@chanson/videos",
//	        "only_music": true,
//	        "last_date": "2024-05-01T12:34:56.000000",
//	        "album_regexes": ["(?:[0-9]{8}|NA) - (?P<album_artist>.*) - (?P<album>.*) \\((?P<release_date>\\d+)\\)"]
//	    }
//	]
//
// LoadChannels validates every entry, including that the patterns compile,
// before anything is fetched.
package config
