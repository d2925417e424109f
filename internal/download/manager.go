package download

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/handiism/tubetag/internal/config"
	ioutils "github.com/handiism/tubetag/internal/io"
	"github.com/handiism/tubetag/internal/naming"
	"github.com/handiism/tubetag/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Manager runs the channel batch: fetch each channel, tag what arrived and
// remember when it was fetched.
type Manager struct {
	settings *config.Settings
	fs       afero.Fs
	clock    clockwork.Clock

	fetcher Fetcher
	tagger  *pipeline.Tagger

	onProgress func(pipeline.ProgressEvent)
}

// NewManager creates a new Manager fetching with yt-dlp.
func NewManager(settings *config.Settings, fs afero.Fs, clock clockwork.Clock, onProgress func(pipeline.ProgressEvent)) *Manager {
	return &Manager{
		settings:   settings,
		fs:         fs,
		clock:      clock,
		fetcher:    NewYtDlp(settings),
		tagger:     pipeline.NewTagger(settings, fs, onProgress),
		onProgress: onProgress,
	}
}

// Processed returns how many album folders have been tagged so far.
func (m *Manager) Processed() int {
	return m.tagger.Processed()
}

// Run processes the channel list file in order and saves it after every
// channel.
func (m *Manager) Run(ctx context.Context) (pipeline.RunStats, error) {
	channels, err := config.LoadChannels(m.settings.ChannelsPath)
	if err != nil {
		return pipeline.RunStats{}, err
	}
	if len(channels) == 0 {
		m.progress(pipeline.ProgressEvent{Message: fmt.Sprintf("No channels in %s", m.settings.ChannelsPath), Level: pipeline.LevelWarning})
		return pipeline.RunStats{}, nil
	}

	return m.RunChannels(ctx, channels, func() error {
		return config.SaveChannels(m.settings.ChannelsPath, channels)
	})
}

// RunChannels processes channels in order, stamping LastDate of each channel
// whose fetch succeeded and calling save afterwards.
//
// Every channel's patterns are compiled before anything is fetched, so a
// bad pattern aborts the batch without side effects.
func (m *Manager) RunChannels(ctx context.Context, channels []config.Channel, save func() error) (pipeline.RunStats, error) {
	var stats pipeline.RunStats

	grammars := make([]naming.Grammars, len(channels))
	for i, ch := range channels {
		g, err := naming.NewGrammars(ch.AlbumRegexes, ch.TrackRegexes)
		if err != nil {
			return stats, errors.Wrapf(err, "channel %q", ch.Name)
		}
		grammars[i] = g
	}

	if err := ioutils.EnsureDir(m.fs, m.settings.LibraryPath); err != nil {
		return stats, err
	}

	for i := range channels {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ch := &channels[i]
		channelStats, err := m.runChannel(ctx, ch, grammars[i])
		stats.Merge(channelStats)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			m.progress(pipeline.ProgressEvent{Message: fmt.Sprintf("Error processing %s: %v", ch.Name, err), Level: pipeline.LevelError})
			continue
		}

		ch.Stamp(m.clock.Now())
		if save != nil {
			if err := save(); err != nil {
				return stats, err
			}
		}
	}

	return stats, nil
}

func (m *Manager) runChannel(ctx context.Context, ch *config.Channel, grammars naming.Grammars) (pipeline.RunStats, error) {
	m.progress(pipeline.ProgressEvent{Message: fmt.Sprintf("Download: %s", ch.Name), Level: pipeline.LevelInfo})

	if err := m.fetcher.Fetch(ctx, *ch); err != nil {
		return pipeline.RunStats{}, err
	}

	publisherDir := filepath.Join(m.settings.LibraryPath, ch.Name)
	exists, err := afero.DirExists(m.fs, publisherDir)
	if err != nil {
		return pipeline.RunStats{}, errors.WithStack(err)
	}
	if !exists {
		m.progress(pipeline.ProgressEvent{Message: fmt.Sprintf("Nothing new for %s", ch.Name), Level: pipeline.LevelVerbose})
		return pipeline.RunStats{}, nil
	}

	return m.tagger.TagPublisher(ctx, publisherDir, grammars)
}

func (m *Manager) progress(event pipeline.ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
