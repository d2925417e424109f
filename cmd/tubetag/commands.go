package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/handiism/tubetag/internal/audio"
	"github.com/handiism/tubetag/internal/config"
	"github.com/handiism/tubetag/internal/download"
	ioutils "github.com/handiism/tubetag/internal/io"
	"github.com/handiism/tubetag/internal/pipeline"
	"github.com/handiism/tubetag/internal/split"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

var (
	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "report what would change without touching any file",
	}
	playlistFlag = &cli.BoolFlag{
		Name:  "playlist",
		Usage: "write a playlist next to every tagged album",
	}
	concurrencyFlag = &cli.IntFlag{
		Name:  "concurrency",
		Usage: "album folders tagged at the same time",
	}
)

// applyFlags overrides settings with the run flags that were set.
func applyFlags(c *cli.Context, settings *config.Settings) {
	if c.IsSet(dryRunFlag.Name) {
		settings.DryRun = c.Bool(dryRunFlag.Name)
	}
	if c.IsSet(playlistFlag.Name) {
		settings.CreatePlaylist = c.Bool(playlistFlag.Name)
	}
	if c.IsSet(concurrencyFlag.Name) {
		settings.MaxConcurrentFolders = max(c.Int(concurrencyFlag.Name), 1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "fetch every channel of the channel list and tag what arrived",
		Flags: []cli.Flag{dryRunFlag, playlistFlag, concurrencyFlag},
		Action: func(c *cli.Context) error {
			settings := settingsFrom(c)
			applyFlags(c, settings)

			manager := download.NewManager(settings, afero.NewOsFs(), clockwork.NewRealClock(), pipeline.LogEvent)
			stats, err := manager.Run(c.Context)
			if err != nil {
				return err
			}
			printStats(stats, settings.DryRun)
			return nil
		},
	}
}

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "tag album folders already on disk",
		ArgsUsage: "<folder>...",
		Flags: []cli.Flag{
			dryRunFlag, playlistFlag, concurrencyFlag,
			&cli.BoolFlag{
				Name:  "publisher",
				Usage: "arguments are publisher folders holding album folders",
			},
			&cli.BoolFlag{
				Name:  "library",
				Usage: "arguments are library folders holding publisher folders",
			},
		},
		Action: func(c *cli.Context) error {
			folders := c.Args().Slice()
			if len(folders) == 0 {
				return errors.New("no folder given")
			}

			settings := settingsFrom(c)
			applyFlags(c, settings)

			channels, err := config.LoadChannels(settings.ChannelsPath)
			if err != nil {
				return err
			}
			grammars, err := pipeline.NewChannelGrammars(channels)
			if err != nil {
				return err
			}

			tagger := pipeline.NewTagger(settings, afero.NewOsFs(), pipeline.LogEvent)

			var stats pipeline.RunStats
			for _, folder := range folders {
				folder = filepath.Clean(folder)

				var (
					folderStats pipeline.RunStats
					err         error
				)
				switch {
				case c.Bool("library"):
					folderStats, err = tagger.TagLibrary(c.Context, folder, grammars)
				case c.Bool("publisher"):
					folderStats, err = tagger.TagPublisher(c.Context, folder, grammars.For(filepath.Base(folder)))
				default:
					publisher := filepath.Base(filepath.Dir(folder))
					folderStats, err = tagger.TagFolders(c.Context, []string{folder}, grammars.For(publisher))
				}
				stats.Merge(folderStats)
				if err != nil {
					return err
				}
			}

			printStats(stats, settings.DryRun)
			return nil
		},
	}
}

func cropCommand() *cli.Command {
	return &cli.Command{
		Name:      "crop",
		Usage:     "crop the black borders off thumbnails",
		ArgsUsage: "<image>...",
		Action: func(c *cli.Context) error {
			settings := settingsFrom(c)
			images := ioutils.NewImageService(afero.NewOsFs(), settings.BlackThreshold)

			failed := 0
			for _, path := range c.Args().Slice() {
				if err := images.CropToContent(c.Context, path); err != nil {
					failed++
					log.Warn().Err(err).Str("path", path).Msg("Skipping cover")
					continue
				}
				log.Info().Str("path", path).Msg("Cropped")
			}
			if failed > 0 {
				return errors.Errorf("%d image(s) could not be cropped", failed)
			}
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "print the tags of audio files",
		ArgsUsage: "<file>...",
		Action: func(c *cli.Context) error {
			for _, path := range c.Args().Slice() {
				summary, err := audio.ReadTags(path)
				if err != nil {
					return err
				}

				fmt.Println(path)
				fmt.Printf("  Format:       %s (%s)\n", summary.Format, summary.FileType)
				fmt.Printf("  Album:        %s\n", summary.Album)
				fmt.Printf("  Album artist: %s (sort: %s)\n", summary.AlbumArtist, summary.AlbumArtistSort)
				fmt.Printf("  Artist:       %s\n", summary.Artist)
				fmt.Printf("  Title:        %s\n", summary.Title)
				fmt.Printf("  Track:        %s\n", summary.TrackNumber)
				fmt.Printf("  Year:         %s\n", summary.ReleaseDate)
				fmt.Printf("  Publisher:    %s\n", summary.Publisher)
				if summary.CoverMIMEType != "" {
					fmt.Printf("  Cover:        %s\n", summary.CoverMIMEType)
				}
			}
			return nil
		},
	}
}

func splitCommand() *cli.Command {
	return &cli.Command{
		Name:  "split",
		Usage: "cut a full recording into tracks from a tracklist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Usage: "full recording", Required: true},
			&cli.StringFlag{Name: "tracklist", Usage: `file with one "title --- start" line per track`, Required: true},
			&cli.StringFlag{Name: "end", Usage: "end time of the last track", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output folder", Value: "."},
			&cli.StringFlag{Name: "ffmpeg", Usage: "ffmpeg executable", Value: "ffmpeg"},
			&cli.BoolFlag{Name: "run", Usage: "run ffmpeg instead of printing its arguments"},
		},
		Action: func(c *cli.Context) error {
			tracklist, err := os.ReadFile(c.String("tracklist"))
			if err != nil {
				return errors.WithStack(err)
			}

			segments, err := split.Plan(string(tracklist), c.String("end"))
			if err != nil {
				return err
			}
			args := split.Args(c.String("input"), segments, c.String("out"))

			if !c.Bool("run") {
				fmt.Println(c.String("ffmpeg") + " " + quoteArgs(args))
				return nil
			}

			cmd := exec.CommandContext(c.Context, c.String("ffmpeg"), args...)
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				return errors.Wrap(err, "ffmpeg")
			}
			log.Info().Int("tracks", len(segments)).Msg("Split complete")
			return nil
		},
	}
}

func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " '\"") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
