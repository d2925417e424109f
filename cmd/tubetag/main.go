package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/tubetag/internal/config"
	"github.com/handiism/tubetag/internal/logging"
	"github.com/handiism/tubetag/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:        "tubetag",
		Usage:       "download YouTube channels and tag the audio from file names",
		Description: "Runs yt-dlp over the channel list, then tags every album folder from its folder and file names",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the settings file",
				Value: config.DefaultSettingsPath(),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "show verbose output",
			},
		},
		Before: setup,
		After: func(c *cli.Context) error {
			if closer, ok := c.App.Metadata["logCloser"].(io.Closer); ok {
				return closer.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(),
			tagCommand(),
			cropCommand(),
			inspectCommand(),
			splitCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Interrupted, cancelled.")
			os.Exit(130)
		}
		log.Error().Stack().Err(err).Msg("tubetag failed")
		os.Exit(1)
	}
}

// setup loads the settings and points the global logger at the console and
// the log file.
func setup(c *cli.Context) error {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	closer, err := logging.Init(settings.LogFile, c.Bool("verbose"), logging.Console(os.Stderr))
	if err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata["settings"] = settings
	c.App.Metadata["logCloser"] = closer
	return nil
}

func settingsFrom(c *cli.Context) *config.Settings {
	if settings, ok := c.App.Metadata["settings"].(*config.Settings); ok {
		return settings
	}
	return config.DefaultSettings()
}

func printStats(stats pipeline.RunStats, dryRun bool) {
	heading := "Complete!"
	if dryRun {
		heading = "Dry run complete, nothing was changed."
	}
	fmt.Println()
	fmt.Println(heading)
	fmt.Printf("  Albums:                  %d (%d failed)\n", stats.Folders, stats.FailedFolders)
	fmt.Printf("  Files tagged:            %d (%d failed)\n", stats.Tagged, stats.FailedFiles)
	fmt.Printf("  Full recordings removed: %d\n", stats.Deleted)
	fmt.Printf("  Empty downloads removed: %d\n", stats.OrphansRemoved)
	fmt.Printf("  Warnings:                %d\n", stats.Warnings)
}
