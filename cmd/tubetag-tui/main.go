package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/tubetag/internal/config"
	"github.com/handiism/tubetag/internal/logging"
	"github.com/handiism/tubetag/internal/tui"
)

func main() {
	configFlag := flag.String("config", config.DefaultSettingsPath(), "Path to config file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The screen belongs to the TUI, so only the log file gets log lines.
	closer, err := logging.Init(settings.LogFile, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
