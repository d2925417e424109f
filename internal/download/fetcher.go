package download

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/handiism/tubetag/internal/config"
	"github.com/pkg/errors"
)

// Fetcher downloads the new uploads of a channel into the library.
type Fetcher interface {
	Fetch(ctx context.Context, channel config.Channel) error
}

// Output templates, relative to the library. The publisher folder is the
// channel name from the channel list so the tagging pass knows where to look.
const (
	albumTemplate     = "%(upload_date)s - %(title)s"
	fullTemplate      = albumTemplate + "/Full - %(title)s.%(ext)s"
	chapterTemplate   = albumTemplate + "/%(section_number)d - %(section_title)s.%(ext)s"
	thumbnailTemplate = albumTemplate + "/_ - thumbnail.%(ext)s"
)

// ignorableErrors are fetcher failures that only concern single videos of
// the channel. The rest of the download is fine.
var ignorableErrors = []string{
	"ERROR: This live stream recording is not available",
	"ERROR: Sign in to confirm your age",
}

// YtDlp runs the yt-dlp binary.
type YtDlp struct {
	settings *config.Settings

	// Stderr receives the fetcher's stderr as it runs when set.
	Stderr io.Writer
}

// NewYtDlp creates a fetcher using settings.FetcherPath.
func NewYtDlp(settings *config.Settings) *YtDlp {
	return &YtDlp{settings: settings}
}

// Args returns the command line for one channel.
func (y *YtDlp) Args(channel config.Channel) []string {
	publisher := strings.ReplaceAll(channel.Name, "%", "%%") + "/"

	args := []string{
		"--match-filter", "!is_live",
		"--match-filter", "!was_live",
		"--ignore-errors",
		"--write-info-json",
		"--no-overwrites",
		"--no-continue",
		"--no-mtime",
		"--split-chapters",
	}

	if channel.OnlyMusic {
		args = append(args,
			"--extract-audio",
			"--audio-format", y.settings.AudioFormat,
			"--audio-quality", y.settings.AudioQuality,
		)
	}
	if since, ok := channel.Since(); ok {
		args = append(args, "--dateafter", since.Format("20060102"))
	}

	return append(args,
		"-o", publisher+fullTemplate,
		"-o", "chapter:"+publisher+chapterTemplate,
		"--write-thumbnail",
		"-o", "thumbnail:"+publisher+thumbnailTemplate,
		"--convert-thumbnails", "jpg",
		channel.URL,
	)
}

// Fetch runs yt-dlp from the library directory.
func (y *YtDlp) Fetch(ctx context.Context, channel config.Channel) error {
	cmd := exec.CommandContext(ctx, y.settings.FetcherPath, y.Args(channel)...)
	cmd.Dir = y.settings.LibraryPath

	var stderrBuf bytes.Buffer
	if y.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, y.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	stderr := stderrBuf.String()
	for _, msg := range ignorableErrors {
		if strings.Contains(stderr, msg) {
			return nil
		}
	}
	return errors.Wrapf(err, "%s: %s", y.settings.FetcherPath, lastLine(stderr))
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
