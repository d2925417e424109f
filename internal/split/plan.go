// Package split plans how to cut a full recording into per-track files when
// the video has no chapters but its description carries a tracklist.
//
// A tracklist has one line per track, the title and its start time separated
// by " --- ":
//
//	1 - Leaf- Paperdress --- 00:00
//	2 - Lil' Fish- White Cloud --- 06:05
//	3 - Boards of Canada- Julie and Candy --- 9:50
//
// Each track ends where the next one starts; the last one ends at the end
// time given separately. Args turns the plan into a single ffmpeg invocation
// that stream-copies every segment into "<title>.mp3".
package split

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/handiism/tubetag/internal/model"
	"github.com/pkg/errors"
)

// Separator splits a tracklist line into title and start time.
const Separator = " --- "

// ErrBadTracklist means a tracklist line or timestamp could not be used.
var ErrBadTracklist = errors.New("bad tracklist")

// Segment is one track of the recording.
type Segment struct {
	Title string
	Start time.Duration
	End   time.Duration
}

// Plan parses a tracklist into contiguous segments ending at end.
//
// Blank lines are skipped. Start times must strictly increase and stay
// before end.
func Plan(tracklist, end string) ([]Segment, error) {
	last, err := ParseTimestamp(end)
	if err != nil {
		return nil, err
	}

	var segments []Segment
	for i, line := range strings.Split(tracklist, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		title, start, ok := strings.Cut(line, Separator)
		if !ok || strings.TrimSpace(title) == "" {
			return nil, errors.Wrapf(ErrBadTracklist, "line %d: %q", i+1, line)
		}
		at, err := ParseTimestamp(start)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", i+1)
		}

		if n := len(segments); n > 0 {
			if at <= segments[n-1].Start {
				return nil, errors.Wrapf(ErrBadTracklist, "line %d: %s does not come after the previous track", i+1, start)
			}
			segments[n-1].End = at
		}
		segments = append(segments, Segment{Title: strings.TrimSpace(title), Start: at})
	}

	if len(segments) == 0 {
		return nil, errors.Wrap(ErrBadTracklist, "no tracks")
	}
	if n := len(segments); last <= segments[n-1].Start {
		return nil, errors.Wrapf(ErrBadTracklist, "end %s is before the last track", end)
	}
	segments[len(segments)-1].End = last

	return segments, nil
}

// ParseTimestamp reads "ss", "mm:ss" or "h:mm:ss".
func ParseTimestamp(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if s == "" || len(parts) > 3 {
		return 0, errors.Wrapf(ErrBadTracklist, "timestamp %q", s)
	}

	var total time.Duration
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || (i > 0 && v >= 60) {
			return 0, errors.Wrapf(ErrBadTracklist, "timestamp %q", s)
		}
		total = total*60 + time.Duration(v)
	}
	return total * time.Second, nil
}

// FormatTimestamp writes d as "h:mm:ss".
func FormatTimestamp(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// Args returns the ffmpeg arguments cutting input into one file per segment
// inside outDir.
func Args(input string, segments []Segment, outDir string) []string {
	args := []string{"-i", input}
	for _, s := range segments {
		args = append(args,
			"-ss", FormatTimestamp(s.Start),
			"-to", FormatTimestamp(s.End),
			"-c", "copy",
			filepath.Join(outDir, model.SanitizeFileName(s.Title)+".mp3"),
		)
	}
	return args
}
