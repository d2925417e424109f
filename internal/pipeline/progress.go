package pipeline

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent represents a tagging pass update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel

	// Folder is the album folder the event is about, if any.
	Folder string
}

// LogEvent writes event to the global logger, verbose events at debug level.
func LogEvent(event ProgressEvent) {
	var e *zerolog.Event
	switch event.Level {
	case LevelError:
		e = log.Error()
	case LevelWarning:
		e = log.Warn()
	case LevelVerbose:
		e = log.Debug()
	default:
		e = log.Info()
	}
	if event.Folder != "" {
		e = e.Str("folder", event.Folder)
	}
	e.Msg(event.Message)
}

// RunStats sums up a tagging pass.
type RunStats struct {
	Folders        int
	FailedFolders  int
	Tagged         int
	FailedFiles    int
	Deleted        int
	Warnings       int
	OrphansRemoved int
}

// Add accumulates the outcome of one folder.
func (s *RunStats) Add(r *FolderResult) {
	s.Folders++
	s.Tagged += r.Tagged
	s.FailedFiles += r.Failed
	s.Deleted += r.Deleted
	s.Warnings += r.Warnings
}

// Merge accumulates another pass.
func (s *RunStats) Merge(o RunStats) {
	s.Folders += o.Folders
	s.FailedFolders += o.FailedFolders
	s.Tagged += o.Tagged
	s.FailedFiles += o.FailedFiles
	s.Deleted += o.Deleted
	s.Warnings += o.Warnings
	s.OrphansRemoved += o.OrphansRemoved
}
