// Package logging configures the global zerolog logger used by the tubetag
// commands.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Init points log.Logger at a rotating logFile plus the extra writers, and
// sets the global level. An empty logFile only logs to the writers.
//
// The returned closer releases the log file.
func Init(logFile string, verbose bool, writers ...io.Writer) (io.Closer, error) {
	var logWriters []io.Writer
	var closer io.Closer = nopCloser{}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
			return nil, errors.WithStack(err)
		}
		lj := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    1,
			MaxBackups: 2,
		}
		logWriters = append(logWriters, lj)
		closer = lj
	}
	logWriters = append(logWriters, writers...)

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Logger = log.Output(io.MultiWriter(logWriters...)).
		With().Timestamp().Logger()

	return closer, nil
}

// Console returns a human readable writer for a terminal.
func Console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
