// Package logging provides structured logging for fsfixture using zerolog.
package logging

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger     *zerolog.Logger
	prettyMode atomic.Bool
)

func init() {
	// Default to JSON logging at info level
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	logger = &l
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Options configures the process logger.
type Options struct {
	// Debug lowers the level to debug.
	Debug bool
	// Human selects the console writer instead of JSON on stderr.
	Human bool
	// File, when set, also writes JSON logs to a rotating file.
	File string
	// FileMaxSizeMB is the size at which the log file is rotated.
	FileMaxSizeMB int
	// FileMaxBackups is the number of rotated files kept.
	FileMaxBackups int
	// FileMaxAgeDays is the age after which rotated files are removed.
	FileMaxAgeDays int
}

// Init configures the global logger. The returned closer flushes and closes
// the log file, if any.
func Init(opts Options) io.Closer {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	SetPrettyMode(opts.Human)

	var console io.Writer
	if opts.Human {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	} else {
		console = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	output := zerolog.LevelWriter(zerolog.LevelWriterAdapter{Writer: console})
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.FileMaxSizeMB,
			MaxBackups: opts.FileMaxBackups,
			MaxAge:     opts.FileMaxAgeDays,
		}
		closer = lj
		output = zerolog.MultiLevelWriter(console, lj)
	}

	l := zerolog.New(output).With().Timestamp().Logger()
	logger = &l
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// L returns the base logger.
func L() *zerolog.Logger {
	return logger
}

// SetLogger allows overriding the global logger (useful for testing).
func SetLogger(l zerolog.Logger) {
	logger = &l
}

// SetPrettyMode toggles the human-readable companion fields ("_h") added by
// CompletionEvent.
func SetPrettyMode(on bool) {
	prettyMode.Store(on)
}

// IsPrettyMode reports whether human-readable companion fields are emitted.
func IsPrettyMode() bool {
	return prettyMode.Load()
}
