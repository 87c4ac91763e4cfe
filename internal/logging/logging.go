// Package logging configures the process-wide zerolog logger.
//
// Diagnostics go to stderr through a console writer; stdout is reserved for
// results. An optional rotating file sink records every run at debug level.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RunID identifies one invocation in a shared log file.
var RunID = xid.New().String()

type Options struct {
	Verbose   int
	Quiet     bool
	NoColor   bool
	File      string
	FileLevel string
}

func New(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(zerolog.WarnLevel)
}

// Setup replaces the global logger. The returned closer flushes the file
// sink, if any.
func Setup(stderr io.Writer, opts Options) (io.Closer, error) {
	consoleLevel := ConsoleLevel(opts)
	console := zerolog.ConsoleWriter{
		Out:           stderr,
		NoColor:       opts.NoColor,
		TimeFormat:    time.Kitchen,
		FieldsExclude: []string{"run"},
	}
	writers := []io.Writer{
		&zerolog.FilteredLevelWriter{Writer: zerolog.LevelWriterAdapter{Writer: console}, Level: consoleLevel},
	}
	lowest := consoleLevel

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		fileLevel := ParseLevel(opts.FileLevel, zerolog.DebugLevel)
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: rotating},
			Level:  fileLevel,
		})
		if fileLevel < lowest {
			lowest = fileLevel
		}
		closer = rotating
	}

	zerolog.SetGlobalLevel(lowest)
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Str("run", RunID).
		Logger()
	return closer, nil
}

// ConsoleLevel maps -v/-q and the DEBUG environment variable to a level.
func ConsoleLevel(opts Options) zerolog.Level {
	if _, debug := os.LookupEnv("DEBUG"); debug {
		return zerolog.DebugLevel
	}
	if opts.Quiet {
		return zerolog.ErrorLevel
	}
	switch {
	case opts.Verbose >= 2:
		return zerolog.DebugLevel
	case opts.Verbose == 1:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

func ParseLevel(raw string, fallback zerolog.Level) zerolog.Level {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil || lvl == zerolog.NoLevel {
		return fallback
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
