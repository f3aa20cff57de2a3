// Package logx builds the process logger.
//
// Output goes to stderr (stdout carries command output) and, when a file path
// is configured, to a size-rotated log file as JSON.
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

type Config struct {
	Level  string
	Format string // "console" or "json"
	File   string
}

// New returns the root logger and a closer for the file sink. The closer is
// never nil.
func New(cfg Config) (zerolog.Logger, io.Closer) {
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.ErrorFieldName = "err"

	var stderr io.Writer = os.Stderr
	if !strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat}
	}

	writers := []io.Writer{stderr}
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(cfg.File); path != "" {
		rotating := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		writers = append(writers, rotating)
		closer = rotating
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().
		Timestamp().
		Logger()
	return logger, closer
}

func ParseLevel(value string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return def
	case "warning":
		return zerolog.WarnLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return def
	}
	return level
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
