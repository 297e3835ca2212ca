package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option adjusts how New builds the observer's logger.
type Option func(*settings)

// settings start from OPENAI_LOG_FORMAT and OPENAI_LOG_LEVEL and write to
// stderr, so library logs never mix with a binary's stdout.
type settings struct {
	format Format
	level  slog.Level
	output io.Writer
	colors bool
	logger *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		format: GetFormatFromEnv(),
		level:  GetLogLevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithFormat overrides OPENAI_LOG_FORMAT.
func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

// WithLevel overrides OPENAI_LOG_LEVEL. Use LevelTrace to see every HTTP
// event and metric update.
func WithLevel(level slog.Level) Option {
	return func(s *settings) { s.level = level }
}

// WithOutput redirects logs, e.g. to a command's stderr writer in tests.
func WithOutput(output io.Writer) Option {
	return func(s *settings) { s.output = output }
}

// WithColors forces ANSI colors on text output even when the output is not a
// terminal.
func WithColors(enabled bool) Option {
	return func(s *settings) { s.colors = enabled }
}

// WithLogger reuses an application's logger. Format, level, output and color
// options are then ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
