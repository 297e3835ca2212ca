package slogobs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatText is a single-line, optionally colorized format for terminals.
	// Example: 10:40:35.000 DBG openai request openai.endpoint=/chat/completions
	FormatText Format = "text"

	// FormatJSON is one JSON object per line, for log aggregation.
	FormatJSON Format = "json"
)

// LevelTrace sits below slog.LevelDebug and is used for per-request detail.
const LevelTrace = slog.LevelDebug - 4

// ParseFormat parses a format string. Unknown values yield FormatText.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// GetFormatFromEnv reads OPENAI_LOG_FORMAT, falling back to LOG_FORMAT.
func GetFormatFromEnv() Format {
	if format := os.Getenv("OPENAI_LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		return ParseFormat(format)
	}
	return FormatText
}

// ParseLogLevel parses TRACE, DEBUG, INFO, WARN/WARNING or ERROR
// (case-insensitive). Unknown values yield INFO.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogLevelFromEnv reads OPENAI_LOG_LEVEL, falling back to LOG_LEVEL.
// Default: INFO
func GetLogLevelFromEnv() slog.Level {
	level := os.Getenv("OPENAI_LOG_LEVEL")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		return slog.LevelInfo
	}
	return ParseLogLevel(level)
}

// LogLevelString returns the canonical name of a level.
func LogLevelString(level slog.Level) string {
	switch level {
	case LevelTrace:
		return "TRACE"
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}
