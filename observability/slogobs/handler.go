package slogobs

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// HandlerOptions configures NewHandler.
type HandlerOptions struct {
	// Format selects text or JSON output. Defaults to FormatText.
	Format Format
	// Level is the minimum level written.
	Level slog.Level
	// Output defaults to os.Stderr.
	Output io.Writer
	// Colors forces ANSI colors for text output. When false, colors are still
	// enabled if Output is a terminal.
	Colors bool
}

// NewHandler builds the slog.Handler for the given options: tint for text,
// slog.JSONHandler for JSON.
func NewHandler(opts *HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	if opts.Format == FormatJSON {
		return slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level:       opts.Level,
			ReplaceAttr: replaceLevelName,
		})
	}

	colors := opts.Colors
	if !colors {
		if f, ok := output.(*os.File); ok {
			colors = isTerminal(f)
		}
	}

	return tint.NewHandler(output, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
		NoColor:    !colors,
	})
}

// replaceLevelName renders LevelTrace as "TRACE" instead of "DEBUG-4".
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LogLevelString(level))
		}
	}
	return a
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
