package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// EnvLevel is the environment variable consulted when no level is given.
const EnvLevel = "LOG_LEVEL"

// Options configures New and SetDefault.
type Options struct {
	Module  string
	Version string
	// Level is one of debug, info, warn, error (case-insensitive).
	Level string
	// Format is "text" (default) or "json".
	Format string
	// Writer defaults to os.Stderr.
	Writer io.Writer
	// RunID defaults to a random UUID.
	RunID string
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to
// the given fallback.
func ParseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// New builds a logger from opts without installing it.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	levelName := opts.Level
	if levelName == "" {
		levelName = os.Getenv(EnvLevel)
	}
	level := ParseLevel(levelName, slog.LevelError)

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	return slog.New(handler).With(
		"module", opts.Module,
		"version", opts.Version,
		"run_id", runID,
	)
}

// SetDefault builds a logger and installs it as the slog default.
func SetDefault(opts Options) *slog.Logger {
	logger := New(opts)
	slog.SetDefault(logger)
	return logger
}
