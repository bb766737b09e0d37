// Package log provides structured logging for rootexec.
//
// Diagnostic output (the reason an exec failed) goes straight to
// stderr via the errmsg package and is not logging; this package
// carries the optional step traces enabled by --verbose and --debug.
// The resolver stays silent at the default level so the run path keeps
// its "no output unless it fails" contract.
package log

import (
	"io"
	"log/slog"
	"sync"
)

// Logger is the interface for structured logging. Methods match
// slog's signatures for easy integration.
type Logger interface {
	// Debug logs internal state: classification results, header
	// offsets, per-step chain traces.
	Debug(msg string, args ...any)

	// Info logs operational context, such as which file a resolution
	// step is about to examine.
	Info(msg string, args ...any)

	// Warn logs conditions worth noting that do not stop resolution.
	Warn(msg string, args ...any)

	// Error logs failures. The resolver reports failures through its
	// error values instead; this level exists for callers.
	Error(msg string, args ...any)

	// With returns a Logger carrying additional context attributes.
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New creates a Logger backed by slog with the given handler.
func New(h slog.Handler) Logger {
	return &slogLogger{l: slog.New(h)}
}

// Setup builds a Logger writing to w at the level implied by the
// verbosity flags: error-only for quiet, info for verbose, debug for
// debug, warn otherwise. Format "json" selects JSON output; anything
// else selects text.
func Setup(w io.Writer, quiet, verbose, debug bool, format string) Logger {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	case quiet:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return New(h)
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

// noopLogger discards all output.
type noopLogger struct{}

// NewNoop returns a logger that discards everything. Useful in tests
// and as the pre-initialization default.
func NewNoop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) With(...any) Logger   { return noopLogger{} }

var (
	defaultLogger Logger = noopLogger{}
	defaultMu     sync.RWMutex
)

// Default returns the process-wide logger. It is a noop until
// SetDefault is called.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault installs the process-wide logger. Called once from main
// after flag parsing.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}
