// Package observability provides the process-wide diagnostic log for snippets.
//
// Entries are written to a log file, never to stdout, so command output stays
// machine-readable. Logging is diagnostic only: a failure to log never fails a
// command.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Format selects the slog handler used for the log file.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures a Logger.
type Options struct {
	// Level is the minimum level written ("debug", "info", "warn", "error").
	Level string

	// Format is "text" or "json". Empty means text.
	Format Format
}

// Logger wraps slog with the file it writes to.
type Logger struct {
	mu     sync.Mutex
	inner  *slog.Logger
	closer io.Closer
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch Format(strings.ToLower(string(opts.Format))) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, handlerOpts)
	case FormatText, "":
		handler = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("observability: unknown log format %q", opts.Format)
	}
	return &Logger{inner: slog.New(handler)}, nil
}

// OpenFile creates a logger appending to the file at path. Parent directories
// are created as needed.
func OpenFile(path string, opts Options) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("observability: failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to open log file: %w", err)
	}
	l, err := New(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	l.closer = f
	return l, nil
}

// Discard returns a logger that drops every entry.
func Discard() *Logger {
	return &Logger{inner: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel converts a level name to a slog.Level. Empty means debug.
func ParseLevel(name string) (slog.Level, error) {
	if name == "" {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("observability: unknown log level %q", name)
	}
	return level, nil
}

// With returns a logger that adds key=value to every entry. The returned
// logger does not own the file; close the parent.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{inner: l.inner.With(slog.Any(key, value))}
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
}

// Close releases the underlying file, if any. It is safe to call more than
// once.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
