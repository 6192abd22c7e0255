// Package logging builds the program's slog.Logger: a quiet console sink
// plus an optional verbose log file.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// ConsoleLevel is the minimum level written to the console.
const ConsoleLevel = slog.LevelWarn

// Console formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolveFormat turns "auto" into text when w is a terminal and json
// otherwise. Other formats are returned unchanged.
func ResolveFormat(format string, w io.Writer) string {
	if format != FormatAuto && format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return FormatText
	}
	return FormatJSON
}

// Options describes the sinks of a logger.
type Options struct {
	Console       io.Writer
	ConsoleFormat string
	ConsoleLevel  slog.Level

	// File, if non-nil, receives text records at FileLevel and above.
	File      io.Writer
	FileLevel slog.Level
}

// New builds a logger from opts.
func New(opts Options) *slog.Logger {
	var handlers []slog.Handler

	if opts.Console != nil {
		handlerOpts := &slog.HandlerOptions{Level: opts.ConsoleLevel}
		if ResolveFormat(opts.ConsoleFormat, opts.Console) == FormatText {
			handlers = append(handlers, slog.NewTextHandler(opts.Console, handlerOpts))
		} else {
			handlers = append(handlers, slog.NewJSONHandler(opts.Console, handlerOpts))
		}
	}

	if opts.File != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.File, &slog.HandlerOptions{Level: opts.FileLevel}))
	}

	return slog.New(Multi(handlers...))
}

// OpenFile opens path for appending, creating it if missing.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// Setup returns the program logger: stderr at ConsoleLevel in the given
// format, plus logFile (when set) at level. The returned close function
// releases the log file.
func Setup(level, format, logFile string) (*slog.Logger, func() error, error) {
	opts := Options{
		Console:       os.Stderr,
		ConsoleFormat: format,
		ConsoleLevel:  ConsoleLevel,
	}

	closeFn := func() error { return nil }
	if logFile != "" {
		f, err := OpenFile(logFile)
		if err != nil {
			return nil, nil, err
		}
		opts.File = f
		opts.FileLevel = ParseLevel(level)
		closeFn = f.Close
	}

	return New(opts), closeFn, nil
}

// multiHandler fans each record out to every handler that accepts its level.
type multiHandler struct {
	handlers []slog.Handler
}

// Multi returns a handler that writes each record to all of handlers.
func Multi(handlers ...slog.Handler) slog.Handler {
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
