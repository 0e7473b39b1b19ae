// Package logger wraps zerolog with the small field-map API used across the
// service.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Fields map[string]interface{}

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	Z zerolog.Logger
}

var std = NewConsole(os.Stdout, zerolog.InfoLevel)

// New builds a logger writing JSON lines, or human-readable lines when format
// is "console". Unknown levels fall back to info.
func New(out io.Writer, level, format string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		return NewConsole(out, lvl)
	}
	return &Logger{Z: zerolog.New(out).With().Timestamp().Logger().Level(lvl)}
}

// NewConsole creates a zerolog ConsoleWriter-backed logger.
func NewConsole(out io.Writer, level zerolog.Level) *Logger {
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: true}
	return &Logger{Z: zerolog.New(cw).With().Timestamp().Logger().Level(level)}
}

// NewNop returns a no-op Logger instance.
func NewNop() *Logger {
	return &Logger{Z: zerolog.Nop()}
}

// SetStd replaces the package logger used by the wrapper functions.
func SetStd(l *Logger) {
	if l == nil {
		l = NewNop()
	}
	std = l
}

// Std returns the package logger.
func Std() *Logger {
	return std
}

// Named returns a child logger tagged with logger=name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Z: l.Z.With().Str("logger", name).Logger()}
}

func (l *Logger) Info(msg string, f Fields)  { write(l.Z.Info(), msg, f) }
func (l *Logger) Debug(msg string, f Fields) { write(l.Z.Debug(), msg, f) }
func (l *Logger) Warn(msg string, f Fields)  { write(l.Z.Warn(), msg, f) }
func (l *Logger) Error(msg string, f Fields) { write(l.Z.Error(), msg, f) }

func Info(msg string, f Fields)  { std.Info(msg, f) }
func Debug(msg string, f Fields) { std.Debug(msg, f) }
func Warn(msg string, f Fields)  { std.Warn(msg, f) }
func Error(msg string, f Fields) { std.Error(msg, f) }

func write(e *zerolog.Event, msg string, f Fields) {
	if f != nil {
		e = e.Fields(map[string]interface{}(f))
	}
	e.Msg(msg)
}
