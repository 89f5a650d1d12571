// Package logger provides leveled logging with debug, info, warn, and error
// levels. It wraps the standard log package; a *Logger is constructed once in
// main and handed to each component explicitly, so there is no process-wide
// mutable logging state.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs are voluminous and usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel
)

// ParseLevel converts a config string into a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger is a leveled logger safe to share between components. A nil *Logger
// discards everything, which keeps components testable without wiring output.
type Logger struct {
	level Level
	out   *log.Logger
}

// New creates a Logger writing to stderr. Format "text" adds caller
// file/line information; any other value keeps the compact default.
func New(level, format string) *Logger {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	return &Logger{
		level: ParseLevel(level),
		out:   log.New(os.Stderr, "", flags),
	}
}

// NewWithWriter creates a Logger writing to w. Used by tests.
func NewWithWriter(level Level, w io.Writer) *Logger {
	return &Logger{
		level: level,
		out:   log.New(w, "", 0),
	}
}

// Debug logs a message at DebugLevel.
func (l *Logger) Debug(format string, args ...any) {
	l.log(DebugLevel, "[DEBUG] ", format, args...)
}

// Info logs a message at InfoLevel.
func (l *Logger) Info(format string, args ...any) {
	l.log(InfoLevel, "[INFO] ", format, args...)
}

// Warn logs a message at WarnLevel.
func (l *Logger) Warn(format string, args ...any) {
	l.log(WarnLevel, "[WARN] ", format, args...)
}

// Error logs a message at ErrorLevel.
func (l *Logger) Error(format string, args ...any) {
	l.log(ErrorLevel, "[ERROR] ", format, args...)
}

func (l *Logger) log(level Level, prefix, format string, args ...any) {
	if l == nil || l.out == nil || l.level > level {
		return
	}
	_ = l.out.Output(3, prefix+fmt.Sprintf(format, args...))
}
