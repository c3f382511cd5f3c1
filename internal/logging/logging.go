// Package logging provides a small structured logger with levels.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the logging severity level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field is a single structured key/value pair attached to a log entry
type Field func(map[string]interface{})

// WithField attaches a single key/value pair to a log entry
func WithField(key string, value interface{}) Field {
	return func(m map[string]interface{}) {
		m[key] = value
	}
}

// WithFields attaches multiple key/value pairs to a log entry
func WithFields(fields map[string]interface{}) Field {
	return func(m map[string]interface{}) {
		for k, v := range fields {
			m[k] = v
		}
	}
}

// Logger writes leveled, structured log lines
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a logger that writes to stderr at the given minimum level
func New(level Level) *Logger {
	return &Logger{
		out:   os.Stderr,
		level: level,
	}
}

// NewWithOutput creates a logger with a custom output writer (used in tests)
func NewWithOutput(level Level, out io.Writer) *Logger {
	return &Logger{
		out:   out,
		level: level,
	}
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs at info level
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs at warn level
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs at error level
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

func (l *Logger) log(level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	m := make(map[string]interface{})
	for _, f := range fields {
		f(m)
	}

	var sb strings.Builder
	sb.WriteString(time.Now().UTC().Format(time.RFC3339))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(msg)

	if len(m) > 0 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, m[k]))
		}
	}
	sb.WriteString("\n")

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, sb.String())
}
