// Package logger provides a small leveled logger. Output goes to stderr
// for one-shot commands and to a log file while the reader UI owns the
// terminal.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level controls verbosity.
type Level int

const (
	// LevelOff disables all output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelDebug enables all output.
	LevelDebug
)

// ParseLevel maps a config string to a Level. Unknown values fall back
// to normal.
func ParseLevel(s string) Level {
	switch s {
	case "off":
		return LevelOff
	case "debug":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// Logger is safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
}

// New creates a logger writing to out. A nil out means stderr.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level: level,
		out:   log.New(out, "", log.Ltime),
	}
}

// SetOutput redirects all subsequent output to out.
func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.SetOutput(out)
}

func (l *Logger) logf(min Level, tag, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.level < min {
		return
	}
	l.out.Print(tag + " " + fmt.Sprintf(format, args...))
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, "[DBG]", format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelNormal, "[INF]", format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelNormal, "[WRN]", format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelNormal, "[ERR]", format, args...)
}
