package hal

import (
	"io"
	"log"
	"os"
)

// LogLevel filters backend diagnostics.
type LogLevel int

const (
	LogError LogLevel = iota
	LogWarn
	LogInfo
	LogDebug
)

// Logger is the minimal leveled logger backends share for driver
// diagnostics (validation messages, swapchain recreation, proc-address
// fallbacks). The zero value has no output and discards everything.
type Logger struct {
	level LogLevel
	out   *log.Logger
}

// NewLogger writes to w at the given level.
func NewLogger(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

var defaultLogger = NewLogger(os.Stderr, LogWarn)

// DefaultLogger returns the process-wide backend logger.
func DefaultLogger() *Logger { return defaultLogger }

// SetDefaultLogger replaces the process-wide backend logger.
func SetDefaultLogger(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

func (l *Logger) logf(level LogLevel, prefix, format string, args ...any) {
	if l == nil || l.out == nil || level > l.level {
		return
	}
	l.out.Printf(prefix+format, args...)
}

// Errorf logs at Error level.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LogError, "E ", format, args...) }

// Warnf logs at Warn level.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LogWarn, "W ", format, args...) }

// Infof logs at Info level.
func (l *Logger) Infof(format string, args ...any) { l.logf(LogInfo, "I ", format, args...) }

// Debugf logs at Debug level.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LogDebug, "D ", format, args...) }
