// Package logging provides structured logging for the PawTrail core.
// It is a thin facade over logrus so packages log through one configured
// instance without threading a logger through every constructor.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	global *logrus.Logger
	once   sync.Once
)

// Init initializes the global logger. Format is "json" or "text"; level is
// one of debug, info, warn, error. Safe to call once; later calls are no-ops.
func Init(out io.Writer, level, format string) {
	once.Do(func() {
		global = newLogger(out, level, format)
	})
}

// Get returns the global logger instance, initializing it with defaults if
// Init was never called.
func Get() *logrus.Logger {
	if global == nil {
		Init(os.Stdout, "info", "json")
	}
	return global
}

func newLogger(out io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l
}

// Fields is a map of contextual key/value pairs attached to a log entry.
type Fields = logrus.Fields

// Debug logs a debug message with optional context.
func Debug(message string, fields Fields) {
	Get().WithFields(fields).Debug(message)
}

// Info logs an info message with optional context.
func Info(message string, fields Fields) {
	Get().WithFields(fields).Info(message)
}

// Warn logs a warning message with optional context.
func Warn(message string, fields Fields) {
	Get().WithFields(fields).Warn(message)
}

// Error logs an error message with optional context.
func Error(message string, err error, fields Fields) {
	entry := Get().WithFields(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)
}
