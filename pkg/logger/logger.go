// Package logger provides structured logging for the client SDK.
// It wraps logrus with a component field so log lines from different
// SDK subsystems can be told apart by consumers.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a structured logger scoped to a component.
type Logger struct {
	entry *logrus.Entry
}

// Config controls logger construction.
type Config struct {
	Component string
	Level     string
	Format    string // "json" or "text"
	Output    io.Writer
}

// New creates a logger from the given config.
func New(cfg Config) *Logger {
	l := logrus.New()

	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	} else {
		l.SetOutput(os.Stderr)
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	entry := logrus.NewEntry(l)
	if cfg.Component != "" {
		entry = entry.WithField("component", cfg.Component)
	}

	return &Logger{entry: entry}
}

// NewDefault creates an info-level text logger for the given component.
func NewDefault(component string) *Logger {
	return New(Config{Component: component, Level: "info"})
}

// WithField returns a logger with an additional field attached.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

// WithFields returns a logger with additional fields attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(args ...interface{}) { l.entry.Debug(args...) }

// Info logs a message at info level.
func (l *Logger) Info(args ...interface{}) { l.entry.Info(args...) }

// Warn logs a message at warning level.
func (l *Logger) Warn(args ...interface{}) { l.entry.Warn(args...) }

// Error logs a message at error level.
func (l *Logger) Error(args ...interface{}) { l.entry.Error(args...) }

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }

// Warnf logs a formatted message at warning level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
