// Package logger exposes the process-wide logger every skiff component
// writes to. The initial level comes from SKIFF_LOG_LEVEL; the config
// file may adjust it later via SetLogLevel.
package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

type Logger struct {
	*log.Logger
}

var (
	instance *Logger
	once     sync.Once
)

// GetLogger returns the shared logger, creating it on first use. The env
// override is applied here so early callers (config loading, init) see
// the requested level; ENV=dev implies debug when no level is set.
func GetLogger() *Logger {
	once.Do(func() {
		instance = &Logger{
			Logger: log.NewWithOptions(os.Stderr, log.Options{
				Level:           log.InfoLevel,
				ReportTimestamp: true,
				TimeFormat:      "15:04:05",
			}),
		}
		switch {
		case os.Getenv("SKIFF_LOG_LEVEL") != "":
			instance.SetLogLevel(os.Getenv("SKIFF_LOG_LEVEL"))
		case os.Getenv("ENV") == "dev":
			instance.SetLogLevel("debug")
		}
	})
	return instance
}

// SetLogLevel sets the level from its name. Unknown names mean info.
func (l *Logger) SetLogLevel(level string) {
	parsed := log.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		parsed = log.DebugLevel
	case "warn", "warning":
		parsed = log.WarnLevel
	case "error":
		parsed = log.ErrorLevel
	case "fatal":
		parsed = log.FatalLevel
	}
	l.SetLevel(parsed)
	// Keep the charm default logger in sync for any stray log.* call
	log.SetLevel(parsed)
}

// Package-level helpers keep call sites to one line.

func Debug(msg string, keyvals ...interface{}) {
	GetLogger().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	GetLogger().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	GetLogger().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	GetLogger().Error(msg, keyvals...)
}

func Fatal(msg string, keyvals ...interface{}) {
	GetLogger().Fatal(msg, keyvals...)
}
