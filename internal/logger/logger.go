// Package logger is a leveled logger that writes to a file. The TUI owns the
// terminal, so nothing may log to stdout or stderr while it runs.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level is the logging level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
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

// ParseLevel converts a config string to a Level. Unknown strings map to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled log lines to a single destination.
type Logger struct {
	mu     sync.Mutex
	level  Level
	logger *log.Logger
	file   *os.File
}

// New creates a logger writing to the file at path, creating parent
// directories as needed. An empty path yields a logger that discards
// everything.
func New(level Level, path string) (*Logger, error) {
	if path == "" {
		return &Logger{level: level, logger: log.New(io.Discard, "", 0)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		level:  level,
		logger: log.New(f, "", log.LstdFlags),
		file:   f,
	}, nil
}

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

var (
	defaultMu     sync.RWMutex
	defaultLogger = &Logger{level: LevelInfo, logger: log.New(io.Discard, "", 0)}
)

// Init installs the package-level default logger. Before Init everything is
// discarded.
func Init(level Level, path string) error {
	l, err := New(level, path)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	return nil
}

func get() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Debugf logs to the default logger at debug level.
func Debugf(format string, args ...any) { get().Debugf(format, args...) }

// Infof logs to the default logger at info level.
func Infof(format string, args ...any) { get().Infof(format, args...) }

// Warnf logs to the default logger at warn level.
func Warnf(format string, args ...any) { get().Warnf(format, args...) }

// Errorf logs to the default logger at error level.
func Errorf(format string, args ...any) { get().Errorf(format, args...) }
