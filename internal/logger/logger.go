package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level. Unknown values map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// F is a shorthand for creating a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Config holds logger configuration
type Config struct {
	Level      Level
	FilePath   string // empty disables the file sink
	MaxSize    int64  // bytes before rotation
	MaxAge     int    // days before rotation
	MaxBackups int
	Console    bool // mirror entries to stderr
}

// DefaultConfig returns the default configuration, logging to
// ~/.snipvault/logs/snipvault.log with the console disabled so the TUI
// is not disturbed.
func DefaultConfig() Config {
	path := ""
	if home, err := os.UserHomeDir(); err == nil {
		path = filepath.Join(home, ".snipvault", "logs", "snipvault.log")
	}

	return Config{
		Level:      INFO,
		FilePath:   path,
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     7,
		MaxBackups: 5,
		Console:    false,
	}
}

// sink is the shared output of a logger and all loggers derived from it
type sink struct {
	mu      sync.Mutex
	config  Config
	file    *os.File
	writers []io.Writer
}

// Logger writes leveled entries with optional preset fields
type Logger struct {
	sink   *sink
	fields []Field
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Init installs the global logger. Calling it again replaces the previous
// one after closing it.
func Init(config Config) error {
	l, err := New(config)
	if err != nil {
		return err
	}

	globalMu.Lock()
	prev := globalLogger
	globalLogger = l
	globalMu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// New creates a logger writing to the configured sinks
func New(config Config) (*Logger, error) {
	s := &sink{config: config}

	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		if err := s.open(); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		if err := s.rotateIfNeeded(); err != nil {
			return nil, err
		}
	} else {
		s.resetWriters()
	}

	return &Logger{sink: s}, nil
}

// NewWriter creates a logger writing only to w. Used by tests and by the
// dev server, which logs to stdout.
func NewWriter(w io.Writer, level Level) *Logger {
	return &Logger{sink: &sink{
		config:  Config{Level: level},
		writers: []io.Writer{w},
	}}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return NewWriter(io.Discard, ERROR+1)
}

func (s *sink) open() error {
	file, err := os.OpenFile(s.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	s.file = file
	s.resetWriters()
	return nil
}

func (s *sink) resetWriters() {
	s.writers = s.writers[:0]
	if s.file != nil {
		s.writers = append(s.writers, s.file)
	}
	if s.config.Console {
		s.writers = append(s.writers, os.Stderr)
	}
}

// rotateIfNeeded must be called with s.mu held or before the sink is shared
func (s *sink) rotateIfNeeded() error {
	if s.file == nil {
		return nil
	}

	info, err := s.file.Stat()
	if err != nil {
		return err
	}

	tooBig := s.config.MaxSize > 0 && info.Size() >= s.config.MaxSize
	tooOld := s.config.MaxAge > 0 && info.Size() > 0 &&
		time.Since(info.ModTime()) > time.Duration(s.config.MaxAge)*24*time.Hour
	if tooBig || tooOld {
		return s.rotate()
	}
	return nil
}

func (s *sink) rotate() error {
	_ = s.file.Close()
	s.file = nil

	path := s.config.FilePath
	for i := s.config.MaxBackups - 1; i >= 1; i-- {
		_ = os.Rename(fmt.Sprintf("%s.%d", path, i), fmt.Sprintf("%s.%d", path, i+1))
	}
	if s.config.MaxBackups > 0 {
		if err := os.Rename(path, path+".1"); err != nil && !os.IsNotExist(err) {
			return err
		}
	} else {
		_ = os.Remove(path)
	}

	return s.open()
}

func (l *Logger) log(level Level, msg string, fields []Field) {
	if l == nil || l.sink == nil {
		return
	}
	s := l.sink
	if level < s.config.Level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	caller := "???"
	if ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s: %s", time.Now().Format("2006-01-02 15:04:05.000"), level, caller, msg)

	if n := len(l.fields) + len(fields); n > 0 {
		b.WriteString(" |")
		for _, f := range l.fields {
			fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
		}
		for _, f := range fields {
			fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
		}
	}
	b.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.rotateIfNeeded()
	entry := []byte(b.String())
	for _, w := range s.writers {
		_, _ = w.Write(entry)
	}
}

// WithFields returns a logger sharing the same outputs with preset fields
func (l *Logger) WithFields(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	preset := make([]Field, 0, len(l.fields)+len(fields))
	preset = append(preset, l.fields...)
	preset = append(preset, fields...)
	return &Logger{sink: l.sink, fields: preset}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(DEBUG, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(INFO, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(WARN, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(ERROR, msg, fields)
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.file != nil {
		err := l.sink.file.Close()
		l.sink.file = nil
		l.sink.resetWriters()
		return err
	}
	return nil
}

// Global logger functions

// L returns the global logger, or a no-op logger before Init
func L() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return nopLogger
	}
	return globalLogger
}

var nopLogger = Nop()

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...Field) {
	L().log(DEBUG, msg, fields)
}

// Info logs an info message using the global logger
func Info(msg string, fields ...Field) {
	L().log(INFO, msg, fields)
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...Field) {
	L().log(WARN, msg, fields)
}

// Error logs an error message using the global logger
func Error(msg string, fields ...Field) {
	L().log(ERROR, msg, fields)
}

// WithFields creates a logger with preset fields from the global logger
func WithFields(fields ...Field) *Logger {
	return L().WithFields(fields...)
}

// Close closes the global logger
func Close() error {
	globalMu.Lock()
	l := globalLogger
	globalLogger = nil
	globalMu.Unlock()
	return l.Close()
}
