// Package logger provides structured logging for the document translator.
// Log entries go to a file, optionally mirrored to the console, with
// size-based rotation.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
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

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 creates an int64 field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Float64 creates a float64 field.
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Bool creates a boolean field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration creates a duration field rendered in time.Duration notation.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Err creates an error field.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field with an arbitrary value.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Logger is the logging interface used throughout the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	SetLevel(level Level)
	Close() error
}

// Config holds logger configuration.
type Config struct {
	// LogFilePath is the log file location. Empty disables file output.
	LogFilePath string
	// MaxFileSize in bytes triggers rotation when exceeded.
	MaxFileSize int64
	// MaxBackups is how many rotated files to keep.
	MaxBackups int
	Level      Level
	// EnableConsole mirrors entries to stderr.
	EnableConsole bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() *Config {
	return &Config{
		LogFilePath:   "doc-translator.log",
		MaxFileSize:   10 * 1024 * 1024,
		MaxBackups:    3,
		Level:         LevelInfo,
		EnableConsole: false,
	}
}

// fileLogger is the default Logger writing to a rotating file.
type fileLogger struct {
	mu       sync.Mutex
	cfg      *Config
	file     *os.File
	size     int64
	level    Level
	console  io.Writer
	timeFmt  string
	disabled bool
}

// New creates a Logger from cfg. A nil cfg uses DefaultConfig.
func New(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	l := &fileLogger{
		cfg:     cfg,
		level:   cfg.Level,
		timeFmt: "2006-01-02 15:04:05.000",
	}
	if cfg.EnableConsole {
		l.console = os.Stderr
	}
	if cfg.LogFilePath == "" {
		l.disabled = true
		return l, nil
	}
	if dir := filepath.Dir(cfg.LogFilePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *fileLogger) open() error {
	f, err := os.OpenFile(l.cfg.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	l.file = f
	l.size = info.Size()
	return nil
}

func (l *fileLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, nil, fields) }
func (l *fileLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, nil, fields) }
func (l *fileLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, nil, fields) }
func (l *fileLogger) Error(msg string, err error, fields ...Field) {
	l.log(LevelError, msg, err, fields)
}

func (l *fileLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *fileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *fileLogger) log(level Level, msg string, err error, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	entry := l.format(level, msg, err, fields)

	if l.file != nil {
		if l.size+int64(len(entry)) > l.cfg.MaxFileSize {
			l.rotate()
		}
		l.file.WriteString(entry)
		l.size += int64(len(entry))
	}
	if l.console != nil {
		io.WriteString(l.console, entry)
	}
}

func (l *fileLogger) format(level Level, msg string, err error, fields []Field) string {
	var sb strings.Builder
	sb.WriteString(time.Now().Format(l.timeFmt))
	sb.WriteString(" [")
	sb.WriteString(level.String())
	sb.WriteString("] ")
	sb.WriteString(msg)
	if err != nil {
		sb.WriteString(" error=")
		sb.WriteString(quoteValue(err.Error()))
	}
	for _, f := range fields {
		sb.WriteString(" ")
		sb.WriteString(f.Key)
		sb.WriteString("=")
		sb.WriteString(quoteValue(fmt.Sprintf("%v", f.Value)))
	}
	sb.WriteString("\n")
	return sb.String()
}

// quoteValue quotes values containing spaces or equals signs so entries
// stay machine-splittable.
func quoteValue(s string) string {
	if strings.ContainsAny(s, " =\t\n\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// rotate shifts the current log aside and opens a fresh file. Callers hold
// the mutex.
func (l *fileLogger) rotate() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	for i := l.cfg.MaxBackups - 1; i >= 1; i-- {
		os.Rename(
			fmt.Sprintf("%s.%d", l.cfg.LogFilePath, i),
			fmt.Sprintf("%s.%d", l.cfg.LogFilePath, i+1),
		)
	}
	if _, err := os.Stat(l.cfg.LogFilePath); err == nil {
		os.Rename(l.cfg.LogFilePath, l.cfg.LogFilePath+".1")
	}
	os.Remove(fmt.Sprintf("%s.%d", l.cfg.LogFilePath, l.cfg.MaxBackups+1))
	l.open()
}

// Global logger. Initialized once from the CLI entry point; a no-op logger
// is used until then so library code can log unconditionally.
var (
	globalMu sync.RWMutex
	global   Logger
)

// Init installs the global logger built from cfg, closing any previous one.
func Init(cfg *Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		global.Close()
	}
	global = l
	return nil
}

// Get returns the global logger, or a no-op logger when uninitialized.
func Get() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return noop{}
	}
	return global
}

// Close closes the global logger.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		err := global.Close()
		global = nil
		return err
	}
	return nil
}

// Debug logs through the global logger.
func Debug(msg string, fields ...Field) { Get().Debug(msg, fields...) }

// Info logs through the global logger.
func Info(msg string, fields ...Field) { Get().Info(msg, fields...) }

// Warn logs through the global logger.
func Warn(msg string, fields ...Field) { Get().Warn(msg, fields...) }

// Error logs through the global logger.
func Error(msg string, err error, fields ...Field) { Get().Error(msg, err, fields...) }

type noop struct{}

func (noop) Debug(string, ...Field)        {}
func (noop) Info(string, ...Field)         {}
func (noop) Warn(string, ...Field)         {}
func (noop) Error(string, error, ...Field) {}
func (noop) SetLevel(Level)                {}
func (noop) Close() error                  { return nil }
