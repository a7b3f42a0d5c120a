package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, cfg *Config) (Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	if cfg == nil {
		cfg = &Config{
			LogFilePath: logPath,
			MaxFileSize: 1024 * 1024,
			MaxBackups:  3,
			Level:       LevelDebug,
		}
	} else {
		cfg.LogFilePath = logPath
	}
	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return l, logPath
}

func TestLogLevels(t *testing.T) {
	l, logPath := newTestLogger(t, nil)

	l.Debug("debug message", String("key", "value"))
	l.Info("info message", Int("count", 42))
	l.Warn("warn message", Bool("flag", true))
	l.Error("error message", errors.New("boom"), Float64("rate", 3.14))
	l.Close()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	got := string(content)

	for _, want := range []string{
		"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]",
		"debug message", "info message", "warn message", "error message",
		"key=value", "count=42", "flag=true", "rate=3.14", "error=boom",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	l, logPath := newTestLogger(t, &Config{
		MaxFileSize: 1024 * 1024,
		MaxBackups:  3,
		Level:       LevelWarn,
	})

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message", nil)
	l.Close()

	content, _ := os.ReadFile(logPath)
	got := string(content)

	if strings.Contains(got, "[DEBUG]") || strings.Contains(got, "[INFO]") {
		t.Error("debug/info should be filtered at warn level")
	}
	if !strings.Contains(got, "[WARN]") || !strings.Contains(got, "[ERROR]") {
		t.Error("warn/error should pass at warn level")
	}
}

func TestSetLevel(t *testing.T) {
	l, logPath := newTestLogger(t, nil)

	l.Debug("debug before")
	l.SetLevel(LevelError)
	l.Debug("debug after")
	l.Error("error after", nil)
	l.Close()

	content, _ := os.ReadFile(logPath)
	got := string(content)

	if !strings.Contains(got, "debug before") {
		t.Error("entry before level change should be present")
	}
	if strings.Contains(got, "debug after") {
		t.Error("debug entry after level change should be filtered")
	}
	if !strings.Contains(got, "error after") {
		t.Error("error entry after level change should be present")
	}
}

func TestRotation(t *testing.T) {
	l, logPath := newTestLogger(t, &Config{
		MaxFileSize: 100,
		MaxBackups:  3,
		Level:       LevelDebug,
	})

	for i := 0; i < 20; i++ {
		l.Info("a message long enough to push the file over its size limit")
	}
	l.Close()

	if _, err := os.Stat(logPath + ".1"); os.IsNotExist(err) {
		t.Error("backup file not created after rotation")
	}
}

func TestQuotedFieldValues(t *testing.T) {
	l, logPath := newTestLogger(t, nil)

	l.Info("quoting", String("path", "two words"), Duration("took", 1500*time.Millisecond))
	l.Error("failed", errors.New("open file: not found"))
	l.Close()

	content, _ := os.ReadFile(logPath)
	got := string(content)

	if !strings.Contains(got, `path="two words"`) {
		t.Errorf("value with spaces not quoted: %s", got)
	}
	if !strings.Contains(got, "took=1.5s") {
		t.Errorf("duration field not rendered: %s", got)
	}
	if !strings.Contains(got, `error="open file: not found"`) {
		t.Errorf("error value not quoted: %s", got)
	}
}

func TestGlobalLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "global.log")
	if err := Init(&Config{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  3,
		Level:       LevelDebug,
	}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Debug("global debug")
	Info("global info")
	Warn("global warn")
	Error("global error", errors.New("global boom"))
	Close()

	content, _ := os.ReadFile(logPath)
	got := string(content)

	for _, want := range []string{"global debug", "global info", "global warn", "global error"} {
		if !strings.Contains(got, want) {
			t.Errorf("global log missing %q", want)
		}
	}
}

func TestUninitializedGlobalIsNoop(t *testing.T) {
	Close()

	// Must not panic.
	Debug("test")
	Info("test")
	Warn("test")
	Error("test", nil)

	if Get() == nil {
		t.Error("Get() should return a usable logger when uninitialized")
	}
}

func TestDisabledFileOutput(t *testing.T) {
	l, err := New(&Config{Level: LevelInfo})
	if err != nil {
		t.Fatalf("New with empty path failed: %v", err)
	}
	l.Info("goes nowhere")
	if err := l.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestDirectoryCreation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "test.log")
	l, err := New(&Config{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  3,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("New with nested directory failed: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(filepath.Dir(logPath)); os.IsNotExist(err) {
		t.Error("nested log directory was not created")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.want)
		}
	}
}

func TestErrFieldNil(t *testing.T) {
	f := Err(nil)
	if f.Key != "error" || f.Value != nil {
		t.Errorf("Err(nil) = %+v, want {error nil}", f)
	}
}
