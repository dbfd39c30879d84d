package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/migadu/sievefilter/config"
)

func TestInitializeFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.log")

	f, err := Initialize(config.LoggingConfig{Output: path, Format: "json", Level: "warn"})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if f == nil {
		t.Fatal("expected a log file handle")
	}
	t.Cleanup(func() {
		f.Close()
		globalLogger = nil
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	})

	Info("not written")
	Warn("rule rejected", "rule", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "not written") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"rule rejected"`) || !strings.Contains(out, `"rule":3`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestInitializeBadFile(t *testing.T) {
	_, err := Initialize(config.LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	if err == nil {
		t.Fatal("expected an error for an unwritable log path")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
