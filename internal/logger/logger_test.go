package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_ConsoleLevelDoesNotFilterFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	if err := Init(Options{Dir: dir, ConsoleLevel: slog.LevelInfo, Console: &console}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() { Log = nil }()

	Debug("request sent", "path", "/fapi/v1/ping")
	Info("ping ok")

	if strings.Contains(console.String(), "request sent") {
		t.Errorf("debug line leaked to console: %s", console.String())
	}
	if !strings.Contains(console.String(), "ping ok") {
		t.Errorf("info line missing from console: %s", console.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "request sent") || !strings.Contains(string(data), "ping ok") {
		t.Errorf("log file missing lines: %s", data)
	}
}

func TestHelpers_NoopWithoutInit(t *testing.T) {
	Log = nil
	Info("ignored")
	Warn("ignored")
	Error("ignored")
	Debug("ignored")
}

func TestInit_ConsoleOnlyFallback(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	var console bytes.Buffer
	defer func() { Log = nil }()

	if err := Init(Options{Dir: filepath.Join(blocker, "logs"), Console: &console}); err == nil {
		t.Fatal("expected an error for a log dir under a file")
	}
	if err := Init(Options{Console: &console}); err != nil {
		t.Fatalf("console-only Init failed: %v", err)
	}
	Info("still logging")
	if !strings.Contains(console.String(), "still logging") {
		t.Errorf("console = %q", console.String())
	}
}
