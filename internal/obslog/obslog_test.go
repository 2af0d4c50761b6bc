package obslog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(Options{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}

	log.Debug("hidden")
	log.Info("move chosen", zap.String("move", "e2e4"), zap.Int("depth", 4))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "move chosen" || rec["move"] != "e2e4" || rec["level"] != "info" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "venom.log")
	var console bytes.Buffer
	log, err := newLogger(Options{Level: "debug", Format: "legacy", File: path}, &console)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("iteration complete", zap.Int("depth", 1))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "iteration complete") || !strings.Contains(string(data), " | ") {
		t.Errorf("file output = %q", data)
	}
	if !strings.Contains(console.String(), "iteration complete") {
		t.Errorf("console output = %q", console.String())
	}
}
