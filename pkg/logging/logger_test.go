// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
		Level(42):  "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	logger.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("sub-threshold messages leaked: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("expected warn and error output, got %q", out)
	}
}

func TestLoggerServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "hexmap", JSON: true, Output: &buf})
	logger.Info("tile created", "coord_id", "1,0:1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["service"] != "hexmap" {
		t.Errorf("service = %v, want hexmap", entry["service"])
	}
	if entry["coord_id"] != "1,0:1" {
		t.Errorf("coord_id = %v, want 1,0:1", entry["coord_id"])
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{JSON: true, Output: &buf})
	child := logger.With("operation_id", "op-1")
	child.Info("started")

	if !strings.Contains(buf.String(), `"operation_id":"op-1"`) {
		t.Errorf("child attribute missing: %q", buf.String())
	}
}

func TestLoggerFileOutput(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{Quiet: true, LogDir: dir, Service: "hexmap"})
	logger.Info("persisted", "item_id", 42)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "hexmap_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (err %v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("file log line is not JSON: %v", err)
	}
	if entry["msg"] != "persisted" {
		t.Errorf("msg = %v, want persisted", entry["msg"])
	}
}

func TestLoggerQuietWithoutFile(t *testing.T) {
	logger := New(Config{Quiet: true})
	logger.Info("goes nowhere")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLoggerUnwritableLogDir(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{LogDir: "/proc/no-such-dir/logs", Output: &buf})
	logger.Info("still works")
	if !strings.Contains(buf.String(), "still works") {
		t.Errorf("stream output lost when file setup fails: %q", buf.String())
	}
}
