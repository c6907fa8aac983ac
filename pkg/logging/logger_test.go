// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

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
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "test",
		Quiet:   true,
	})
	logger.Info("hello", "k", "v")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	name := "test_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"service":"test"`) {
		t.Errorf("log file missing service attribute: %s", data)
	}
}

func TestNew_QuietWithoutFileDiscards(t *testing.T) {
	logger := New(Config{Quiet: true})
	// Must not panic with no destinations configured.
	logger.Info("dropped")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Quiet: true})
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestWith_CarriesAttributes(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "svc", Quiet: true})
	child := logger.With("run_id", "r-1")
	child.Info("scoped")
	_ = logger.Close()

	name := "svc_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"run_id":"r-1"`) {
		t.Errorf("child attribute not logged: %s", data)
	}
}
