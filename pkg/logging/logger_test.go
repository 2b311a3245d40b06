// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
		{Level(-1), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got := tt.level.toSlogLevel()
			if got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_Constants(t *testing.T) {
	// Verify ordering: Debug < Info < Warn < Error
	if LevelDebug >= LevelInfo {
		t.Error("LevelDebug should be < LevelInfo")
	}
	if LevelInfo >= LevelWarn {
		t.Error("LevelInfo should be < LevelWarn")
	}
	if LevelWarn >= LevelError {
		t.Error("LevelWarn should be < LevelError")
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.slog == nil {
		t.Error("New() logger has nil slog")
	}
	if logger.file != nil {
		t.Error("New() with no LogDir should not open a file")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default() returned nil")
	}
	if logger.config.Service != "floorops" {
		t.Errorf("Default() service = %q, want %q", logger.config.Service, "floorops")
	}
	if logger.config.Level != LevelInfo {
		t.Errorf("Default() level = %v, want %v", logger.config.Level, LevelInfo)
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  dir,
		Service: "timeclock",
		Quiet:   true,
	})
	defer logger.Close()

	logger.Info("timer started", "log_id", "abc-123")
	logger.Debug("debug detail")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	wantName := "timeclock_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, wantName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "timer started") {
		t.Errorf("log file missing info message, got: %s", content)
	}
	if !strings.Contains(content, "abc-123") {
		t.Errorf("log file missing attribute value, got: %s", content)
	}
	if !strings.Contains(content, `"service":"timeclock"`) {
		t.Errorf("log file missing service attribute, got: %s", content)
	}
}

func TestNew_FileLogging_DefaultServiceName(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{LogDir: dir, Quiet: true})
	logger.Info("hello")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	wantName := "floorops_" + time.Now().Format("2006-01-02") + ".log"
	if _, err := os.Stat(filepath.Join(dir, wantName)); err != nil {
		t.Errorf("expected log file %s: %v", wantName, err)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "timeclock",
		Quiet:   true,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	wantName := "timeclock_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, wantName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "debug message") {
		t.Error("Debug message should be filtered at Warn level")
	}
	if strings.Contains(content, "info message") {
		t.Error("Info message should be filtered at Warn level")
	}
	if !strings.Contains(content, "warn message") {
		t.Error("Warn message should be logged at Warn level")
	}
	if !strings.Contains(content, "error message") {
		t.Error("Error message should be logged at Warn level")
	}
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()

	base := New(Config{LogDir: dir, Service: "timeclock", Quiet: true})
	child := base.With("user_id", "u-42")

	child.Info("child message")
	base.Info("base message")

	if err := base.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	wantName := "timeclock_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, wantName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "u-42") {
		t.Error("child logger line missing bound attribute")
	}
	if strings.Contains(lines[1], "u-42") {
		t.Error("base logger line should not carry child attribute")
	}
}

func TestLogger_Slog(t *testing.T) {
	logger := Default()
	if logger.Slog() == nil {
		t.Error("Slog() returned nil")
	}
}

func TestLogger_Close_NoFile(t *testing.T) {
	logger := New(Config{})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() without file error = %v", err)
	}
	// Second Close must also be safe.
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestLogger_Close_Idempotent(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Quiet: true})
	logger.Info("one")

	if err := logger.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

// =============================================================================
// multiHandler Tests
// =============================================================================

type recordingHandler struct {
	enabled bool
	records []slog.Record
}

func (h *recordingHandler) Enabled(_ context.Context, _ slog.Level) bool { return h.enabled }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(_ string) slog.Handler      { return h }

func TestMultiHandler_Enabled(t *testing.T) {
	ctx := context.Background()

	h := &multiHandler{handlers: []slog.Handler{
		&recordingHandler{enabled: false},
		&recordingHandler{enabled: true},
	}}
	if !h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Enabled() should be true if any handler is enabled")
	}

	h = &multiHandler{handlers: []slog.Handler{
		&recordingHandler{enabled: false},
		&recordingHandler{enabled: false},
	}}
	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Enabled() should be false if no handler is enabled")
	}
}

func TestMultiHandler_Handle_SkipsDisabled(t *testing.T) {
	ctx := context.Background()
	on := &recordingHandler{enabled: true}
	off := &recordingHandler{enabled: false}

	h := &multiHandler{handlers: []slog.Handler{on, off}}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	if err := h.Handle(ctx, r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(on.records) != 1 {
		t.Errorf("enabled handler got %d records, want 1", len(on.records))
	}
	if len(off.records) != 0 {
		t.Errorf("disabled handler got %d records, want 0", len(off.records))
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"/var/log/floorops", "/var/log/floorops"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
