// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 12240, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.Storage.SyncWrites)
	assert.False(t, cfg.Storage.InMemory)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
	assert.Equal(t, float64(480), cfg.Policy.DailyLimitMinutes)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timeclock.yaml")

	yaml := `
server:
  port: 9000
  mode: debug
storage:
  in_memory: true
policy:
  daily_limit_minutes: 600
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.True(t, cfg.Storage.InMemory)
	assert.Equal(t, float64(600), cfg.Policy.DailyLimitMinutes)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestCreateDefault_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "timeclock.yaml")

	require.NoError(t, createDefault(path))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
	assert.Equal(t, DefaultConfig().Policy.DailyLimitMinutes, cfg.Policy.DailyLimitMinutes)
}
