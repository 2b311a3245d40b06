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
)

type TimeclockConfig struct {
	// Server: HTTP listener settings
	Server ServerConfig `yaml:"server"`

	// Storage: embedded database settings
	Storage StorageConfig `yaml:"storage"`

	// Logging: structured log output
	Logging LoggingConfig `yaml:"logging"`

	// Telemetry: trace and metric exporters
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Policy: advisory work-hour limits
	Policy PolicyConfig `yaml:"policy"`
}

type ServerConfig struct {
	Port int    `yaml:"port"` // e.g. 12240
	Mode string `yaml:"mode"` // "debug" or "release"
}

type StorageConfig struct {
	Path              string  `yaml:"path"`                // e.g. ~/.floorops/timeclock-db
	InMemory          bool    `yaml:"in_memory"`           // volatile storage, for dev only
	SyncWrites        bool    `yaml:"sync_writes"`         // fsync every write
	GCIntervalMinutes int     `yaml:"gc_interval_minutes"` // value-log GC cadence
	GCDiscardRatio    float64 `yaml:"gc_discard_ratio"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"` // debug, info, warn, error
	LogDir string `yaml:"log_dir,omitempty"`
	JSON   bool   `yaml:"json"`
	Quiet  bool   `yaml:"quiet"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter"`  // otlp, stdout, none
	MetricExporter string `yaml:"metric_exporter"` // prometheus, stdout, none
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty"`
}

type PolicyConfig struct {
	// DailyLimitMinutes is the advisory daily work limit. Zero disables
	// limit tracking entirely.
	DailyLimitMinutes float64 `yaml:"daily_limit_minutes"`
}

func DefaultConfig() TimeclockConfig {
	dbPath := "timeclock-db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".floorops", "timeclock-db")
	}
	return TimeclockConfig{
		Server: ServerConfig{
			Port: 12240,
			Mode: "release",
		},
		Storage: StorageConfig{
			Path:              dbPath,
			InMemory:          false,
			SyncWrites:        true,
			GCIntervalMinutes: 10,
			GCDiscardRatio:    0.5,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  true,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
		},
		Policy: PolicyConfig{
			DailyLimitMinutes: 480,
		},
	}
}
