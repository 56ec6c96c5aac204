// Visreduce - Interferometric Visibility Reduction for Plotting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/visreduce

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Table.ChunkSize != 5000 {
		t.Errorf("Table.ChunkSize = %d, want 5000", cfg.Table.ChunkSize)
	}
	if cfg.Table.DataColumn != "DATA" {
		t.Errorf("Table.DataColumn = %q, want DATA", cfg.Table.DataColumn)
	}
	if cfg.Table.ReadFlags {
		t.Error("Table.ReadFlags should be false by default")
	}
	if cfg.Selection.WeightThreshold != nil {
		t.Errorf("Selection.WeightThreshold = %v, want nil", *cfg.Selection.WeightThreshold)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
	if cfg.Server.Port != 8422 {
		t.Errorf("Server.Port = %d, want 8422", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"TABLE_PATH", "table.path"},
		{"DUCKDB_THREADS", "table.threads"},
		{"READ_FLAGS", "table.read_flags"},
		{"MAPPING_PATH", "mapping.path"},
		{"CHANNELS", "selection.channels"},
		{"SOLINT", "selection.solint"},
		{"WEIGHT_THRESHOLD", "selection.weight_threshold"},
		{"CACHE_TTL", "cache.ttl"},
		{"HTTP_PORT", "server.port"},
		{"DISABLE_RATE_LIMIT", "server.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.input); got != tt.expected {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	customPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(customPath, []byte("table:\n  name: x\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, customPath)
	if got := findConfigFile(); got != customPath {
		t.Errorf("findConfigFile() = %q, want %q", got, customPath)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	if got := findConfigFile(); got == customPath {
		t.Error("a missing CONFIG_PATH should not be returned")
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("TABLE_PATH", "/tmp/obs.duckdb")
	t.Setenv("CHANNELS", "0, 2,3")
	t.Setenv("SOLINT", "1m30s")
	t.Setenv("WEIGHT_THRESHOLD", "0.5")
	t.Setenv("AVERAGE_CHANNEL", "vectornorm")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("READ_FLAGS", "true")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://plots.example.org")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() failed: %v", err)
	}

	if cfg.Table.Path != "/tmp/obs.duckdb" {
		t.Errorf("Table.Path = %q", cfg.Table.Path)
	}
	if got := cfg.Selection.Channels; len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Selection.Channels = %v, want [0 2 3]", got)
	}
	if cfg.Selection.Solint != "1m30s" {
		t.Errorf("Selection.Solint = %q", cfg.Selection.Solint)
	}
	if w := cfg.Selection.WeightThreshold; w == nil || *w != 0.5 {
		t.Errorf("Selection.WeightThreshold = %v, want 0.5", w)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if !cfg.Table.ReadFlags {
		t.Error("Table.ReadFlags should be true")
	}
	if got := cfg.Server.CORSOrigins; len(got) != 2 || got[1] != "https://plots.example.org" {
		t.Errorf("Server.CORSOrigins = %v", got)
	}
}

func TestLoadFileEnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
table:
  path: /data/file.duckdb
  name: obs
  chunk_size: 250
  data_column: LAG_DATA
mapping:
  path: /data/file.mapping.json
selection:
  channels: [1, 4]
  average_time: scalar
  time_ranges: ["0:10", "20:30"]
  data_descriptions:
    - freq_group: 0
      subband: 1
      pol_id: 0
      products: [0, 3]
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("TABLE_NAME", "from_env")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Table.Name != "from_env" {
		t.Errorf("Table.Name = %q, env should override file", cfg.Table.Name)
	}
	if cfg.Table.Path != "/data/file.duckdb" || cfg.Table.ChunkSize != 250 {
		t.Errorf("Table = %+v", cfg.Table)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.Port != 8422 {
		t.Errorf("Server.Port = %d, defaults should survive", cfg.Server.Port)
	}

	sel, err := cfg.ToSelection()
	if err != nil {
		t.Fatalf("ToSelection() failed: %v", err)
	}
	if sel.DataColumn != "LAG_DATA" || sel.ChunkSize != 250 {
		t.Errorf("selection table fields = %q/%d", sel.DataColumn, sel.ChunkSize)
	}
	if len(sel.TimeRanges) != 2 || sel.TimeRanges[1].Start != 20 || sel.TimeRanges[1].End != 30 {
		t.Errorf("TimeRanges = %+v", sel.TimeRanges)
	}
	if sel.Solint != nil {
		t.Errorf("Solint = %v, want nil", *sel.Solint)
	}
	if len(sel.DataDescriptions) != 1 || sel.DataDescriptions[0].Subband != 1 || len(sel.DataDescriptions[0].Products) != 2 {
		t.Errorf("DataDescriptions = %+v", sel.DataDescriptions)
	}
	if sel.AverageTime.String() != "scalar" {
		t.Errorf("AverageTime = %v, want scalar", sel.AverageTime)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unitless solint", map[string]string{"SOLINT": "30"}, "unit"},
		{"solint and ranges", map[string]string{"SOLINT": "10s", "TIME_RANGES": "0:5"}, "mutually exclusive"},
		{"reversed range", map[string]string{"TIME_RANGES": "5:0"}, "TIME_RANGES"},
		{"bad policy", map[string]string{"AVERAGE_CHANNEL": "median"}, "average_channel"},
		{"bad column", map[string]string{"DATA_COLUMN": "MODEL_DATA"}, "data_column"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"bad port", map[string]string{"HTTP_PORT": "0"}, "port"},
		{"cache without path", map[string]string{"CACHE_PATH": "", "CACHE_ENABLED": "true"}, "CACHE_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}
