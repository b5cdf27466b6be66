// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMergesDefaultsAndYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poolcore.yaml")
	yamlBody := "logLevel: debug\nlatitude: 33.4\nlongitude: -111.9\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected overlay logLevel, got %q", cfg.LogLevel)
	}
	if cfg.PoolConfigPath != "pool-config.json" {
		t.Fatalf("expected default poolConfigPath to survive overlay, got %q", cfg.PoolConfigPath)
	}
	if cfg.Latitude != 33.4 || cfg.Longitude != -111.9 {
		t.Fatalf("unexpected coordinates: %+v", cfg)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default logLevel, got %q", cfg.LogLevel)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poolcore.yaml")
	if err := os.WriteFile(path, []byte("logLevel: debug\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("POOL_LOG_LEVEL", "warn")
	t.Setenv("POOL_RS485_PORT", "/dev/ttyUSB3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to win over yaml, got %q", cfg.LogLevel)
	}
	if cfg.RS485Port != "/dev/ttyUSB3" {
		t.Fatalf("expected env rs485 port, got %q", cfg.RS485Port)
	}
}
