// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Poolcore Contributors

// Package config implements the layered configuration described in
// spec.md §9's ambient stack: a built-in default, a YAML overlay file,
// and environment variable overrides, merged in that order, plus a
// debounced file watcher for hot-reload.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// PortConfig describes one configured RS-485/bridge port.
type PortConfig struct {
	ID      int    `yaml:"id"`
	Variant string `yaml:"variant"`
	Kind    string `yaml:"kind"` // "serial", "tcp", "ws"
	Device  string `yaml:"device,omitempty"`
	Baud    int    `yaml:"baud,omitempty"`
	Host    string `yaml:"host,omitempty"`
	TCPPort int    `yaml:"port,omitempty"`
}

// Config is the merged runtime configuration.
type Config struct {
	LogLevel     string       `yaml:"logLevel"`
	ConfigPath   string       `yaml:"-"`
	StatePath    string       `yaml:"statePath"`
	PoolConfigPath string     `yaml:"poolConfigPath"`
	Latitude     float64      `yaml:"latitude"`
	Longitude    float64      `yaml:"longitude"`
	Ports        []PortConfig `yaml:"ports"`

	NetConnect bool   `yaml:"netConnect"`
	NetHost    string `yaml:"netHost"`
	NetPort    int    `yaml:"netPort"`
	RS485Port  string `yaml:"rs485Port"`
}

// Defaults returns the built-in baseline every layer overlays onto
// (spec.md §9: "defaults + YAML overlay + env vars").
func Defaults() Config {
	return Config{
		LogLevel:       "info",
		PoolConfigPath: "pool-config.json",
		StatePath:      "pool-state.json",
		NetPort:        0,
		RS485Port:      "",
	}
}

// Load builds a Config by overlaying a YAML file (if present) and then
// environment variables onto Defaults().
func Load(yamlPath string) (Config, error) {
	cfg := Defaults()
	cfg.ConfigPath = yamlPath

	if data, err := os.ReadFile(yamlPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// envTable is the env-var-to-field mapping spec.md §6 names:
// POOL_NET_CONNECT, POOL_NET_HOST, POOL_NET_PORT, POOL_RS485_PORT,
// POOL_LATITUDE, POOL_LONGITUDE, POOL_LOG_LEVEL.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("POOL_NET_CONNECT"); ok {
		cfg.NetConnect = v == "1" || v == "true"
	}
	if v, ok := os.LookupEnv("POOL_NET_HOST"); ok {
		cfg.NetHost = v
	}
	if v, ok := os.LookupEnv("POOL_NET_PORT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NetPort = n
		}
	}
	if v, ok := os.LookupEnv("POOL_RS485_PORT"); ok {
		cfg.RS485Port = v
	}
	if v, ok := os.LookupEnv("POOL_LATITUDE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Latitude = f
		}
	}
	if v, ok := os.LookupEnv("POOL_LONGITUDE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Longitude = f
		}
	}
	if v, ok := os.LookupEnv("POOL_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
}

// reloadDebounce matches the Change Engine's own quiet-window
// philosophy: a burst of filesystem events from one editor save
// collapses into a single reload (spec.md §9: "500ms-debounced
// hot-reload watcher").
const reloadDebounce = 500 * time.Millisecond
