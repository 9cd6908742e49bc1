// Copyright (C) 2026 Hexframe
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the hexmap service configuration.
//
// Configuration is merged with priority: environment > file > defaults.
// Files may be YAML or JSON. Environment overrides use the HEXFRAME_
// prefix, e.g. HEXFRAME_LISTEN_ADDR or HEXFRAME_LOG_LEVEL.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level hexmap service configuration.
//
// Thread Safety: safe to read concurrently. Not safe to modify after
// loading.
type Config struct {
	// Logging contains log output settings.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Storage contains local persistence settings.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Server contains HTTP listener settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// Remote contains map API client settings.
	Remote RemoteConfig `json:"remote" yaml:"remote"`

	// Events contains notification bus settings.
	Events EventsConfig `json:"events" yaml:"events"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	Dir   string `json:"dir" yaml:"dir"`
	JSON  bool   `json:"json" yaml:"json"`
	Quiet bool   `json:"quiet" yaml:"quiet"`
}

// StorageConfig contains local persistence settings.
type StorageConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path       string `json:"path" yaml:"path"`
	InMemory   bool   `json:"in_memory" yaml:"in_memory"`
	SyncWrites bool   `json:"sync_writes" yaml:"sync_writes"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	ListenAddr      string        `json:"listen_addr" yaml:"listen_addr"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// RemoteConfig contains map API client settings.
type RemoteConfig struct {
	// BaseURL is the upstream map API. Empty runs the server in
	// self-authoritative mode with its own embedded authority.
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// EventsConfig contains notification bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size" yaml:"buffer_size"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Path: "~/.hexframe/data", SyncWrites: false},
		Server: ServerConfig{
			ListenAddr:      ":8470",
			ShutdownTimeout: 10 * time.Second,
		},
		Remote: RemoteConfig{Timeout: 30 * time.Second},
		Events: EventsConfig{BufferSize: 256},
	}
}

// Load merges configuration with priority: env > file > defaults.
// A missing file is not an error; a present but unparseable one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	loadEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	// YAML first, then JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("HEXFRAME_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HEXFRAME_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("HEXFRAME_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.JSON = b
		}
	}
	if v := os.Getenv("HEXFRAME_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("HEXFRAME_STORAGE_IN_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.InMemory = b
		}
	}
	if v := os.Getenv("HEXFRAME_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("HEXFRAME_REMOTE_BASE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("HEXFRAME_REMOTE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Remote.Timeout = d
		}
	}
	if v := os.Getenv("HEXFRAME_EVENT_BUFFER_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Events.BufferSize = i
		}
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path required unless storage.in_memory is set")
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote.timeout must be > 0")
	}
	if c.Events.BufferSize < 1 {
		return fmt.Errorf("events.buffer_size must be >= 1")
	}
	return nil
}
