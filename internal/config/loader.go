// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) key(name string) string {
	key := EnvPrefix + name
	l.ConsumedEnvKeys[key] = struct{}{}
	return key
}

func (l *Loader) envString(name, defaultVal string) string {
	return ParseString(l.key(name), defaultVal)
}

func (l *Loader) envBool(name string, defaultVal bool) bool {
	return ParseBool(l.key(name), defaultVal)
}

func (l *Loader) envInt(name string, defaultVal int) int {
	return ParseInt(l.key(name), defaultVal)
}

func (l *Loader) envFloat(name string, defaultVal float64) float64 {
	return ParseFloat(l.key(name), defaultVal)
}

func (l *Loader) envDuration(name string, defaultVal time.Duration) time.Duration {
	return ParseDuration(l.key(name), defaultVal)
}

func (l *Loader) envList(name string, defaultVal []string) []string {
	return ParseList(l.key(name), defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults
// It enforces Strict Validated Order: Parse File (Strict) -> Apply Env -> Validate
func (l *Loader) Load() (Config, error) {
	// 1. Set defaults
	cfg := Default()

	// 2. Load from file (if provided)
	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	// 3. Override with environment variables (highest priority)
	l.mergeEnv(&cfg)

	if cfg.Data.Dir != "" && !cfg.UsesRemote() {
		if abs, err := filepath.Abs(cfg.Data.Dir); err == nil {
			cfg.Data.Dir = abs
		}
	}

	// 4. Version from binary
	cfg.Version = l.version

	// 5. Validate final configuration
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *Config) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return nil
}

func (l *Loader) mergeEnv(cfg *Config) {
	cfg.LogLevel = l.envString("LOG_LEVEL", cfg.LogLevel)

	cfg.Data.Dir = l.envString("DATA_DIR", cfg.Data.Dir)
	cfg.Data.Watch = l.envBool("DATA_WATCH", cfg.Data.Watch)
	cfg.Data.Debounce = l.envDuration("DATA_DEBOUNCE", cfg.Data.Debounce)
	cfg.Data.SnapshotPath = l.envString("SNAPSHOT_PATH", cfg.Data.SnapshotPath)

	cfg.Remote.BaseURL = l.envString("REMOTE_BASE_URL", cfg.Remote.BaseURL)
	cfg.Remote.Password = l.envString("REMOTE_PASSWORD", cfg.Remote.Password)
	cfg.Remote.KDF = l.envString("REMOTE_KDF", cfg.Remote.KDF)
	cfg.Remote.PBKDF2Iterations = l.envInt("REMOTE_PBKDF2_ITERATIONS", cfg.Remote.PBKDF2Iterations)
	cfg.Remote.Files = l.envList("REMOTE_FILES", cfg.Remote.Files)
	cfg.Remote.Concurrency = l.envInt("REMOTE_CONCURRENCY", cfg.Remote.Concurrency)
	cfg.Remote.RequestsPerSecond = l.envFloat("REMOTE_RPS", cfg.Remote.RequestsPerSecond)
	cfg.Remote.Timeout = l.envDuration("REMOTE_TIMEOUT", cfg.Remote.Timeout)

	cfg.Cache.Backend = l.envString("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration("CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.envString("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = l.envString("REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = l.envInt("REDIS_DB", cfg.Cache.RedisDB)

	cfg.History.Path = l.envString("HISTORY_PATH", cfg.History.Path)

	cfg.Server.Listen = l.envString("LISTEN", cfg.Server.Listen)
	cfg.Server.RateLimitPerMinute = l.envInt("RATE_LIMIT_PER_MINUTE", cfg.Server.RateLimitPerMinute)
	cfg.Server.ShutdownTimeout = l.envDuration("SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Telemetry.Enabled = l.envBool("TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("OTLP_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}

// LoadFileConfig loads a YAML config file over the defaults without applying
// env overrides or validation.
func LoadFileConfig(path string) (Config, error) {
	cfg := Default()
	err := NewLoader(path, "").loadFile(path, &cfg)
	return cfg, err
}
