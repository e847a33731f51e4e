// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads incidentmap configuration from defaults, an optional
// YAML file and INCIDENTMAP_* environment variables, in that order.
package config

import "time"

// Config is the complete runtime configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Data      DataConfig      `yaml:"data"`
	Remote    RemoteConfig    `yaml:"remote"`
	Cache     CacheConfig     `yaml:"cache"`
	History   HistoryConfig   `yaml:"history"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Version is taken from the binary, never from the file.
	Version string `yaml:"-"`
}

// DataConfig describes the local folder source.
type DataConfig struct {
	Dir          string        `yaml:"dir"`
	Watch        bool          `yaml:"watch"`
	Debounce     time.Duration `yaml:"debounce"`
	SnapshotPath string        `yaml:"snapshot_path"`
}

// RemoteConfig describes the encrypted remote bundle. Files are fetched
// relative to BaseURL and ingested in list order.
type RemoteConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Password          string        `yaml:"password"`
	KDF               string        `yaml:"kdf"`
	PBKDF2Iterations  int           `yaml:"pbkdf2_iterations"`
	Files             []string      `yaml:"files"`
	Concurrency       int           `yaml:"concurrency"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

// CacheConfig selects the payload cache backend.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// HistoryConfig enables the sqlite load history when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen             string        `yaml:"listen"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// KDF names accepted by RemoteConfig.KDF.
const (
	KDFMD5    = "md5"
	KDFPBKDF2 = "pbkdf2"
)

// DefaultRemoteFiles is the bundle layout published alongside the map.
var DefaultRemoteFiles = []string{
	"countries.geo.json",
	"ülkesözlük.xlsx.enc",
	"ulkeler.xlsx.enc",
	"ulke_detaylari.csv.enc",
	"veriler_2021.xlsx.enc",
	"veriler_2022.xlsx.enc",
	"veriler_2023.xlsx.enc",
	"veriler_2024.xlsx.enc",
	"özet21.xlsx.enc",
	"özet22.xlsx.enc",
	"özet23.xlsx.enc",
	"özet24.xlsx.enc",
	"Pözet21.xlsx.enc",
	"Pözet22.xlsx.enc",
	"Pözet2023.xlsx.enc",
	"Pözet2024.xlsx.enc",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Data: DataConfig{
			Dir:      "./Veri",
			Watch:    true,
			Debounce: 500 * time.Millisecond,
		},
		Remote: RemoteConfig{
			KDF:               KDFMD5,
			PBKDF2Iterations:  10000,
			Files:             append([]string(nil), DefaultRemoteFiles...),
			Concurrency:       4,
			RequestsPerSecond: 8,
			Timeout:           30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     10 * time.Minute,
		},
		Server: ServerConfig{
			Listen:             ":8080",
			RateLimitPerMinute: 600,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    15 * time.Second,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}

// UsesRemote reports whether the remote bundle is the active source.
func (c Config) UsesRemote() bool {
	return c.Remote.BaseURL != ""
}
