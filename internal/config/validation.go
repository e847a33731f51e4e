// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"

	"github.com/ManuGH/incidentmap/internal/cache"
	"github.com/ManuGH/incidentmap/internal/validate"
)

// Validate validates a Config using the centralized validation package
func Validate(cfg Config) error {
	v := validate.New()

	v.OneOf("LogLevel", cfg.LogLevel, validate.LogLevels)

	switch {
	case cfg.UsesRemote():
		v.URL("Remote.BaseURL", cfg.Remote.BaseURL, []string{"http", "https"})
		v.NotEmpty("Remote.Password", cfg.Remote.Password)
		v.OneOf("Remote.KDF", cfg.Remote.KDF, []string{KDFMD5, KDFPBKDF2})
		if cfg.Remote.KDF == KDFPBKDF2 {
			v.Positive("Remote.PBKDF2Iterations", cfg.Remote.PBKDF2Iterations)
		}
		if len(cfg.Remote.Files) == 0 {
			v.AddError("Remote.Files", "at least one file is required", cfg.Remote.Files)
		}
		for i, name := range cfg.Remote.Files {
			v.FileName(fmt.Sprintf("Remote.Files[%d]", i), name)
		}
		v.Range("Remote.Concurrency", cfg.Remote.Concurrency, 1, 32)
		if cfg.Remote.RequestsPerSecond < 0 {
			v.AddError("Remote.RequestsPerSecond", "cannot be negative", cfg.Remote.RequestsPerSecond)
		}
		v.PositiveDuration("Remote.Timeout", cfg.Remote.Timeout)
	case cfg.Data.Dir != "":
		v.Directory("Data.Dir", cfg.Data.Dir)
		if cfg.Data.Watch {
			v.PositiveDuration("Data.Debounce", cfg.Data.Debounce)
		}
	default:
		v.AddError("Data.Dir", ErrNoSource.Error(), "")
	}
	v.ParentDirectory("Data.SnapshotPath", cfg.Data.SnapshotPath)

	v.OneOf("Cache.Backend", cfg.Cache.Backend, []string{cache.BackendMemory, cache.BackendRedis, cache.BackendNone})
	if cfg.Cache.Backend == cache.BackendRedis {
		v.NotEmpty("Cache.RedisAddr", cfg.Cache.RedisAddr)
	}
	if cfg.Cache.Backend != cache.BackendNone {
		v.PositiveDuration("Cache.TTL", cfg.Cache.TTL)
	}

	v.ParentDirectory("History.Path", cfg.History.Path)

	v.ListenAddr("Server.Listen", cfg.Server.Listen)
	v.Positive("Server.RateLimitPerMinute", cfg.Server.RateLimitPerMinute)
	v.PositiveDuration("Server.ShutdownTimeout", cfg.Server.ShutdownTimeout)

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}
