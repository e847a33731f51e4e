// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ManuGH/incidentmap/internal/config"
	"github.com/ManuGH/incidentmap/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before the first load.
func PerformStartupChecks(ctx context.Context, cfg config.Config) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if cfg.UsesRemote() {
		if err := checkRemote(logger, cfg.Remote.BaseURL); err != nil {
			return fmt.Errorf("remote bundle check failed: %w", err)
		}
	} else if err := checkDataDir(logger, cfg.Data.Dir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}

	for _, p := range []string{cfg.Data.SnapshotPath, cfg.History.Path} {
		if p == "" {
			continue
		}
		if err := checkParentWritable(logger, p); err != nil {
			return fmt.Errorf("output path check failed: %w", err)
		}
	}

	if err := checkListen(logger, cfg.Server.Listen); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	f, err := os.Open(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return fmt.Errorf("directory is not readable: %s (error: %v)", path, err)
	}
	_ = f.Close()

	logger.Info().Str("path", path).Msg("data directory is readable")
	return nil
}

func checkRemote(logger zerolog.Logger, base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid remote base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("remote base URL scheme must be http or https, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("remote base URL has no host: %s", base)
	}
	logger.Info().Str("url", base).Msg("remote base URL is valid")
	return nil
}

func checkParentWritable(logger zerolog.Logger, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", dir, err)
	}
	_ = os.Remove(testFile)

	logger.Info().Str("path", dir).Msg("output directory is writable")
	return nil
}

func checkListen(logger zerolog.Logger, addr string) error {
	if addr == "" {
		return nil
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	logger.Info().Str("addr", addr).Msg("listen address is valid")
	return nil
}
