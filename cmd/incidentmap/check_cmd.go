// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/incidentmap/internal/config"
	"github.com/ManuGH/incidentmap/internal/daemon"
	xglog "github.com/ManuGH/incidentmap/internal/log"
	"github.com/ManuGH/incidentmap/internal/pipeline"
)

// runCheckCLI loads the configured bundle once and prints the load report.
// It exits non-zero when the load fails.
func runCheckCLI(args []string) int {
	fs := flag.NewFlagSet("incidentmap check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return check(ctx, *configPath, os.Stdout, os.Stderr)
}

func check(ctx context.Context, configPath string, stdout, stderr io.Writer) int {
	cfg, err := config.NewLoader(configPath, version).Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}
	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  stderr,
		Service: daemon.ServiceName,
		Version: cfg.Version,
	})

	rt, err := daemon.Bootstrap(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Initialization failed: %v\n", err)
		return 1
	}
	defer func() {
		_ = rt.Close(context.WithoutCancel(ctx))
	}()

	rep, loadErr := rt.Loader.Reload(ctx, rt.Source, pipeline.OriginCheck)
	if rep != nil {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep)
	}
	if loadErr != nil {
		fmt.Fprintf(stderr, "Load failed: %v\n", loadErr)
		return 1
	}
	return 0
}
