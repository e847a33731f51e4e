// SPDX-License-Identifier: MIT

// Package daemon wires configuration into a running service and owns its
// lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/incidentmap/internal/api"
	"github.com/ManuGH/incidentmap/internal/bundle"
	"github.com/ManuGH/incidentmap/internal/cache"
	"github.com/ManuGH/incidentmap/internal/config"
	"github.com/ManuGH/incidentmap/internal/health"
	"github.com/ManuGH/incidentmap/internal/history"
	"github.com/ManuGH/incidentmap/internal/log"
	"github.com/ManuGH/incidentmap/internal/pipeline"
	"github.com/ManuGH/incidentmap/internal/telemetry"
)

// ServiceName identifies the service in logs and traces.
const ServiceName = "incidentmap"

// Runtime holds every long-lived component built from a configuration.
type Runtime struct {
	Config  config.Config
	Loader  *pipeline.Loader
	Source  bundle.Source
	Health  *health.Manager
	Handler http.Handler

	logger zerolog.Logger
	hooks  []namedHook
}

// Bootstrap builds the runtime. Resources opened here are released by Close,
// or by the manager's shutdown hooks when Serve is used.
func Bootstrap(ctx context.Context, cfg config.Config) (_ *Runtime, err error) {
	rt := &Runtime{
		Config: cfg,
		logger: log.WithComponent("daemon"),
	}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
		}
	}()

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    ServiceName,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		rt.logger.Warn().Err(err).Msg("Telemetry initialization failed, continuing without tracing")
	} else {
		rt.addHook("telemetry", provider.Shutdown)
		if cfg.Telemetry.Enabled {
			rt.logger.Info().
				Str("endpoint", cfg.Telemetry.Endpoint).
				Float64("sampling_rate", cfg.Telemetry.SamplingRate).
				Msg("Telemetry initialized")
		}
	}

	hm := health.NewManager(cfg.Version)
	rt.Health = hm

	var payloads cache.Cache
	if cfg.UsesRemote() {
		payloads, err = cache.New(cache.Config{
			Backend:       cfg.Cache.Backend,
			RedisAddr:     cfg.Cache.RedisAddr,
			RedisPassword: cfg.Cache.RedisPassword,
			RedisDB:       cfg.Cache.RedisDB,
		}, log.WithComponent("cache"))
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		rt.addHook("cache", func(context.Context) error { return payloads.Close() })
		if rc, ok := payloads.(*cache.RedisCache); ok {
			hm.RegisterChecker(health.NewFuncChecker("cache", health.StatusDegraded, rc.HealthCheck))
		}
	}

	rt.Source, err = BuildSource(cfg, payloads)
	if err != nil {
		return nil, err
	}
	if !cfg.UsesRemote() {
		hm.RegisterChecker(health.NewDirChecker("data_dir", cfg.Data.Dir))
	}

	opts := pipeline.Options{SnapshotPath: cfg.Data.SnapshotPath}
	var hist *history.Store
	if cfg.History.Path != "" {
		hist, err = history.Open(ctx, cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		rt.addHook("history", func(context.Context) error { return hist.Close() })
		hm.RegisterChecker(health.NewFuncChecker("history", health.StatusDegraded, hist.Verify))
		opts.History = hist
	}
	rt.Loader = pipeline.NewLoader(opts)
	hm.RegisterChecker(health.NewDatasetChecker(rt.datasetState))

	deps := api.Deps{
		Loader:             rt.Loader,
		Source:             rt.Source,
		Health:             hm,
		Version:            cfg.Version,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}
	if hist != nil {
		deps.History = hist
	}
	if cfg.Telemetry.Enabled {
		deps.TracingService = ServiceName
	}
	rt.Handler = api.New(deps).Handler()
	return rt, nil
}

// BuildSource returns the remote bundle source when a base URL is configured
// and the local folder source otherwise. payloads may be nil.
func BuildSource(cfg config.Config, payloads cache.Cache) (bundle.Source, error) {
	dec := bundle.Decrypter{
		Password:   cfg.Remote.Password,
		KDF:        cfg.Remote.KDF,
		Iterations: cfg.Remote.PBKDF2Iterations,
	}
	if !cfg.UsesRemote() {
		src := &bundle.DirSource{Dir: cfg.Data.Dir}
		if dec.Password != "" {
			src.Decrypter = &dec
		}
		return src, nil
	}

	src, err := bundle.NewRemoteSource(bundle.RemoteOptions{
		BaseURL:           cfg.Remote.BaseURL,
		Files:             cfg.Remote.Files,
		Decrypter:         dec,
		Concurrency:       cfg.Remote.Concurrency,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
		Timeout:           cfg.Remote.Timeout,
		Cache:             payloads,
		CacheTTL:          cfg.Cache.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("remote source: %w", err)
	}
	return src, nil
}

func (rt *Runtime) datasetState() (time.Time, string) {
	var loadedAt time.Time
	if ds := rt.Loader.Current(); ds != nil {
		loadedAt = ds.LoadedAt
	}
	var lastErr string
	if rep := rt.Loader.LastReport(); rep != nil && !rep.OK() {
		lastErr = rep.Error
	}
	return loadedAt, lastErr
}

func (rt *Runtime) addHook(name string, hook ShutdownHook) {
	rt.hooks = append(rt.hooks, namedHook{name: name, hook: hook})
}

// Serve runs the API server and the background reloads until ctx is done.
func (rt *Runtime) Serve(ctx context.Context, opts AppOptions) error {
	mgr, err := NewManager(rt.Config.Server, Deps{
		Logger:     rt.logger,
		APIHandler: rt.Handler,
	})
	if err != nil {
		return err
	}
	for _, h := range rt.hooks {
		mgr.RegisterShutdownHook(h.name, h.hook)
	}
	rt.hooks = nil

	if opts.WatchDir == "" && rt.Config.Data.Watch && !rt.Config.UsesRemote() {
		opts.WatchDir = rt.Config.Data.Dir
		opts.Debounce = rt.Config.Data.Debounce
	}
	return NewApp(rt.logger, mgr, rt.Loader, rt.Source, opts).Run(ctx)
}

// Close releases the resources of a runtime that was never served.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.hooks) - 1; i >= 0; i-- {
		if err := rt.hooks[i].hook(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rt.hooks[i].name, err))
		}
	}
	rt.hooks = nil
	return errors.Join(errs...)
}
