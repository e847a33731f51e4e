// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/incidentmap/internal/bundle"
	"github.com/ManuGH/incidentmap/internal/pipeline"
)

// Reloader runs a dataset load from a source.
type Reloader interface {
	Reload(ctx context.Context, src bundle.Source, origin string) (*pipeline.Report, error)
}

// AppOptions configures the background work owned by an App.
type AppOptions struct {
	// WatchDir is watched for changes when set.
	WatchDir string
	Debounce time.Duration
	// ReloadSignal triggers a reload; nil disables it.
	ReloadSignal os.Signal
}

// App owns the long-lived runtime lifecycle (initial load, folder watcher,
// signal-triggered reloads) and delegates server management to Manager.
type App struct {
	logger  zerolog.Logger
	manager Manager
	loader  Reloader
	source  bundle.Source
	opts    AppOptions
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, loader Reloader, source bundle.Source, opts AppOptions) *App {
	return &App{
		logger:  logger,
		manager: manager,
		loader:  loader,
		source:  source,
		opts:    opts,
	}
}

// DefaultAppOptions reloads on SIGHUP.
func DefaultAppOptions() AppOptions {
	return AppOptions{ReloadSignal: syscall.SIGHUP}
}

// Run starts the initial load and all owned background subsystems, and blocks
// until ctx is cancelled or a fatal error occurs. The server starts before the
// first dataset is published; readiness reports that state.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}
	if a.loader == nil || a.source == nil {
		return ErrMissingLoader
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.reload(ctx, pipeline.OriginStartup)
		return nil
	})

	// The watcher is best-effort: a broken watch never stops the server.
	if a.opts.WatchDir != "" {
		g.Go(func() error {
			err := bundle.Watch(ctx, a.logger, a.opts.WatchDir, a.opts.Debounce, func() {
				a.reload(ctx, pipeline.OriginWatch)
			})
			if err != nil {
				a.logger.Warn().
					Err(err).
					Str("event", "watch.failed").
					Str("path", a.opts.WatchDir).
					Msg("data folder watcher stopped")
			}
			return nil
		})
	}

	if a.opts.ReloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.opts.ReloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "reload.signal").
						Str("signal", a.opts.ReloadSignal.String()).
						Msg("received reload signal, reloading dataset")
					a.reload(ctx, pipeline.OriginSignal)
				}
			}
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// reload logs failures; the previously published dataset stays in place.
func (a *App) reload(ctx context.Context, origin string) {
	if _, err := a.loader.Reload(ctx, a.source, origin); err != nil {
		if ctx.Err() != nil {
			return
		}
		a.logger.Warn().
			Err(err).
			Str("event", "reload.failed").
			Str("origin", origin).
			Str("source", a.source.Describe()).
			Msg("dataset load failed")
	}
}
