// SPDX-License-Identifier: MIT

// Package pipeline runs dataset loads: it fetches a bundle, ingests it into a
// fresh store in bundle order, freezes it, derives the colour scale and
// publishes the result. Readers always see either the previous dataset or
// the new one, never a partial load.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/incidentmap/internal/bundle"
	"github.com/ManuGH/incidentmap/internal/history"
	"github.com/ManuGH/incidentmap/internal/ingest"
	xglog "github.com/ManuGH/incidentmap/internal/log"
	"github.com/ManuGH/incidentmap/internal/metrics"
	"github.com/ManuGH/incidentmap/internal/sheet"
	"github.com/ManuGH/incidentmap/internal/store"
	"github.com/ManuGH/incidentmap/internal/telemetry"
)

// Reload origins.
const (
	OriginStartup = "startup"
	OriginWatch   = "watch"
	OriginAPI     = "api"
	OriginCheck   = "check"
	OriginSignal  = "signal"
)

// Recorder persists finished loads.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Options configures a Loader. Every field is optional.
type Options struct {
	History      Recorder
	SnapshotPath string
	Now          func() time.Time
	NewID        func() string
}

// Loader runs loads and holds the published dataset.
type Loader struct {
	opts    Options
	tracer  trace.Tracer
	current atomic.Pointer[Dataset]
	last    atomic.Pointer[Report]
	group   singleflight.Group
}

// NewLoader creates a loader without a published dataset.
func NewLoader(opts Options) *Loader {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Loader{opts: opts, tracer: telemetry.Tracer("incidentmap/pipeline")}
}

// Current returns the published dataset, or nil before the first successful
// load.
func (l *Loader) Current() *Dataset {
	return l.current.Load()
}

// LastReport returns the report of the most recent load, failed or not.
func (l *Loader) LastReport() *Report {
	return l.last.Load()
}

// Reload runs a load unless one for the same source is already in flight,
// in which case the caller shares its report.
func (l *Loader) Reload(ctx context.Context, src bundle.Source, origin string) (*Report, error) {
	metrics.RecordReload(origin)
	v, err, shared := l.group.Do(src.Describe(), func() (any, error) {
		return l.Load(ctx, src)
	})
	if shared {
		logger := xglog.WithComponentFromContext(ctx, "pipeline")
		logger.Debug().
			Str(xglog.FieldEvent, "reload.shared").
			Str("origin", origin).
			Msg("joined running load")
	}
	rep, _ := v.(*Report)
	return rep, err
}

// Load runs one load from src. The returned report is never nil. On error
// nothing is published and the previous dataset stays in place.
func (l *Loader) Load(ctx context.Context, src bundle.Source) (*Report, error) {
	id := l.opts.NewID()
	ctx = xglog.ContextWithLoadID(ctx, id)
	logger := xglog.WithComponentFromContext(ctx, "pipeline")

	ctx, span := l.tracer.Start(ctx, "pipeline.load",
		trace.WithAttributes(telemetry.LoadAttributes(id, src.Describe())...))
	defer span.End()

	rep := &Report{
		LoadID:    id,
		Source:    src.Describe(),
		StartedAt: l.opts.Now(),
		Sources:   []SourceReport{},
		Warnings:  []string{},
	}
	logger.Info().Str(xglog.FieldEvent, "load.start").Str(xglog.FieldSource, rep.Source).Msg("starting load")

	ds, err := l.run(ctx, src, rep)
	rep.FinishedAt = l.opts.Now()

	switch {
	case err == nil:
		rep.Status = history.StatusOK
		rep.Records = ds.Snapshot.Len()
		// The report is final before the dataset is published.
		if l.opts.SnapshotPath != "" {
			if werr := WriteSnapshot(ctx, l.opts.SnapshotPath, ds); werr != nil {
				rep.warn(werr.Error())
				logger.Warn().Err(werr).Str(xglog.FieldEvent, "snapshot.failed").Str(xglog.FieldPath, l.opts.SnapshotPath).Msg("snapshot export failed")
			}
		}
		ds.Report = rep
		l.current.Store(ds)
		metrics.RecordPublish(rep.Records, ds.Scale.Min, ds.Scale.Max, ds.Scale.Valid, ds.LoadedAt)
		span.SetAttributes(telemetry.LoadResultAttributes(rep.Records, rep.SkippedRows)...)
		logger.Info().
			Str(xglog.FieldEvent, "load.published").
			Int(xglog.FieldRecords, rep.Records).
			Int(xglog.FieldSkipped, rep.SkippedRows).
			Int("sources", len(rep.Sources)).
			Int("warnings", len(rep.Warnings)).
			Dur("duration", rep.FinishedAt.Sub(rep.StartedAt)).
			Msg("dataset published")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		rep.Status = history.StatusCanceled
		rep.Error = err.Error()
		span.SetStatus(codes.Error, "canceled")
		logger.Warn().Err(err).Str(xglog.FieldEvent, "load.canceled").Msg("load canceled, keeping previous dataset")
	default:
		rep.Status = history.StatusFailed
		rep.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Str(xglog.FieldEvent, "load.failed").Msg("load failed, keeping previous dataset")
	}

	metrics.RecordLoad(rep.Status, rep.FinishedAt.Sub(rep.StartedAt))
	l.last.Store(rep)
	l.record(ctx, rep)
	return rep, err
}

func (l *Loader) record(ctx context.Context, rep *Report) {
	if l.opts.History == nil {
		return
	}
	// The load context may already be canceled; the history row is written
	// regardless.
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := l.opts.History.Record(hctx, rep.entry()); err != nil {
		logger := xglog.WithComponentFromContext(ctx, "pipeline")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "history.record_failed").
			Msg("could not record load history")
	}
}

func (l *Loader) run(ctx context.Context, src bundle.Source, rep *Report) (*Dataset, error) {
	b, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Describe(), err)
	}
	for _, w := range b.Warnings {
		rep.warn(w)
	}

	st := store.New()
	var (
		geo *sheet.FeatureCollection
		raw []byte
	)
	for _, f := range b.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.Source.Kind == ingest.KindGeoJSON {
			fc, err := l.geoJSON(ctx, f, geo != nil, rep)
			if err != nil {
				return nil, err
			}
			if fc != nil {
				geo, raw = fc, f.Data
			}
			continue
		}
		if err := l.ingest(ctx, st, f, rep); err != nil {
			return nil, err
		}
	}

	snap := st.Freeze()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newDataset(rep.LoadID, rep.Source, l.opts.Now(), snap, geo, raw), nil
}

func (l *Loader) geoJSON(ctx context.Context, f bundle.File, have bool, rep *Report) (*sheet.FeatureCollection, error) {
	sr := SourceReport{Source: f.Source, Outcome: OutcomeIngested}
	if have {
		sr.Outcome = OutcomeFailed
		sr.Error = "duplicate map outline ignored"
		rep.add(sr)
		rep.warn(fmt.Sprintf("%s: %s", f.Source.Name, sr.Error))
		return nil, nil
	}
	fc, err := sheet.ReadGeoJSON(f.Source.Name, bytes.NewReader(f.Data))
	if err != nil {
		if f.Encrypted {
			return nil, fmt.Errorf("%s: %w", f.Source.Name, bundle.ErrBundleLocked)
		}
		sr.Outcome = OutcomeFailed
		sr.Error = err.Error()
		rep.add(sr)
		rep.warn(err.Error())
		logger := xglog.WithComponentFromContext(ctx, "pipeline")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "geojson.failed").
			Str(xglog.FieldSource, f.Source.Name).
			Msg("map outline unreadable, continuing without it")
		return nil, nil
	}
	sr.Rows = len(fc.Features)
	sr.Applied = len(fc.Names())
	rep.add(sr)
	metrics.RecordSource(string(f.Source.Kind), 0)
	return fc, nil
}

func (l *Loader) ingest(ctx context.Context, st *store.Store, f bundle.File, rep *Report) error {
	year, _ := strconv.Atoi(string(f.Source.Year))
	ctx, span := l.tracer.Start(ctx, "pipeline.ingest")
	defer span.End()

	res, err := ingest.Apply(ctx, st, f.Source, f.Data)
	span.SetAttributes(telemetry.IngestAttributes(string(f.Source.Kind), f.Source.Name, year, res.Rows)...)
	sr := SourceReport{
		Source:  f.Source,
		Outcome: OutcomeIngested,
		Rows:    res.Rows,
		Applied: res.Applied,
		Skipped: res.Skipped,
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// A wrong key can still produce valid padding; the garbage then
		// fails to decode.
		if f.Encrypted && errors.Is(err, ingest.ErrUndecodable) {
			return fmt.Errorf("%s: %w", f.Source.Name, bundle.ErrBundleLocked)
		}
		sr.Outcome = OutcomeFailed
		sr.Error = err.Error()
		rep.add(sr)
		rep.warn(fmt.Sprintf("%s: %v", f.Source.Name, err))
		logger := xglog.WithComponentFromContext(ctx, "pipeline")
		logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "ingest.source_failed").
			Str(xglog.FieldSource, f.Source.Name).
			Msg("source skipped")
		return nil
	}

	rep.add(sr)
	metrics.RecordSource(string(f.Source.Kind), res.Skipped)
	logger := xglog.WithComponentFromContext(ctx, "pipeline")
	logger.Debug().
		Str(xglog.FieldEvent, "ingest.source_done").
		Str(xglog.FieldSource, f.Source.Name).
		Str(xglog.FieldKind, string(f.Source.Kind)).
		Int("rows", res.Rows).
		Int(xglog.FieldSkipped, res.Skipped).
		Msg("source ingested")
	return nil
}
