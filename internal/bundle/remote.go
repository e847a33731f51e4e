// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ManuGH/incidentmap/internal/cache"
	"github.com/ManuGH/incidentmap/internal/ingest"
	xglog "github.com/ManuGH/incidentmap/internal/log"
	"github.com/ManuGH/incidentmap/internal/metrics"
	"github.com/ManuGH/incidentmap/internal/telemetry"
)

// MaxFileSize bounds a single remote payload.
const MaxFileSize = 64 << 20

const (
	defaultConcurrency = 4
	defaultTimeout     = 30 * time.Second
	defaultCacheTTL    = 10 * time.Minute
)

// ErrHTTPStatus is wrapped when the server answers with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected http status")

// RemoteOptions configures a RemoteSource.
type RemoteOptions struct {
	BaseURL           string
	Files             []string
	Decrypter         Decrypter
	Concurrency       int
	RequestsPerSecond float64
	Timeout           time.Duration
	Cache             cache.Cache
	CacheTTL          time.Duration
	HTTPClient        *http.Client
}

// RemoteSource fetches a fixed file list relative to a base URL. Files are
// downloaded concurrently but returned in list order. Encrypted files are
// decrypted; any failure on them aborts the load with ErrBundleLocked.
// Clear files that fail are skipped with a warning when they are GeoJSON and
// abort the load otherwise.
type RemoteSource struct {
	base      *url.URL
	files     []string
	decrypter Decrypter
	client    *http.Client
	limiter   *rate.Limiter
	workers   int
	cache     cache.Cache
	cacheTTL  time.Duration
}

// NewRemoteSource validates opts and builds the source.
func NewRemoteSource(opts RemoteOptions) (*RemoteSource, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNoOpCache()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				MaxIdleConns:          20,
				MaxIdleConnsPerHost:   opts.Concurrency,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: opts.Timeout,
				TLSHandshakeTimeout:   10 * time.Second,
			}),
		}
	}

	return &RemoteSource{
		base:      base,
		files:     append([]string(nil), opts.Files...),
		decrypter: opts.Decrypter,
		client:    client,
		limiter:   rate.NewLimiter(limit, opts.Concurrency),
		workers:   opts.Concurrency,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
	}, nil
}

// Describe implements Source.
func (r *RemoteSource) Describe() string {
	return "remote:" + r.base.String()
}

func (r *RemoteSource) fileURL(name string) string {
	return r.base.ResolveReference(&url.URL{Path: name}).String()
}

type fetched struct {
	data []byte
	warn string
	skip bool
}

// Fetch implements Source.
func (r *RemoteSource) Fetch(ctx context.Context) (*Bundle, error) {
	results := make([]fetched, len(r.files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, name := range r.files {
		g.Go(func() error {
			res, err := r.fetchOne(gctx, name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &Bundle{}
	for i, name := range r.files {
		res := results[i]
		if res.warn != "" {
			b.Warn(res.warn)
		}
		if res.skip {
			continue
		}
		src, _ := ingest.Classify(name)
		b.Files = append(b.Files, File{
			Source:    src,
			Data:      res.data,
			Encrypted: strings.HasSuffix(name, ingest.EncryptedSuffix),
		})
	}
	if len(b.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", r.Describe(), ErrNoFiles)
	}
	return b, nil
}

func (r *RemoteSource) fetchOne(ctx context.Context, name string) (fetched, error) {
	src, ok := ingest.Classify(name)
	if !ok {
		return fetched{skip: true, warn: fmt.Sprintf("%s: not a bundle file, skipped", name)}, nil
	}
	encrypted := strings.HasSuffix(name, ingest.EncryptedSuffix)

	data, err := r.download(ctx, name)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fetched{}, err
		}
		if !encrypted && src.Kind == ingest.KindGeoJSON {
			logger := xglog.WithComponentFromContext(ctx, "bundle")
			logger.Warn().
				Err(err).Str(xglog.FieldSource, name).Msg("map geometry unavailable")
			return fetched{skip: true, warn: fmt.Sprintf("%s: %v", name, err)}, nil
		}
		if encrypted {
			return fetched{}, fmt.Errorf("%s: %w: %w", name, ErrBundleLocked, err)
		}
		return fetched{}, fmt.Errorf("%s: %w", name, err)
	}

	if !encrypted {
		return fetched{data: data}, nil
	}
	plain, err := r.decrypter.Decrypt(data)
	if err != nil {
		metrics.RecordFetch(metrics.OutcomeDecrypt)
		return fetched{}, fmt.Errorf("%s: %w", name, err)
	}
	return fetched{data: plain}, nil
}

// download returns the raw (still encrypted) payload, served from the cache
// when possible.
func (r *RemoteSource) download(ctx context.Context, name string) ([]byte, error) {
	target := r.fileURL(name)

	ctx, span := telemetry.Tracer("incidentmap/bundle").Start(ctx, "bundle.fetch")
	defer span.End()

	if data, ok := r.cache.Get(ctx, target); ok {
		metrics.RecordCacheLookup(true)
		span.SetAttributes(telemetry.FetchAttributes(name, len(data), true)...)
		return data, nil
	}
	metrics.RecordCacheLookup(false)

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		metrics.RecordFetch(metrics.OutcomeTransport)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFetch(metrics.OutcomeHTTPError)
		span.SetStatus(codes.Error, resp.Status)
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
	if err != nil {
		metrics.RecordFetch(metrics.OutcomeTransport)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(data) > MaxFileSize {
		metrics.RecordFetch(metrics.OutcomeHTTPError)
		return nil, fmt.Errorf("payload exceeds %d bytes", MaxFileSize)
	}

	metrics.RecordFetch(metrics.OutcomeOK)
	span.SetAttributes(telemetry.FetchAttributes(name, len(data), false)...)
	r.cache.Set(ctx, target, data, r.cacheTTL)
	return data, nil
}
