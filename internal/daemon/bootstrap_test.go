// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/incidentmap/internal/bundle"
	"github.com/ManuGH/incidentmap/internal/config"
	"github.com/ManuGH/incidentmap/internal/history"
	"github.com/ManuGH/incidentmap/internal/pipeline"
	"github.com/ManuGH/incidentmap/internal/sheet/sheettest"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"sözlük.xlsx": sheettest.XLSX(t, [][]any{{"France", "Fransa"}}),
		"ulkeler.xlsx": sheettest.XLSX(t, [][]any{
			{"Fransa", nil, nil, nil, nil, "Avrupa", "12.5"},
		}),
		"veriler_2023.xlsx": sheettest.XLSX(t, [][]any{
			{"Ülke", "Olay A", "Olay B"},
			{"Fransa", 3, 7},
		}),
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	return dir
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Version = "test"
	cfg.Data.Dir = writeDataDir(t)
	cfg.Data.Watch = false
	cfg.Data.SnapshotPath = filepath.Join(t.TempDir(), "out", "snapshot.json")
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	return cfg
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestBootstrap_LoadsLocalFolder(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	rt, err := Bootstrap(ctx, cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, rt.Close(ctx)) }()

	assert.Equal(t, http.StatusServiceUnavailable, get(t, rt.Handler, "/readyz").Code)

	rep, err := rt.Loader.Reload(ctx, rt.Source, pipeline.OriginCheck)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Records)

	assert.Equal(t, http.StatusOK, get(t, rt.Handler, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(t, rt.Handler, "/api/v1/countries/France").Code)

	w := get(t, rt.Handler, "/api/v1/loads")
	require.Equal(t, http.StatusOK, w.Code)
	var entries []history.Entry
	require.NoError(t, json.NewDecoder(w.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, history.StatusOK, entries[0].Status)

	_, err = os.Stat(cfg.Data.SnapshotPath)
	assert.NoError(t, err)
}

func TestBootstrap_CloseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	rt, err := Bootstrap(ctx, testConfig(t))
	require.NoError(t, err)
	require.NoError(t, rt.Close(ctx))
	require.NoError(t, rt.Close(ctx))
}

func TestBootstrap_RejectsUnknownCacheBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Remote.BaseURL = "https://example.org/bundle/"
	cfg.Cache.Backend = "memcached"

	_, err := Bootstrap(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache backend")
}

func TestBootstrap_FailureReleasesOpenedResources(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testConfig(t)
	// The memory cache starts its janitor before the history store fails.
	cfg.Remote.BaseURL = "https://example.org/bundle/"
	cfg.Cache.Backend = "memory"
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	cfg.History.Path = filepath.Join(blocker, "history.db")

	var (
		rt  *Runtime
		err error
	)
	require.NotPanics(t, func() {
		rt, err = Bootstrap(context.Background(), cfg)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history")
	assert.Nil(t, rt)
}

func TestBuildSource(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Dir = "/srv/veri"

	src, err := BuildSource(cfg, nil)
	require.NoError(t, err)
	dir, ok := src.(*bundle.DirSource)
	require.True(t, ok)
	assert.Nil(t, dir.Decrypter)

	cfg.Remote.Password = "secret"
	src, err = BuildSource(cfg, nil)
	require.NoError(t, err)
	dir = src.(*bundle.DirSource)
	require.NotNil(t, dir.Decrypter)
	assert.Equal(t, "secret", dir.Decrypter.Password)

	cfg.Remote.BaseURL = "https://example.org/bundle/"
	src, err = BuildSource(cfg, nil)
	require.NoError(t, err)
	_, ok = src.(*bundle.RemoteSource)
	assert.True(t, ok)

	cfg.Remote.BaseURL = "://broken"
	_, err = BuildSource(cfg, nil)
	assert.Error(t, err)
}
