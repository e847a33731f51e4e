// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/incidentmap/internal/config"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string {
	return m.name
}

func (m *mockChecker) Check(_ context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManager_Ready(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []Status
		wantReady bool
		want      Status
	}{
		{"no checkers", nil, true, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, true, StatusHealthy},
		{"degraded is still ready", []Status{StatusHealthy, StatusDegraded}, true, StatusDegraded},
		{"unhealthy", []Status{StatusDegraded, StatusUnhealthy}, false, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1.0.0")
			for i, s := range tt.statuses {
				m.RegisterChecker(&mockChecker{name: string(rune('a' + i)), status: s})
			}
			resp := m.Ready(context.Background(), false)
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.want, resp.Status)
		})
	}
}

func TestManager_ServeReady(t *testing.T) {
	var loadedAt time.Time
	m := NewManager("v1.0.0")
	m.RegisterChecker(NewDatasetChecker(func() (time.Time, string) { return loadedAt, "" }))

	w := httptest.NewRecorder()
	m.ServeReady(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Checks["dataset"].Status)

	loadedAt = time.Now()
	w = httptest.NewRecorder()
	m.ServeReady(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestManager_ServeHealthAlwaysOK(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})

	w := httptest.NewRecorder()
	m.ServeHealth(w, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks, "down")
}

func TestDatasetChecker(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		loadedAt time.Time
		lastErr  string
		want     Status
	}{
		{"nothing loaded", time.Time{}, "", StatusUnhealthy},
		{"first load failed", time.Time{}, "wrong password or corrupt data", StatusUnhealthy},
		{"fresh", now.Add(-time.Hour), "", StatusHealthy},
		{"stale", now.Add(-25 * time.Hour), "", StatusDegraded},
		{"reload failed", now.Add(-time.Hour), "boom", StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDatasetChecker(func() (time.Time, string) { return tt.loadedAt, tt.lastErr })
			c.now = func() time.Time { return now }
			res := c.Check(context.Background())
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, "dataset", c.Name())
			if tt.lastErr != "" {
				assert.Equal(t, tt.lastErr, res.Error)
			}
		})
	}
}

func TestFuncChecker(t *testing.T) {
	ok := NewFuncChecker("redis", StatusDegraded, func(context.Context) error { return nil })
	assert.Equal(t, "redis", ok.Name())
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	bad := NewFuncChecker("history", StatusUnhealthy, func(context.Context) error { return errors.New("corrupt") })
	res := bad.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Equal(t, "corrupt", res.Error)
}

func TestDirChecker(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ulkeler.xlsx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.Equal(t, StatusHealthy, NewDirChecker("data_dir", "").Check(context.Background()).Status)
	assert.Equal(t, StatusHealthy, NewDirChecker("data_dir", dir).Check(context.Background()).Status)
	assert.Equal(t, StatusDegraded, NewDirChecker("data_dir", file).Check(context.Background()).Status)
	assert.Equal(t, StatusDegraded, NewDirChecker("data_dir", filepath.Join(dir, "missing")).Check(context.Background()).Status)
}

func TestPerformStartupChecks(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Data.Dir = dir
	cfg.History.Path = filepath.Join(dir, "state", "history.db")
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))
	assert.DirExists(t, filepath.Join(dir, "state"))

	cfg.Data.Dir = filepath.Join(dir, "missing")
	assert.Error(t, PerformStartupChecks(context.Background(), cfg))

	cfg.Data.Dir = dir
	cfg.Server.Listen = "no-port"
	assert.Error(t, PerformStartupChecks(context.Background(), cfg))

	remote := config.Default()
	remote.Remote.BaseURL = "ftp://example.org/"
	require.True(t, remote.UsesRemote())
	assert.Error(t, PerformStartupChecks(context.Background(), remote))

	remote.Remote.BaseURL = "https://example.org/bundle/"
	assert.NoError(t, PerformStartupChecks(context.Background(), remote))
}
