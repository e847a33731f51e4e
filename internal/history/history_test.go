// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := Entry{
		ID:          "a",
		Source:      "dir:/data/Veri",
		StartedAt:   base,
		FinishedAt:  base.Add(1500 * time.Millisecond),
		Status:      StatusOK,
		Records:     120,
		Sources:     14,
		SkippedRows: 2,
	}
	second := Entry{
		ID:         "b",
		Source:     "remote:https://example.com/Veri/",
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Second),
		Status:     StatusFailed,
		Error:      "wrong password or corrupt data",
	}
	require.NoError(t, s.Record(ctx, first))
	require.NoError(t, s.Record(ctx, second))

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	if diff := cmp.Diff([]Entry{second, first}, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1500*time.Millisecond, got[1].Duration())

	limited, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].ID)
}

func TestRecordReplacesSameID(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := Entry{ID: "x", Source: "dir", StartedAt: now, FinishedAt: now, Status: StatusCanceled}
	require.NoError(t, s.Record(ctx, e))
	e.Status = StatusOK
	e.Records = 3
	require.NoError(t, s.Record(ctx, e))

	got, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, StatusOK, got[0].Status)
	assert.Equal(t, 3, got[0].Records)
}

func TestRecordRejectsUnknownStatus(t *testing.T) {
	s := openStore(t)
	now := time.Now()
	err := s.Record(context.Background(), Entry{ID: "y", StartedAt: now, FinishedAt: now, Status: "weird"})
	assert.Error(t, err)
}

func TestEmptyListAndVerify(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	got, err := s.List(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.NoError(t, s.Verify(ctx))
}

func TestReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Entry{ID: "z", Source: "dir", StartedAt: now, FinishedAt: now, Status: StatusOK}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, now.Equal(got[0].StartedAt))
}
