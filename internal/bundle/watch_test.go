// SPDX-License-Identifier: MIT

package bundle

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatch_DebouncesChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, zerolog.Nop(), dir, 50*time.Millisecond, func() { calls.Add(1) })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "veriler_2021.xlsx"), []byte{byte(i)}, 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one reload")

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_SeesNewSubdirectories(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, zerolog.Nop(), dir, 30*time.Millisecond, func() { calls.Add(1) })
	}()

	time.Sleep(50 * time.Millisecond)
	sub := filepath.Join(dir, "flags")
	require.NoError(t, os.Mkdir(sub, 0o750))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load(), "an empty folder holds nothing to load")

	require.NoError(t, os.WriteFile(filepath.Join(sub, "Fransa.png"), []byte("png"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_IgnoresFilesOutsideTheBundle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	snapshot := filepath.Join(dir, "snapshot.json")
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, zerolog.Nop(), dir, 30*time.Millisecond, func() {
			calls.Add(1)
			// Each reload exports into the watched folder.
			_ = os.WriteFile(snapshot, []byte("{}"), 0o600)
			_ = os.WriteFile(filepath.Join(dir, "history.db"), []byte("db"), 0o600)
		})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(snapshot, []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ulkeler.xlsx"), []byte("x"), 0o600))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "exports written by a reload do not trigger another")

	cancel()
	require.NoError(t, <-done)
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), zerolog.Nop(), filepath.Join(t.TempDir(), "missing"), time.Millisecond, func() {})
	assert.Error(t, err)
}
