// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/incidentmap/internal/colorscale"
	xglog "github.com/ManuGH/incidentmap/internal/log"
	"github.com/ManuGH/incidentmap/internal/store"
)

// SnapshotDocument is the JSON export of a published dataset.
type SnapshotDocument struct {
	LoadID   string           `json:"loadId"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loadedAt"`
	Scale    colorscale.Scale `json:"scale"`
	Data     *store.Snapshot  `json:"data"`
}

// WriteSnapshot exports ds to path. The file is replaced atomically, so a
// reader never sees a half-written export.
func WriteSnapshot(ctx context.Context, path string, ds *Dataset) error {
	logger := xglog.FromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending snapshot file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending snapshot file")
		}
	}()

	enc := json.NewEncoder(pendingFile)
	enc.SetIndent("", "  ")
	doc := SnapshotDocument{
		LoadID:   ds.LoadID,
		Source:   ds.Source,
		LoadedAt: ds.LoadedAt,
		Scale:    ds.Scale,
		Data:     ds.Snapshot,
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write snapshot data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	logger.Debug().
		Str(xglog.FieldEvent, "snapshot.write").
		Str(xglog.FieldPath, path).
		Msg("snapshot written")
	return nil
}

// ReadSnapshot loads the metadata of an export. The record data is returned
// as raw JSON.
func ReadSnapshot(path string) (SnapshotHeader, error) {
	var h SnapshotHeader
	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("decode snapshot: %w", err)
	}
	return h, nil
}

// SnapshotHeader is the decoded form of a SnapshotDocument.
type SnapshotHeader struct {
	LoadID   string          `json:"loadId"`
	Source   string          `json:"source"`
	LoadedAt time.Time       `json:"loadedAt"`
	Data     json.RawMessage `json:"data"`
}
