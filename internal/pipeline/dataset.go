// SPDX-License-Identifier: MIT

package pipeline

import (
	"time"

	"github.com/ManuGH/incidentmap/internal/colorscale"
	"github.com/ManuGH/incidentmap/internal/resolve"
	"github.com/ManuGH/incidentmap/internal/sheet"
	"github.com/ManuGH/incidentmap/internal/store"
)

// Dataset is one published load. It is immutable once published and shared
// by every reader until the next successful load replaces it.
type Dataset struct {
	LoadID   string
	Source   string
	LoadedAt time.Time
	Snapshot *store.Snapshot
	Scale    colorscale.Scale
	Report   *Report

	// GeoJSON is nil when the bundle had no (readable) map outline.
	GeoJSON    *sheet.FeatureCollection
	GeoJSONRaw []byte

	resolver *resolve.Resolver
}

func newDataset(id, source string, at time.Time, snap *store.Snapshot, geo *sheet.FeatureCollection, raw []byte) *Dataset {
	return &Dataset{
		LoadID:     id,
		Source:     source,
		LoadedAt:   at,
		Snapshot:   snap,
		Scale:      colorscale.Calculate(snap),
		GeoJSON:    geo,
		GeoJSONRaw: raw,
		resolver:   resolve.New(snap),
	}
}

// Resolver returns the feature resolver bound to the dataset's snapshot.
func (d *Dataset) Resolver() *resolve.Resolver {
	return d.resolver
}

// SearchCandidates returns the names search runs over: GeoJSON feature
// names when a map outline was loaded, record display names otherwise.
func (d *Dataset) SearchCandidates() []string {
	if names := d.GeoJSON.Names(); len(names) > 0 {
		return names
	}
	out := make([]string, 0, d.Snapshot.Len())
	d.Snapshot.Each(func(r *store.Record) {
		out = append(out, r.DisplayName)
	})
	return out
}
