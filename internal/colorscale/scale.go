// SPDX-License-Identifier: MIT

// Package colorscale derives the choropleth range from the colour values of
// a snapshot and maps values onto heatmap buckets.
package colorscale

import (
	"encoding/json"
	"math"

	"github.com/ManuGH/incidentmap/internal/store"
)

// Scale is the global [Min, Max] range of colour values. Valid is false when
// no record carries a colour value; Min is then 0 and Max is -Inf.
type Scale struct {
	Min   float64
	Max   float64
	Valid bool
}

// Calculate scans every record once. It must run after ingestion finished.
func Calculate(snap *store.Snapshot) Scale {
	lo, hi := math.Inf(1), math.Inf(-1)
	snap.Each(func(r *store.Record) {
		if r.ColorValue == nil {
			return
		}
		v := *r.ColorValue
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	})
	if math.IsInf(lo, 1) {
		return Scale{Min: 0, Max: math.Inf(-1)}
	}
	return Scale{Min: lo, Max: hi, Valid: true}
}

// Span returns Max-Min, or 0 for an invalid scale.
func (s Scale) Span() float64 {
	if !s.Valid {
		return 0
	}
	return s.Max - s.Min
}

// MarshalJSON renders an invalid maximum as null.
func (s Scale) MarshalJSON() ([]byte, error) {
	var hi *float64
	if s.Valid {
		hi = &s.Max
	}
	return json.Marshal(struct {
		Min   float64  `json:"min"`
		Max   *float64 `json:"max"`
		Valid bool     `json:"valid"`
	}{s.Min, hi, s.Valid})
}
