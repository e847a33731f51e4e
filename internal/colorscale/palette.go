// SPDX-License-Identifier: MIT

package colorscale

import (
	"math"

	"github.com/ManuGH/incidentmap/internal/store"
)

// Bucket maps every ratio >= Threshold (up to the next bucket) to Color.
type Bucket struct {
	Threshold float64 `json:"threshold"`
	Color     string  `json:"color"`
}

// Palette holds every colour token the dashboard uses. Buckets are ordered
// by ascending threshold.
type Palette struct {
	NoData           string            `json:"noData"`
	Buckets          []Bucket          `json:"heatmap"`
	Compare          []string          `json:"compare"`
	Continents       map[string]string `json:"continents"`
	DefaultContinent string            `json:"defaultContinent"`
}

// OtherContinent labels records without a continent.
const OtherContinent = "Diğer"

// DefaultPalette returns the dashboard palette. The top bucket is darker than
// the one below it on purpose.
func DefaultPalette() Palette {
	return Palette{
		NoData: "#020617",
		Buckets: []Bucket{
			{0, "#4c0519"},
			{0.2, "#7f1d1d"},
			{0.4, "#b91c1c"},
			{0.6, "#dc2626"},
			{0.8, "#f97373"},
			{1, "#7f1d1d"},
		},
		Compare: []string{"#7c3aed", "#2563eb", "#059669", "#b45309"},
		Continents: map[string]string{
			"Kuzey-Güney Amerika": "#fbbf24",
			"Avrupa":              "#3b82f6",
			"Balkanlar":           "#ec4899",
			"Afrika":              "#06b6d4",
			"Asya-Pasifik":        "#10b981",
		},
		DefaultContinent: "#6b7280",
	}
}

// Ratio returns the unclamped position of v in [lo, hi]; a zero span maps to 1.
func Ratio(v, lo, hi float64) float64 {
	if hi == lo {
		return 1
	}
	return (v - lo) / (hi - lo)
}

// ColorFor maps v onto a bucket. A nil or NaN value yields NoData. Buckets are
// scanned from the highest threshold down and the first threshold <= ratio
// wins; ratios below every threshold fall into the first bucket.
func (p Palette) ColorFor(v *float64, lo, hi float64) string {
	if v == nil || math.IsNaN(*v) {
		return p.NoData
	}
	if len(p.Buckets) == 0 {
		return p.NoData
	}
	ratio := Ratio(*v, lo, hi)
	for i := len(p.Buckets) - 1; i >= 0; i-- {
		if ratio >= p.Buckets[i].Threshold {
			return p.Buckets[i].Color
		}
	}
	return p.Buckets[0].Color
}

// Style returns the fill token of a record under scale s. Without a usable
// range every feature is NoData.
func (p Palette) Style(rec *store.Record, s Scale) string {
	if !s.Valid || rec == nil {
		return p.NoData
	}
	return p.ColorFor(rec.ColorValue, s.Min, s.Max)
}

// ContinentColor returns the colour of a continent label.
func (p Palette) ContinentColor(continent string) string {
	if c, ok := p.Continents[continent]; ok {
		return c
	}
	return p.DefaultContinent
}

// CompareColor returns the series colour of the i-th compared country.
func (p Palette) CompareColor(i int) string {
	if len(p.Compare) == 0 {
		return p.NoData
	}
	return p.Compare[i%len(p.Compare)]
}
