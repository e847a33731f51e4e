// SPDX-License-Identifier: MIT

package analytics

import (
	"sort"

	"github.com/ManuGH/incidentmap/internal/colorscale"
	"github.com/ManuGH/incidentmap/internal/store"
)

// Bubble is one country in the analysis view.
type Bubble struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Continent string  `json:"continent"`
	Color     string  `json:"color"`
}

// Analysis is the bubble view of one metric in one year.
type Analysis struct {
	Year    store.Year `json:"year"`
	Metric  string     `json:"metric"`
	Max     float64    `json:"max"`
	Bubbles []Bubble   `json:"bubbles"`
}

// Bubbles collects every country whose metric cell parses to a positive
// number, largest first. An empty metric selects the first ordered header.
func Bubbles(snap *store.Snapshot, p colorscale.Palette, y store.Year, metric string) Analysis {
	if metric == "" {
		if h := snap.OrderedHeaders(); len(h) > 0 {
			metric = h[0]
		}
	}
	a := Analysis{Year: y, Metric: metric, Bubbles: []Bubble{}}
	if metric == "" {
		return a
	}

	snap.Each(func(r *store.Record) {
		c, ok := r.YearEvents(y).Get(metric)
		if !ok {
			return
		}
		v, ok := c.Float()
		if !ok || v <= 0 {
			return
		}
		continent := r.Continent
		if continent == "" {
			continent = colorscale.OtherContinent
		}
		a.Bubbles = append(a.Bubbles, Bubble{
			Key:       r.Key,
			Name:      r.DisplayName,
			Value:     v,
			Continent: continent,
			Color:     p.ContinentColor(continent),
		})
		if v > a.Max {
			a.Max = v
		}
	})

	sort.SliceStable(a.Bubbles, func(i, j int) bool {
		if a.Bubbles[i].Value != a.Bubbles[j].Value {
			return a.Bubbles[i].Value > a.Bubbles[j].Value
		}
		return a.Bubbles[i].Name < a.Bubbles[j].Name
	})
	return a
}
