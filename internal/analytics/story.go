// SPDX-License-Identifier: MIT

package analytics

import (
	"sort"

	"github.com/ManuGH/incidentmap/internal/store"
)

// StoryTopN is the number of leading countries listed per year.
const StoryTopN = 8

// TopEntry is a country and its last-column value.
type TopEntry struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Story is the four-year overview. Change is the 2021 → 2024 percentage,
// set only when both totals are positive.
type Story struct {
	Totals map[store.Year]int64      `json:"totals"`
	Total  int64                     `json:"total"`
	Change *float64                  `json:"change,omitempty"`
	Top    map[store.Year][]TopEntry `json:"top"`
}

// BuildStory summarises the year totals and the leading countries per year.
func BuildStory(snap *store.Snapshot) Story {
	s := Story{
		Totals: make(map[store.Year]int64, len(store.Years)),
		Top:    make(map[store.Year][]TopEntry, len(store.Years)),
	}
	for _, y := range store.Years {
		t := int64(round(snap.YearTotal(y)))
		s.Totals[y] = t
		s.Total += t
		s.Top[y] = topCountries(snap, y, StoryTopN)
	}

	first, last := s.Totals[store.Year2021], s.Totals[store.Year2024]
	if first > 0 && last > 0 {
		change := float64(last-first) / float64(first) * 100
		change = round(change*10) / 10
		s.Change = &change
	}
	return s
}

func topCountries(snap *store.Snapshot, y store.Year, n int) []TopEntry {
	items := []TopEntry{}
	snap.Each(func(r *store.Record) {
		row := r.YearEvents(y)
		c, ok := row.Last()
		if !ok {
			return
		}
		v, ok := c.Float()
		if !ok || v <= 0 {
			return
		}
		items = append(items, TopEntry{Key: r.Key, Name: r.DisplayName, Value: v})
	})
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
