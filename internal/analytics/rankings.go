// SPDX-License-Identifier: MIT

package analytics

import (
	"sort"

	"github.com/ManuGH/incidentmap/internal/store"
)

// DefaultRankingLimit is the number of entries shown unless asked otherwise.
const DefaultRankingLimit = 20

// RankEntry is one country in a yearly ranking.
type RankEntry struct {
	Rank  int    `json:"rank"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value int    `json:"value"`
	Focus bool   `json:"focus,omitempty"`
}

// Ranking orders every country with data for a year by its last value.
type Ranking struct {
	Year    store.Year  `json:"year"`
	Total   int         `json:"total"`
	Entries []RankEntry `json:"entries"`
	Focus   *RankEntry  `json:"focus,omitempty"`
}

// Rankings ranks the countries of year y. The focused record (by key) is
// marked and always returned in Focus, even when it falls outside limit.
func Rankings(snap *store.Snapshot, y store.Year, focusKey string, limit int) Ranking {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}

	var all []RankEntry
	snap.Each(func(r *store.Record) {
		row := r.YearEvents(y)
		if row == nil {
			return
		}
		all = append(all, RankEntry{
			Key:   r.Key,
			Name:  r.DisplayName,
			Value: LastValue(row),
			Focus: focusKey != "" && r.Key == focusKey,
		})
	})

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Value != all[j].Value {
			return all[i].Value > all[j].Value
		}
		return all[i].Name < all[j].Name
	})

	out := Ranking{Year: y, Total: len(all), Entries: []RankEntry{}}
	for i := range all {
		all[i].Rank = i + 1
		if all[i].Focus {
			e := all[i]
			out.Focus = &e
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	out.Entries = append(out.Entries, all...)
	return out
}
