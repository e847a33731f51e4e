// SPDX-License-Identifier: MIT

package search

import (
	"sort"
	"unicode/utf8"

	"github.com/ManuGH/incidentmap/internal/normalize"
	"github.com/ManuGH/incidentmap/internal/store"
)

// MinQueryLen is the shortest query that is searched at all.
const MinQueryLen = 2

// Resolver maps a candidate name to its record.
type Resolver interface {
	Resolve(english string) (*store.Record, bool)
}

// Result is one search hit.
type Result struct {
	Name        string `json:"name"`
	Key         string `json:"key,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Score       int    `json:"score"`
	HasData     bool   `json:"hasData"`
}

// Search scores every candidate name against query and returns the matches
// ordered by descending score, then name. limit <= 0 returns every match.
func Search(query string, candidates []string, res Resolver, limit int) []Result {
	query = normalize.Trim(query)
	if utf8.RuneCountInString(query) < MinQueryLen {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	var out []Result
	for _, name := range candidates {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		score, ok := Match(name, query)
		if !ok {
			continue
		}
		r := Result{Name: name, Score: score}
		if res != nil {
			if rec, found := res.Resolve(name); found {
				r.Key = rec.Key
				r.DisplayName = rec.DisplayName
				r.HasData = true
			}
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
