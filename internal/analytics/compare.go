// SPDX-License-Identifier: MIT

package analytics

import (
	"errors"
	"fmt"

	"github.com/ManuGH/incidentmap/internal/colorscale"
	"github.com/ManuGH/incidentmap/internal/store"
)

const (
	MinCompare = 2
	MaxCompare = 4
)

var (
	// ErrCompareCount is returned for fewer than two or more than four countries.
	ErrCompareCount = fmt.Errorf("compare needs %d to %d countries", MinCompare, MaxCompare)
	// ErrUnknownCountry is returned when a compared name resolves to no record.
	ErrUnknownCountry = errors.New("unknown country")
)

// Finder resolves an English or Turkish country name.
type Finder interface {
	Find(name string) (*store.Record, bool)
}

// Series is one compared country. Gap is the distance to the leader's
// total, zero for the leader itself.
type Series struct {
	Key    string             `json:"key"`
	Name   string             `json:"name"`
	Color  string             `json:"color"`
	Values map[store.Year]int `json:"values"`
	Total  int                `json:"total"`
	Gap    int                `json:"gap"`
	Flag   string             `json:"flag,omitempty"`
}

// Comparison holds two to four series and the leading country.
type Comparison struct {
	Series []Series `json:"series"`
	Leader string   `json:"leader"`
}

// Compare builds per-year last-value series for the named countries.
func Compare(f Finder, p colorscale.Palette, names []string) (Comparison, error) {
	if len(names) < MinCompare || len(names) > MaxCompare {
		return Comparison{}, ErrCompareCount
	}

	c := Comparison{Series: make([]Series, 0, len(names))}
	seen := make(map[string]struct{}, len(names))
	lead := -1
	for i, name := range names {
		rec, ok := f.Find(name)
		if !ok {
			return Comparison{}, fmt.Errorf("%w: %q", ErrUnknownCountry, name)
		}
		if _, dup := seen[rec.Key]; dup {
			return Comparison{}, fmt.Errorf("%w: %q listed twice", ErrCompareCount, name)
		}
		seen[rec.Key] = struct{}{}

		s := Series{
			Key:    rec.Key,
			Name:   rec.DisplayName,
			Color:  p.CompareColor(i),
			Values: make(map[store.Year]int, len(store.Years)),
			Flag:   rec.Flag,
		}
		for _, y := range store.Years {
			v := LastValue(rec.YearEvents(y))
			s.Values[y] = v
			s.Total += v
		}
		if lead < 0 || s.Total > c.Series[lead].Total {
			lead = i
		}
		c.Series = append(c.Series, s)
	}

	c.Leader = c.Series[lead].Key
	for i := range c.Series {
		c.Series[i].Gap = c.Series[lead].Total - c.Series[i].Total
	}
	return c, nil
}
