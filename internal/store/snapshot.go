// SPDX-License-Identifier: MIT

package store

import (
	"encoding/json"

	"github.com/ManuGH/incidentmap/internal/normalize"
)

// Snapshot is the frozen result of a load. Records returned from a Snapshot
// are shared between readers and must not be modified.
type Snapshot struct {
	records      map[string]*Record
	keys         []string
	translations Translations
	headers      []string
	totals       map[Year]float64
}

// Empty returns a snapshot without any data.
func Empty() *Snapshot {
	return New().Freeze()
}

// Get returns the record stored under an already normalized key.
func (s *Snapshot) Get(key string) (*Record, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Lookup normalizes name and returns the matching record.
func (s *Snapshot) Lookup(name string) (*Record, bool) {
	return s.Get(normalize.Key(name))
}

// Keys returns every record key in ascending order.
func (s *Snapshot) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Each calls fn for every record in key order.
func (s *Snapshot) Each(fn func(*Record)) {
	for _, k := range s.keys {
		fn(s.records[k])
	}
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.keys) }

// Translations returns a copy of the translation table.
func (s *Snapshot) Translations() Translations {
	out := make(Translations, len(s.translations))
	for k, v := range s.translations {
		out[k] = v
	}
	return out
}

// Translate returns the translation for an already normalized key.
func (s *Snapshot) Translate(key string) (string, bool) {
	return s.translations.Lookup(key)
}

// OrderedHeaders returns the canonical metric column order.
func (s *Snapshot) OrderedHeaders() []string {
	return append([]string(nil), s.headers...)
}

// YearTotal returns the accumulated grand total of year y.
func (s *Snapshot) YearTotal(y Year) float64 { return s.totals[y] }

// YearTotals returns a copy of all year totals.
func (s *Snapshot) YearTotals() map[Year]float64 {
	out := make(map[Year]float64, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the whole snapshot.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	headers := s.headers
	if headers == nil {
		headers = []string{}
	}
	return json.Marshal(struct {
		Records        map[string]*Record `json:"records"`
		Translations   Translations       `json:"translations"`
		OrderedHeaders []string           `json:"orderedHeaders"`
		YearTotals     map[Year]float64   `json:"yearTotals"`
	}{
		Records:        s.records,
		Translations:   s.translations,
		OrderedHeaders: headers,
		YearTotals:     s.totals,
	})
}
