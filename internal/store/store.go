// SPDX-License-Identifier: MIT

// Package store holds the per-country record store that every ingestor
// writes into. A Store has a single writer while a load runs; Freeze turns
// it into an immutable Snapshot shared with readers.
package store

import (
	"regexp"
	"sort"

	"github.com/ManuGH/incidentmap/internal/normalize"
)

// CountryColumn matches header names that identify the country column.
var CountryColumn = regexp.MustCompile(`(?i)country|ulke|name|ülke`)

// Translations maps normalized English country names to Turkish display
// names.
type Translations map[string]string

// Lookup returns the translation stored for an already normalized key.
func (t Translations) Lookup(key string) (string, bool) {
	v, ok := t[key]
	return v, ok
}

// Store accumulates records during one load. It is not safe for concurrent
// use.
type Store struct {
	records      map[string]*Record
	translations Translations
	headers      []string
	totals       map[Year]float64
	frozen       *Snapshot
}

// New returns an empty store with every year total initialised to zero.
func New() *Store {
	totals := make(map[Year]float64, len(Years))
	for _, y := range Years {
		totals[y] = 0
	}
	return &Store{
		records:      make(map[string]*Record),
		translations: make(Translations),
		totals:       totals,
	}
}

func (s *Store) mustWritable() {
	if s.frozen != nil {
		panic("store: write after Freeze")
	}
}

// Upsert locates or creates the record for name and passes it to fn.
// A new record starts with only its display name set; the first name seen
// for a key wins. Names with an empty key are ignored and Upsert reports
// false.
func (s *Store) Upsert(name string, fn func(*Record)) bool {
	s.mustWritable()
	key := normalize.Key(name)
	if key == "" {
		return false
	}
	r, ok := s.records[key]
	if !ok {
		r = &Record{Key: key, DisplayName: normalize.Trim(name)}
		s.records[key] = r
	}
	if fn != nil {
		fn(r)
	}
	return true
}

// Get returns the record stored under an already normalized key.
func (s *Store) Get(key string) (*Record, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// SetTranslation records english → turkish. Empty keys and empty
// translations are not stored.
func (s *Store) SetTranslation(english, turkish string) bool {
	s.mustWritable()
	key := normalize.Key(english)
	tr := normalize.Trim(turkish)
	if key == "" || tr == "" {
		return false
	}
	s.translations[key] = tr
	return true
}

// Translations returns the live translation table of the store.
func (s *Store) Translations() Translations { return s.translations }

// CaptureHeaders stores the canonical metric column order from a yearly
// header row. Only the first call that yields at least one header has an
// effect; later header rows never change the order.
func (s *Store) CaptureHeaders(header []string) bool {
	s.mustWritable()
	if len(s.headers) > 0 {
		return false
	}
	var out []string
	for _, h := range header {
		if h == "" || CountryColumn.MatchString(h) {
			continue
		}
		out = append(out, h)
	}
	s.headers = out
	return len(out) > 0
}

// OrderedHeaders returns the captured column order.
func (s *Store) OrderedHeaders() []string {
	return append([]string(nil), s.headers...)
}

// AddYearTotal accumulates v into the grand total of year y.
func (s *Store) AddYearTotal(y Year, v float64) {
	s.mustWritable()
	s.totals[y] += v
}

// YearTotal returns the accumulated grand total of year y.
func (s *Store) YearTotal(y Year) float64 { return s.totals[y] }

// Freeze ends the write phase and returns the read-only snapshot. Calling
// Freeze again returns the same snapshot; any write afterwards panics.
func (s *Store) Freeze() *Snapshot {
	if s.frozen != nil {
		return s.frozen
	}
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.frozen = &Snapshot{
		records:      s.records,
		keys:         keys,
		translations: s.translations,
		headers:      s.headers,
		totals:       s.totals,
	}
	return s.frozen
}
