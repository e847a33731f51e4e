// SPDX-License-Identifier: MIT

// Package resolve bridges the English names of the map features and the
// Turkish keys of the statistics.
package resolve

import (
	"github.com/ManuGH/incidentmap/internal/normalize"
	"github.com/ManuGH/incidentmap/internal/store"
)

// Records is the read side of a store or snapshot.
type Records interface {
	Get(key string) (*store.Record, bool)
}

// Key returns the record key an English feature name resolves to. Without a
// dictionary entry the English name is used as if it were the Turkish one.
func Key(english string, tr store.Translations) string {
	turkish, ok := tr.Lookup(normalize.Key(english))
	if !ok {
		turkish = english
	}
	return normalize.Key(turkish)
}

// Resolve looks up the record behind an English feature name. A missing
// translation or record is reported as ok == false, never as an error.
func Resolve(english string, tr store.Translations, records Records) (*store.Record, bool) {
	key := Key(english, tr)
	if key == "" {
		return nil, false
	}
	return records.Get(key)
}

// Resolver binds a translation table to a record source.
type Resolver struct {
	tr      store.Translations
	records Records
}

// New returns a resolver over a frozen snapshot.
func New(snap *store.Snapshot) *Resolver {
	return &Resolver{tr: snap.Translations(), records: snap}
}

// Resolve looks up an English feature name.
func (r *Resolver) Resolve(english string) (*store.Record, bool) {
	return Resolve(english, r.tr, r.records)
}

// Find accepts either an English feature name or a Turkish record name.
// The direct key wins so Turkish names never go through the dictionary.
func (r *Resolver) Find(name string) (*store.Record, bool) {
	if rec, ok := r.records.Get(normalize.Key(name)); ok {
		return rec, true
	}
	return r.Resolve(name)
}

// Key returns the record key of an English feature name.
func (r *Resolver) Key(english string) string {
	return Key(english, r.tr)
}
