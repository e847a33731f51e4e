// SPDX-License-Identifier: MIT

// Package bundle collects the files of one dataset load, either from a local
// folder or from an encrypted remote bundle, and hands them over in ingest
// order.
package bundle

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/ManuGH/incidentmap/internal/ingest"
)

// ErrNoFiles is returned when a source yields nothing ingestible.
var ErrNoFiles = errors.New("bundle contains no ingestible files")

// File is one payload, decrypted when it was encrypted.
type File struct {
	Source    ingest.Source
	Data      []byte
	Encrypted bool
}

// Bundle is the ordered set of files of one load.
type Bundle struct {
	Files    []File
	Warnings []string
}

// Warn records a non-fatal problem.
func (b *Bundle) Warn(msg string) {
	b.Warnings = append(b.Warnings, msg)
}

// Source yields a bundle. Implementations must not mutate a returned Bundle.
type Source interface {
	// Describe names the source for logs and load history.
	Describe() string
	// Fetch collects every file. A returned error aborts the load.
	Fetch(ctx context.Context) (*Bundle, error)
}

func rank(k ingest.Kind) int {
	switch k {
	case ingest.KindGeoJSON:
		return 0
	case ingest.KindDictionary:
		return 1
	case ingest.KindYearly:
		return 2
	default:
		return 3
	}
}

// SortFiles orders files for a folder load: GeoJSON, dictionary, yearly
// sources, then everything else. Ties are broken by name.
func SortFiles(files []File) {
	slices.SortStableFunc(files, func(a, b File) int {
		if d := rank(a.Source.Kind) - rank(b.Source.Kind); d != 0 {
			return d
		}
		if c := strings.Compare(a.Source.Name, b.Source.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Source.Path, b.Source.Path)
	})
}
