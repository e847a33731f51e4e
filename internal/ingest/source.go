// SPDX-License-Identifier: MIT

package ingest

import (
	"path"
	"strings"

	"github.com/ManuGH/incidentmap/internal/normalize"
	"github.com/ManuGH/incidentmap/internal/store"
)

// Kind identifies the shape of a bundle file.
type Kind string

const (
	KindUnknown    Kind = ""
	KindGeoJSON    Kind = "geojson"
	KindDictionary Kind = "dictionary"
	KindMetadata   Kind = "metadata"
	KindDetails    Kind = "details"
	KindYearly     Kind = "yearly"
	KindIncidents  Kind = "incidents"
	KindPositives  Kind = "positives"
	KindImage      Kind = "image"
)

// Kinds lists every ingestible kind, in the order sources are loaded.
var Kinds = []Kind{
	KindGeoJSON, KindDictionary, KindYearly, KindMetadata, KindDetails,
	KindIncidents, KindPositives, KindImage,
}

// Source tags one bundle payload with what it is. Year is set for yearly and
// summary sources only.
type Source struct {
	Kind Kind       `json:"kind"`
	Year store.Year `json:"year,omitempty"`
	Name string     `json:"name"`
	Path string     `json:"path,omitempty"`
}

// EncryptedSuffix marks bundle files that have to be decrypted first.
const EncryptedSuffix = ".enc"

// Classify derives the source tag from a file path. The base name decides
// the kind; for images the whole path is kept as slot hint. ok is false for
// files that are not part of a bundle.
func Classify(p string) (Source, bool) {
	p = strings.ReplaceAll(p, "\\", "/")
	name := normalize.NFC(path.Base(p))
	name = strings.TrimSuffix(name, EncryptedSuffix)
	fn := normalize.FileName(name)

	src := Source{Name: name, Path: normalize.NFC(strings.TrimSuffix(p, EncryptedSuffix))}
	switch {
	case strings.HasSuffix(fn, ".geo.json") || strings.HasSuffix(fn, ".geojson"):
		src.Kind = KindGeoJSON
	case fn == "ulke_detaylari.csv":
		src.Kind = KindDetails
	case strings.HasSuffix(fn, ".xlsx"):
		switch {
		case strings.Contains(fn, "sözlük") || strings.Contains(fn, "sozluk"):
			src.Kind = KindDictionary
		case fn == "ulkeler.xlsx":
			src.Kind = KindMetadata
		case strings.Contains(fn, "veriler_"):
			src.Kind = KindYearly
			src.Year = YearlyYear(name)
		case strings.Contains(fn, "özet") && !strings.Contains(fn, "pö"):
			src.Kind = KindIncidents
			src.Year = SummaryYear(name)
		case (strings.Contains(fn, "pö") || strings.Contains(fn, "po")) && strings.Contains(fn, "zet"):
			src.Kind = KindPositives
			src.Year = SummaryYear(name)
		default:
			return src, false
		}
	default:
		switch path.Ext(fn) {
		case ".jpg", ".jpeg", ".png", ".svg":
			src.Kind = KindImage
		default:
			return src, false
		}
	}
	return src, true
}

// YearlyYear resolves the year of a yearly events file from a four digit
// substring, defaulting to 2023.
func YearlyYear(name string) store.Year {
	switch {
	case strings.Contains(name, "2021"):
		return store.Year2021
	case strings.Contains(name, "2022"):
		return store.Year2022
	case strings.Contains(name, "2024"):
		return store.Year2024
	default:
		return store.Year2023
	}
}

// SummaryYear resolves the year of a summary file from a two digit
// substring anywhere in the name, defaulting to 2023. "Pözet2023" resolves
// to 2023 only because none of 21, 22 or 24 occurs in it.
func SummaryYear(name string) store.Year {
	switch {
	case strings.Contains(name, "21"):
		return store.Year2021
	case strings.Contains(name, "22"):
		return store.Year2022
	case strings.Contains(name, "24"):
		return store.Year2024
	default:
		return store.Year2023
	}
}
