// SPDX-License-Identifier: MIT

// Package ingest merges decoded bundle files into a store. Each source kind
// has its own row schema; rows that do not validate are counted and skipped,
// never fatal.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/incidentmap/internal/log"
	"github.com/ManuGH/incidentmap/internal/sheet"
	"github.com/ManuGH/incidentmap/internal/store"
)

var (
	// ErrUndecodable is returned when a payload cannot be decoded at all.
	ErrUndecodable = errors.New("source cannot be decoded")
	// ErrNotIngestible is returned for kinds that do not write into the store.
	ErrNotIngestible = errors.New("source kind is not ingested into the store")
)

// Result summarises one ingested source.
type Result struct {
	Source  Source `json:"source"`
	Rows    int    `json:"rows"`
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped"`
}

func (r *Result) count(err error, log zerolog.Logger, idx int) bool {
	r.Rows++
	if err != nil {
		r.Skipped++
		log.Debug().Int("row", idx).Err(err).Msg("row skipped")
		return false
	}
	r.Applied++
	return true
}

func logger(ctx context.Context, src Source) zerolog.Logger {
	return xglog.WithComponentFromContext(ctx, "ingest").With().
		Str(xglog.FieldSource, src.Name).
		Str(xglog.FieldKind, string(src.Kind)).
		Logger()
}

// Decode turns raw bytes into a table for the tabular kinds.
func Decode(src Source, data []byte) (*sheet.Table, error) {
	var (
		tbl *sheet.Table
		err error
	)
	switch src.Kind {
	case KindDetails:
		tbl, err = sheet.ReadCSV(src.Name, bytes.NewReader(data))
	case KindDictionary, KindMetadata, KindYearly, KindIncidents, KindPositives:
		tbl, err = sheet.ReadXLSX(src.Name, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%s: %w", src.Kind, ErrNotIngestible)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return tbl, nil
}

// Apply decodes data according to src and merges it into st.
func Apply(ctx context.Context, st *store.Store, src Source, data []byte) (Result, error) {
	if src.Kind == KindImage {
		return Image(ctx, st, src, data), nil
	}
	tbl, err := Decode(src, data)
	if err != nil {
		return Result{Source: src}, err
	}
	return ApplyTable(ctx, st, src, tbl)
}

// ApplyTable merges an already decoded table into st.
func ApplyTable(ctx context.Context, st *store.Store, src Source, tbl *sheet.Table) (Result, error) {
	switch src.Kind {
	case KindDictionary:
		return Dictionary(ctx, st, src, tbl), nil
	case KindMetadata:
		return Metadata(ctx, st, src, tbl), nil
	case KindDetails:
		return Details(ctx, st, src, tbl), nil
	case KindYearly:
		return Yearly(ctx, st, src, tbl), nil
	case KindIncidents, KindPositives:
		return Summary(ctx, st, src, tbl), nil
	default:
		return Result{Source: src}, fmt.Errorf("%s: %w", src.Kind, ErrNotIngestible)
	}
}

// Dictionary fills the translation table.
func Dictionary(ctx context.Context, st *store.Store, src Source, tbl *sheet.Table) Result {
	log := logger(ctx, src)
	res := Result{Source: src}
	for i, r := range tbl.Rows {
		row, err := ParseDictionaryRow(r)
		if err == nil && !st.SetTranslation(row.English, row.Turkish) {
			err = skip("empty key or translation")
		}
		res.count(err, log, i)
	}
	return res
}

// Metadata writes continent and colour value.
func Metadata(ctx context.Context, st *store.Store, src Source, tbl *sheet.Table) Result {
	log := logger(ctx, src)
	res := Result{Source: src}
	for i, r := range tbl.Rows {
		row, err := ParseMetadataRow(r)
		if err == nil {
			err = upsert(st, row.Name, func(rec *store.Record) {
				if row.ColorValue != nil {
					rec.SetColorValue(*row.ColorValue)
				}
				if row.Continent != "" {
					rec.Continent = row.Continent
				}
			})
		}
		res.count(err, log, i)
	}
	return res
}

// Details attaches the whole CSV row to the record named by the first
// country-like column.
func Details(ctx context.Context, st *store.Store, src Source, tbl *sheet.Table) Result {
	log := logger(ctx, src)
	res := Result{Source: src}

	countryCol := ""
	for _, h := range tbl.Header() {
		if store.CountryColumn.MatchString(h) {
			countryCol = h
			break
		}
	}
	for i, fields := range tbl.Records() {
		row, err := ParseDetailsRow(countryCol, fields)
		if err == nil {
			err = upsert(st, row.Name, func(rec *store.Record) {
				rec.Details = row.Fields
			})
		}
		res.count(err, log, i+1)
	}
	return res
}

// Yearly writes one year of metrics per country, captures the canonical
// header order once per store and accumulates the last column into the
// year total.
func Yearly(ctx context.Context, st *store.Store, src Source, tbl *sheet.Table) Result {
	log := logger(ctx, src)
	res := Result{Source: src}
	if len(tbl.Rows) == 0 {
		log.Debug().Msg("yearly source has no header row")
		return res
	}
	year := src.Year
	if year == "" {
		year = YearlyYear(src.Name)
		res.Source.Year = year
	}

	header := tbl.Header()
	if st.CaptureHeaders(header) {
		log.Debug().Strs("headers", st.OrderedHeaders()).Msg("captured column order")
	}

	for i, r := range tbl.Rows[1:] {
		row, err := ParseYearlyRow(header, r)
		if err == nil {
			err = upsert(st, row.Name, func(rec *store.Record) {
				yr := store.NewYearRow()
				for _, v := range row.Values {
					yr.Set(v.Header, v.Cell)
				}
				rec.SetEvents(year, yr)
			})
			if err == nil && row.Total != nil {
				st.AddYearTotal(year, *row.Total)
			}
		}
		res.count(err, log, i+1)
	}
	return res
}

// Summary writes incident or positive example lists.
func Summary(ctx context.Context, st *store.Store, src Source, tbl *sheet.Table) Result {
	log := logger(ctx, src)
	res := Result{Source: src}
	year := src.Year
	if year == "" {
		year = SummaryYear(src.Name)
		res.Source.Year = year
	}
	for i, r := range tbl.Rows {
		row, err := ParseSummaryRow(src.Kind, r)
		if err == nil {
			err = upsert(st, row.Name, func(rec *store.Record) {
				if src.Kind == KindPositives {
					rec.SetPositives(year, row.Items)
				} else {
					rec.SetIncidents(year, row.Items)
				}
			})
		}
		res.count(err, log, i)
	}
	return res
}

func upsert(st *store.Store, name string, fn func(*store.Record)) error {
	if !st.Upsert(name, fn) {
		return skip("empty normalized key")
	}
	return nil
}
