// SPDX-License-Identifier: MIT

package ingest

import (
	"errors"
	"fmt"

	"github.com/ManuGH/incidentmap/internal/normalize"
	"github.com/ManuGH/incidentmap/internal/sheet"
)

// ErrRowSkipped marks a row that did not validate against its schema.
var ErrRowSkipped = errors.New("row skipped")

func skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrRowSkipped, reason)
}

// Row is a validated row of one source kind.
type Row interface {
	Kind() Kind
}

// DictionaryRow is [english, turkish, ...] without a header.
type DictionaryRow struct {
	English string
	Turkish string
}

func (DictionaryRow) Kind() Kind { return KindDictionary }

// ParseDictionaryRow needs two truthy leading cells.
func ParseDictionaryRow(r sheet.Row) (DictionaryRow, error) {
	if len(r) < 2 || !r.At(0).Truthy() || !r.At(1).Truthy() {
		return DictionaryRow{}, skip("dictionary row needs english and turkish names")
	}
	return DictionaryRow{English: r.At(0).String(), Turkish: r.At(1).String()}, nil
}

// MetadataRow holds column A (name), F (continent) and G (colour value).
type MetadataRow struct {
	Name       string
	Continent  string
	ColorValue *float64
}

func (MetadataRow) Kind() Kind { return KindMetadata }

const (
	metadataContinentCol = 5
	metadataValueCol     = 6
)

// ParseMetadataRow needs more than six columns and a truthy name.
func ParseMetadataRow(r sheet.Row) (MetadataRow, error) {
	if len(r) <= metadataValueCol {
		return MetadataRow{}, skip("metadata row has no value column")
	}
	if !r.At(0).Truthy() {
		return MetadataRow{}, skip("empty name")
	}
	m := MetadataRow{Name: r.At(0).String()}
	if c := r.At(metadataContinentCol); c.Truthy() {
		m.Continent = normalize.Trim(c.String())
	}
	if v, ok := r.At(metadataValueCol).Float(); ok {
		m.ColorValue = &v
	}
	return m, nil
}

// DetailsRow is one CSV record keyed by header.
type DetailsRow struct {
	Name   string
	Fields map[string]string
}

func (DetailsRow) Kind() Kind { return KindDetails }

// ParseDetailsRow reads the country name from the column countryCol.
func ParseDetailsRow(countryCol string, fields map[string]string) (DetailsRow, error) {
	if countryCol == "" {
		return DetailsRow{}, skip("no country column")
	}
	name := fields[countryCol]
	if name == "" {
		return DetailsRow{}, skip("empty name")
	}
	return DetailsRow{Name: name, Fields: fields}, nil
}

// HeaderCell is one metric value of a yearly row.
type HeaderCell struct {
	Header string
	Cell   sheet.Cell
}

// YearlyRow is one country line of a yearly events sheet. Values hold
// columns B..last in header order; Total is the parsed last column.
type YearlyRow struct {
	Name   string
	Values []HeaderCell
	Total  *float64
}

func (YearlyRow) Kind() Kind { return KindYearly }

// ParseYearlyRow maps a data row onto header. Cells under an empty header
// and empty cells are dropped.
func ParseYearlyRow(header []string, r sheet.Row) (YearlyRow, error) {
	if !r.At(0).Truthy() {
		return YearlyRow{}, skip("empty name")
	}
	y := YearlyRow{Name: r.At(0).String()}
	for i := 1; i < len(header); i++ {
		c := r.At(i)
		if header[i] == "" || c.IsEmpty() {
			continue
		}
		y.Values = append(y.Values, HeaderCell{Header: header[i], Cell: c})
	}
	if last := len(header) - 1; last > 0 {
		if v, ok := r.At(last).Float(); ok {
			y.Total = &v
		}
	}
	return y, nil
}

// SummaryRow is a country followed by short free-text examples.
type SummaryRow struct {
	kind  Kind
	Name  string
	Items []string
}

func (s SummaryRow) Kind() Kind { return s.kind }

const (
	incidentItems = 6
	positiveItems = 2
)

// ParseSummaryRow keeps the truthy cells of columns 1..width in order.
func ParseSummaryRow(kind Kind, r sheet.Row) (SummaryRow, error) {
	width := incidentItems
	if kind == KindPositives {
		width = positiveItems
	}
	if len(r) < 2 {
		return SummaryRow{}, skip("summary row has no entries")
	}
	if !r.At(0).Truthy() {
		return SummaryRow{}, skip("empty name")
	}
	s := SummaryRow{kind: kind, Name: r.At(0).String(), Items: make([]string, 0, width)}
	for i := 1; i <= width && i < len(r); i++ {
		if c := r[i]; c.Truthy() {
			s.Items = append(s.Items, c.String())
		}
	}
	return s, nil
}

// ImageSlot selects which image field of a record is written.
type ImageSlot string

const (
	SlotNone  ImageSlot = ""
	SlotFlag  ImageSlot = "flag"
	SlotPhoto ImageSlot = "photo"
)

// ImageRow is a decoded image asset.
type ImageRow struct {
	Name    string
	Slot    ImageSlot
	DataURL string
}

func (ImageRow) Kind() Kind { return KindImage }
