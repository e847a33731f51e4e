// SPDX-License-Identifier: MIT

package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ManuGH/incidentmap/internal/sheet"
)

// Year is one of the four reporting years.
type Year string

const (
	Year2021 Year = "2021"
	Year2022 Year = "2022"
	Year2023 Year = "2023"
	Year2024 Year = "2024"
)

// Years lists the supported years in ascending order.
var Years = []Year{Year2021, Year2022, Year2023, Year2024}

// ParseYear validates s as a supported year.
func ParseYear(s string) (Year, bool) {
	for _, y := range Years {
		if string(y) == s {
			return y, true
		}
	}
	return "", false
}

// YearRow is one country's metric row for a single year: header → cell, in
// column order.
type YearRow struct {
	headers []string
	cells   map[string]sheet.Cell
}

// NewYearRow returns an empty row.
func NewYearRow() *YearRow {
	return &YearRow{cells: make(map[string]sheet.Cell)}
}

// Set stores c under header. A repeated header keeps its original position.
func (r *YearRow) Set(header string, c sheet.Cell) {
	if r.cells == nil {
		r.cells = make(map[string]sheet.Cell)
	}
	if _, ok := r.cells[header]; !ok {
		r.headers = append(r.headers, header)
	}
	r.cells[header] = c
}

// Get returns the cell stored under header.
func (r *YearRow) Get(header string) (sheet.Cell, bool) {
	if r == nil {
		return sheet.Cell{}, false
	}
	c, ok := r.cells[header]
	return c, ok
}

// Headers returns the headers in insertion order.
func (r *YearRow) Headers() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.headers...)
}

// Last returns the cell of the last inserted header.
func (r *YearRow) Last() (sheet.Cell, bool) {
	if r == nil || len(r.headers) == 0 {
		return sheet.Cell{}, false
	}
	return r.cells[r.headers[len(r.headers)-1]], true
}

// Len returns the number of headers.
func (r *YearRow) Len() int {
	if r == nil {
		return 0
	}
	return len(r.headers)
}

// Equal reports whether both rows hold the same headers in the same order
// with the same cells.
func (r *YearRow) Equal(o *YearRow) bool {
	if r.Len() != o.Len() {
		return false
	}
	for i, h := range r.headers {
		if o.headers[i] != h || o.cells[h] != r.cells[h] {
			return false
		}
	}
	return true
}

// MarshalJSON renders the row as a JSON object preserving column order.
func (r *YearRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, h := range r.headers {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(h)
		if err != nil {
			return nil, err
		}
		v, err := r.cells[h].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", h, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
