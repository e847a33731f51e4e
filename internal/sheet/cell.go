// SPDX-License-Identifier: MIT

// Package sheet decodes bundle payloads (xlsx workbooks, CSV text, GeoJSON)
// into plain rows of typed cells.
package sheet

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/ManuGH/incidentmap/internal/normalize"
)

// Kind is the stored type of a cell.
type Kind uint8

const (
	Empty Kind = iota
	String
	Number
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	default:
		return "empty"
	}
}

// Cell is a single decoded value. Workbook cells keep their stored type; CSV
// cells are always strings.
type Cell struct {
	Kind Kind
	Str  string
	Num  float64
}

// Text returns a string cell.
func Text(s string) Cell { return Cell{Kind: String, Str: s} }

// Num returns a numeric cell.
func Num(f float64) Cell { return Cell{Kind: Number, Num: f} }

// IsEmpty reports whether the cell holds no value at all.
func (c Cell) IsEmpty() bool { return c.Kind == Empty }

// Truthy reports whether the cell counts as present: not empty, not an empty
// string, not numeric zero and not NaN.
func (c Cell) Truthy() bool {
	switch c.Kind {
	case String:
		return c.Str != ""
	case Number:
		return c.Num != 0 && !math.IsNaN(c.Num)
	default:
		return false
	}
}

// String renders the cell as display text. Integral numbers render without a
// fraction ("3", not "3.000000").
func (c Cell) String() string {
	switch c.Kind {
	case String:
		return c.Str
	case Number:
		return formatNumber(c.Num)
	default:
		return ""
	}
}

// Float parses the cell as a finite number. String cells are trimmed before
// parsing; anything unparseable or non-finite is absent.
func (c Cell) Float() (float64, bool) {
	var f float64
	switch c.Kind {
	case Number:
		f = c.Num
	case String:
		v, err := strconv.ParseFloat(normalize.Trim(c.Str), 64)
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// MarshalJSON renders numbers as JSON numbers, strings as strings and empty
// cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case String:
		return json.Marshal(c.Str)
	case Number:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return []byte("null"), nil
		}
		return []byte(formatNumber(c.Num)), nil
	default:
		return []byte("null"), nil
	}
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Row is one ordered sequence of cells.
type Row []Cell

// At returns the cell at index i, or an empty cell when the row is shorter.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Table is a decoded tabular payload. The first row may be a header row;
// interpreting it is up to the caller.
type Table struct {
	Name string
	Rows []Row
}

// Header returns the first row rendered as text, or nil for an
// empty table.
func (t *Table) Header() []string {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	out := make([]string, len(t.Rows[0]))
	for i, c := range t.Rows[0] {
		out[i] = c.String()
	}
	return out
}

// fromRaw types a raw workbook value: shared and inline strings stay
// strings, everything else becomes a number when it parses as one.
func fromRaw(raw string, forceString bool) Cell {
	if raw == "" {
		return Cell{}
	}
	if forceString {
		return Text(raw)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return Num(f)
	}
	return Text(raw)
}
