// SPDX-License-Identifier: MIT

package analytics

import "github.com/ManuGH/incidentmap/internal/store"

// Missing marks a year without a value in the detail table.
const Missing = "-"

// TableRow is one metric line of a country's detail table. A span of zero
// means the cell is covered by a row above it.
type TableRow struct {
	Feature     string                `json:"feature"`
	Main        string                `json:"main"`
	Sub         string                `json:"sub"`
	Values      map[store.Year]string `json:"values"`
	MainRowSpan int                   `json:"mainRowSpan"`
	SubRowSpan  int                   `json:"subRowSpan"`
}

// DetailTable lays out rec along the canonical header order. Rows without a
// value in any year are dropped; consecutive rows of the same category are
// merged through row spans.
func DetailTable(rec *store.Record, headers []string) []TableRow {
	rows := []TableRow{}
	if rec == nil || len(rec.Events) == 0 {
		return rows
	}

	for _, h := range headers {
		vals := make(map[store.Year]string, len(store.Years))
		empty := true
		for _, y := range store.Years {
			v := Missing
			if c, ok := rec.YearEvents(y).Get(h); ok && c.Truthy() {
				v = c.String()
				empty = false
			}
			vals[y] = v
		}
		if empty {
			continue
		}
		cat := DetailCategories[h]
		rows = append(rows, TableRow{Feature: h, Main: cat.Main, Sub: cat.Sub, Values: vals})
	}

	for i := range rows {
		rows[i].MainRowSpan = span(rows, i, func(r TableRow) string { return r.Main })
		rows[i].SubRowSpan = span(rows, i, func(r TableRow) string { return r.Sub })
	}
	return rows
}

// span returns how many rows starting at i share the group value of row i,
// or 0 when row i has no group or continues the group of row i-1.
func span(rows []TableRow, i int, group func(TableRow) string) int {
	g := group(rows[i])
	if g == "" || (i > 0 && group(rows[i-1]) == g) {
		return 0
	}
	n := 1
	for j := i + 1; j < len(rows) && group(rows[j]) == g; j++ {
		n++
	}
	return n
}
