// SPDX-License-Identifier: MIT

// Package analytics computes the dashboard read models (rankings, story
// totals, analysis bubbles, comparisons and detail tables) from a frozen
// snapshot.
package analytics

import (
	"math"
	"strconv"
	"unicode"

	"github.com/ManuGH/incidentmap/internal/store"
)

// LastValue returns the integer prefix of the last cell of a year row, or 0
// when the row is missing or the cell does not start with a number.
func LastValue(row *store.YearRow) int {
	c, ok := row.Last()
	if !ok {
		return 0
	}
	return intPrefix(c.String())
}

func intPrefix(s string) int {
	i := 0
	rs := []rune(s)
	for i < len(rs) && unicode.IsSpace(rs[i]) {
		i++
	}
	start := i
	if i < len(rs) && (rs[i] == '-' || rs[i] == '+') {
		i++
	}
	digits := i
	for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	n, err := strconv.Atoi(string(rs[start:i]))
	if err != nil {
		return 0
	}
	return n
}

// round mirrors half-up rounding of the dashboard (2.5 → 3, -2.5 → -2).
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
