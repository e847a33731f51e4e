// SPDX-License-Identifier: MIT

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/incidentmap/internal/resolve"
	"github.com/ManuGH/incidentmap/internal/store"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		score   int
		ok      bool
	}{
		{"substring", "Germany", "erm", 100, true},
		{"case insensitive", "GERMANY", "germ", 100, true},
		{"subsequence", "Germany", "gmy", 30, true},
		{"subsequence with run", "Germany", "grma", 10 + 10 + 15 + 20, true},
		{"typo within distance", "france", "frnace", 30, true},
		{"too far", "france", "xyz", 0, false},
		{"empty text", "", "a", 0, false},
		{"empty pattern", "a", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := Match(tt.text, tt.pattern)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.score, score)
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, Levenshtein("abc", "abc"))
	assert.Equal(t, 3, Levenshtein("", "abc"))
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 1, Levenshtein("türkiye", "turkiye"), "runes, not bytes")
}

func TestSearch(t *testing.T) {
	st := store.New()
	st.Upsert("Almanya", nil)
	st.SetTranslation("Germany", "Almanya")
	r := resolve.New(st.Freeze())

	candidates := []string{"Germany", "Georgia", "France", "Germany"}

	got := Search(" ger ", candidates, r, 0)
	require.Len(t, got, 2)
	assert.Equal(t, Result{Name: "Germany", Key: "almanya", DisplayName: "Almanya", Score: 100, HasData: true}, got[0])
	assert.Equal(t, "Georgia", got[1].Name)
	assert.False(t, got[1].HasData)
	assert.Less(t, got[1].Score, got[0].Score)

	assert.Nil(t, Search("g", candidates, r, 0), "queries shorter than two runes are ignored")
	assert.Len(t, Search("ge", candidates, nil, 1), 1)
}
