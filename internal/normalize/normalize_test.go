package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"trim and lower", "  France ", "france"},
		{"bom", "\uFEFFAlmanya", "almanya"},
		{"nbsp", "\u00a0Fransa\u00a0", "fransa"},
		{"turkish letters", "ŞİLİ ÇÖĞÜ", "şili çöğü"},
		{"dotless i kept", "IĞDIR", "iğdir"},
		{"inner spaces kept", "Bosna  Hersek", "bosna  hersek"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestKeyIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "France", "  ÜLKE ", "İstanbul", "ıi", "\uFEFF Kosova\u3000", "ǅemal",
	}
	for _, in := range inputs {
		once := Key(in)
		assert.Equal(t, once, Key(once), "input %q", in)
	}
}

func TestFileName(t *testing.T) {
	decomposed := "Po\u0308zet21.xlsx"
	assert.Equal(t, "pözet21.xlsx", FileName(decomposed))
	assert.Equal(t, "ülkesözlük.xlsx", FileName("ÜlkeSözlük.xlsx"))
}
