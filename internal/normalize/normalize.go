package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

func isEdge(r rune) bool {
	return unicode.IsSpace(r) ||
		r == '\uFEFF' // Zero Width Non-Breaking Space (BOM)
}

// Trim removes leading and trailing Unicode whitespace and BOM characters.
func Trim(s string) string {
	return strings.TrimFunc(s, isEdge)
}

// Key canonicalizes a free-text country name into the join key shared by all
// sources:
// - trims Unicode whitespace + BOM
// - lowercases with the default (non-locale) case mapping
//
// Key is total and idempotent; the empty string maps to itself.
func Key(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(Trim(s))
}

// FileName returns the NFC form of a file name, lowercased. Bundle files
// created on macOS carry decomposed Turkish letters (o + U+0308) which would
// otherwise never match "özet" or "sözlük".
func FileName(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// NFC returns s in Unicode normalization form C.
func NFC(s string) string {
	return norm.NFC.String(s)
}
