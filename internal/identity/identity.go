// Package identity derives stable fixture keys from participant names.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Separator joins the two folded names.
	Separator = "-vs-"

	UnknownA = "unknown-a"
	UnknownB = "unknown-b"
)

// MakeID returns the entity key for the pairing a versus b. Accents, case,
// whitespace and punctuation do not contribute to the key; the order of the
// arguments does.
func MakeID(a, b string) string {
	fa := Fold(a)
	if fa == "" {
		fa = UnknownA
	}
	fb := Fold(b)
	if fb == "" {
		fb = UnknownB
	}
	return fa + Separator + fb
}

// Fold strips diacritics and lowercases s, keeping only [a-z0-9].
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		decomposed = s
	}

	var sb strings.Builder
	sb.Grow(len(decomposed))
	for _, r := range strings.ToLower(decomposed) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
