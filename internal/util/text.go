package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldText lowercases s and strips diacritic marks, so that server reason
// phrases can be matched regardless of casing or accents ("Token inválido"
// folds to "token invalido").
func FoldText(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		// Transform failures only occur on invalid UTF-8; fall back to the
		// raw input rather than losing the match entirely.
		folded = s
	}
	return strings.ToLower(folded)
}
