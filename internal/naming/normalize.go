package naming

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// hyphenVariants are dash glyphs that the fetcher's naming template lets
// through from video titles. They all fold to '-'.
var hyphenVariants = map[rune]bool{
	'\u2010': true, // hyphen
	'\u2011': true, // non-breaking hyphen
	'\u2012': true, // figure dash
	'\u2013': true, // en dash
	'\u2014': true, // em dash
	'\u2015': true, // horizontal bar
	'\u2212': true, // minus sign
	'\ufe58': true, // small em dash
	'\ufe63': true, // small hyphen-minus
	'\uff0d': true, // fullwidth hyphen-minus
}

// isInvisible reports whether r is a zero-width or bidi formatting mark.
func isInvisible(r rune) bool {
	switch {
	case r >= '\u200b' && r <= '\u200f': // zero-width space/joiners, LRM, RLM
		return true
	case r >= '\u202a' && r <= '\u202e': // bidi embeddings and overrides
		return true
	case r >= '\u2060' && r <= '\u2064': // word joiner, invisible operators
		return true
	case r == '\ufeff': // byte order mark
		return true
	}
	return false
}

func foldHyphen(r rune) rune {
	if hyphenVariants[r] {
		return '-'
	}
	return r
}

// Normalize folds every dash variant into an ASCII hyphen and strips
// invisible formatting marks. Case and whitespace are left untouched, so
// callers trim captured groups themselves.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// Chains carry internal buffers, so build one per call.
	t := transform.Chain(
		runes.Map(foldHyphen),
		runes.Remove(runes.Predicate(isInvisible)),
	)
	if normalized, _, err := transform.String(t, s); err == nil {
		return normalized
	}
	return s
}
