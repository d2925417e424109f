package naming

import "strings"

// DefaultSortPrefixes are the leading articles moved to the end of an album
// artist's sort name. They are matched in order, case-insensitively, and
// include their trailing space so "Theo" is not mistaken for "The".
var DefaultSortPrefixes = []string{
	"the ",
	"le ",
	"la ",
	"les ",
	"l'",
	"die ",
	"der ",
	"das ",
	"de ",
	"el ",
	"los ",
	"las ",
}

// SortKey returns name with the first matching prefix moved to the end:
//   - "The Beatles" -> "Beatles, The"
//   - "L'Impératrice" -> "Impératrice, L'"
//   - "Air" -> "Air" (no change)
//
// Prefixes are not reordered; list longer, more specific prefixes first.
func SortKey(name string, prefixes []string) string {
	for _, prefix := range prefixes {
		if prefix == "" || len(name) < len(prefix) {
			continue
		}
		if strings.EqualFold(name[:len(prefix)], prefix) {
			return name[len(prefix):] + ", " + strings.TrimRight(name[:len(prefix)], " ")
		}
	}
	return name
}
