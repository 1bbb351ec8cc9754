package chunker

import (
	"unicode"
	"unicode/utf8"
)

// Case-insensitive matching over raw document bytes. Lowercasing the
// whole document is not an option here: case mapping can change a
// rune's encoded length (U+023A grows, U+0130 shrinks), which would
// desynchronize every offset after such a rune. These helpers walk the
// original text rune by rune, so every offset they report is a valid
// offset into it.

// indexFold returns the byte offsets [start, end) of the first
// case-insensitive occurrence of needle in haystack at or after from,
// or (-1, -1) when there is none.
func indexFold(haystack, needle string, from int) (int, int) {
	if needle == "" {
		return -1, -1
	}
	for i := from; i < len(haystack); {
		if n, ok := foldPrefixLen(haystack[i:], needle); ok {
			return i, i + n
		}
		_, size := utf8.DecodeRuneInString(haystack[i:])
		i += size
	}
	return -1, -1
}

// foldPrefixLen reports whether s begins with a case-fold match of
// prefix, and the byte length of the matched region of s. The lengths
// may differ: folded runes do not share encodings.
func foldPrefixLen(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[n:])
		if !foldEq(sr, pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// foldEq reports whether two runes are equal under simple case folding.
func foldEq(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

// containsFold reports whether s contains a case-fold match of substr.
func containsFold(s, substr string) bool {
	start, _ := indexFold(s, substr, 0)
	return start >= 0
}
