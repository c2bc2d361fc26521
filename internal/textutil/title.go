package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	// wideFirst and wideLast bound the fullwidth forms of ASCII 0x21-0x7E.
	wideFirst = 0xFF01
	wideLast  = 0xFF5E
	// wideOffset is the distance between a fullwidth form and its ASCII equivalent.
	wideOffset = wideFirst - 0x21
)

// narrowWide maps fullwidth punctuation and letters to standard width.
var narrowWide = runes.Map(NarrowRune)

// NormalizeTitle removes double-quote characters, collapses whitespace runs to
// a single space and trims the result.
func NormalizeTitle(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(raw, `"`, "")), " ")
}

// NarrowRune returns the standard-width equivalent of r when r lies in the
// fullwidth block, and r unchanged otherwise.
func NarrowRune(r rune) rune {
	if r >= wideFirst && r <= wideLast {
		return r - wideOffset
	}
	return r
}

// Narrow rewrites every fullwidth character in s to standard width.
func Narrow(s string) string {
	if !HasWide(s) {
		return s
	}
	out, _, err := transform.String(narrowWide, s)
	if err != nil {
		// runes.Map never fails on valid input; fall back to a manual pass.
		return strings.Map(NarrowRune, s)
	}
	return out
}

// HasWide reports whether s contains at least one fullwidth character.
func HasWide(s string) bool {
	for _, r := range s {
		if r >= wideFirst && r <= wideLast {
			return true
		}
	}
	return false
}

// Fold returns a case-folded form of s suitable for case-insensitive matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// PathSafe replaces path separators so a title can be compared with a single
// filename component.
func PathSafe(title string) string {
	return strings.ReplaceAll(title, "/", "_")
}
