// Package filename provides utilities for sanitizing strings into safe filenames.
package filename

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLen caps sanitized names when callers pass 0.
const DefaultMaxLen = 100

// Fallback is returned when nothing survives sanitizing.
const Fallback = "video"

// disallowedRe matches everything outside the allow-set.
var disallowedRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// multiUnderscore collapses runs of underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// Sanitize converts an arbitrary title into a conservative filename stem:
// accents are folded to their base letter, whitespace becomes "_", and
// anything outside [A-Za-z0-9_-] is dropped. The result is capped at maxLen
// bytes (DefaultMaxLen if maxLen <= 0) and is never empty.
func Sanitize(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	s := strings.TrimSpace(name)

	// "Café" -> "Cafe": decompose, then drop the combining marks.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, s)

	s = disallowedRe.ReplaceAllString(s, "")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_-")

	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "_-")
	}

	if s == "" {
		return Fallback
	}
	return s
}
