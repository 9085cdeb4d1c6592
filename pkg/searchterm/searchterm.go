// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

// Package searchterm canonicalizes free-text catalog search input.
//
// # Usage
//
// The same normalized form is used for the outbound search parameter and
// for the cache key tracking the result, so "Solar  Panél" and "solar panel"
// share one cache entry instead of fetching twice.
package searchterm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// multiSpace collapses runs of whitespace into a single space.
var multiSpace = regexp.MustCompile(`\s{2,}`)

// Normalize converts arbitrary Unicode search input into its canonical form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Strips characters that are neither letters, digits, nor spaces.
// 5. Collapses runs of whitespace and trims the ends.
func Normalize(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Keep letters, digits, and spacing only
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, result)

	// 4. Clean up spacing
	result = multiSpace.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// IsEmpty reports whether the input normalizes to nothing searchable.
func IsEmpty(s string) bool {
	return Normalize(s) == ""
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
