// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug builds the URL path segments pages are published under.
// Slugs are lowercase ASCII letters, digits and single hyphens, at most
// MaxLength bytes, matching the pages.slug column.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug the pages table stores.
const MaxLength = 255

var (
	// separators become hyphens: whitespace, underscores, slashes, pipes
	// and dots ("Node.js" reads better as "node-js" than "nodejs").
	separators = regexp.MustCompile(`[\s_/|.]+`)
	// invalid matches anything left that isn't a letter, digit or hyphen.
	invalid = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// foldAccents strips combining marks so "Café" becomes "Cafe". A new
// transformer is built per call; transformers carry state.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Generate creates a URL-friendly slug from the given string. The result
// may be empty when s has no letters or digits.
// Example: "Café Menu / 2026" → "cafe-menu-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(foldAccents(s)))
	result = separators.ReplaceAllString(result, "-")
	result = invalid.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return Truncate(result, MaxLength)
}

// Truncate shortens a slug to at most n bytes, cutting at the last hyphen
// in the second half when there is one so words stay whole.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '-'); i > n/2 {
		cut = cut[:i]
	}
	return strings.Trim(cut, "-")
}

// WithSuffix returns "<base>-<suffix>", shortening base so the result fits
// MaxLength. Used for "-copy" and "-copy-2" style candidates.
func WithSuffix(base, suffix string) string {
	suffix = strings.Trim(suffix, "-")
	if suffix == "" {
		return Truncate(base, MaxLength)
	}
	head := Truncate(base, MaxLength-len(suffix)-1)
	if head == "" {
		return suffix
	}
	return head + "-" + suffix
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	if s == "" || len(s) > MaxLength {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' || strings.Contains(s, "--") {
		return false
	}
	return !invalid.MatchString(s)
}
