package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeText prepares text for comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	return strings.ToLower(CollapseSpaces(text))
}

// CollapseSpaces trims the text and replaces every run of whitespace
// (spaces, tabs, newlines) with a single space.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to at most n runes. It never splits a multi-byte rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// TitleCase upper-cases the first letter of every space-separated word and
// lower-cases the rest: "  greek   YOGURT " -> "Greek Yogurt".
func TitleCase(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
