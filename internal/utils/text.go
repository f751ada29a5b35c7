package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	wordPattern     = regexp.MustCompile(`\w+`)
	pathSeparators  = regexp.MustCompile(`[\\/]+`)
	reservedChars   = regexp.MustCompile(`[:*?"<>|]`)
	repeatedSpaces  = regexp.MustCompile(`\s+`)
)

// StripAccents applies compatibility decomposition and drops combining marks,
// so "Gênero" becomes "Genero" and "Nº" becomes "No".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeText returns the canonical key used by categorical lookups:
// trimmed, upper case and accent free.
func NormalizeText(s string) string {
	return strings.TrimSpace(StripAccents(strings.ToUpper(strings.TrimSpace(s))))
}

// NormalizeHeader reduces a column header to lower-case ASCII letters and digits.
func NormalizeHeader(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(StripAccents(s)), "")
}

// HeaderTokens splits a header into its normalized words.
func HeaderTokens(s string) []string {
	parts := nonAlphanumeric.Split(strings.ToLower(StripAccents(s)), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// WordTokens returns the set of word tokens found in an already normalized value.
func WordTokens(s string) map[string]struct{} {
	words := wordPattern.FindAllString(s, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// SanitizeFilename makes s safe to use as part of a file name.
func SanitizeFilename(s string) string {
	s = pathSeparators.ReplaceAllString(s, "-")
	s = reservedChars.ReplaceAllString(s, "")
	return strings.TrimSpace(repeatedSpaces.ReplaceAllString(s, " "))
}
