package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// stripNonWords matches everything that is not a letter, digit or underscore
	stripNonWords = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	// abbreviationReduction drops punctuation but keeps whitespace
	abbreviationReduction = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
)

// Scrub produces the lookup key form of a string: lower case, trimmed, with
// every non-word character removed. Spaces go too, so "Ulaire Enquea" and
// "ulaire-enquea" collide on purpose.
func Scrub(input string) string {
	return ScrubKeep(input, true)
}

// ScrubKeep is Scrub with symbol stripping optional. Input is composed to NFC
// first so a decomposed "ë" keeps its letter instead of losing the mark.
func ScrubKeep(input string, stripSymbols bool) string {
	output := norm.NFC.String(strings.TrimSpace(strings.ToLower(input)))
	if stripSymbols {
		output = stripNonWords.ReplaceAllString(output, "")
	}
	return output
}

// Abbreviate turns "Darth Vader, Dark Lord of the Sith" into "dvdlots".
// Hyphens count as spaces, so "Obi-wan Kenobi" becomes "owk" rather than "ok".
// Words that do not start with a letter contribute nothing.
func Abbreviate(input string) string {
	input = norm.NFC.String(strings.TrimSpace(strings.ToLower(input)))
	input = strings.ReplaceAll(input, "-", " ")
	input = abbreviationReduction.ReplaceAllString(input, "")

	var b strings.Builder
	for _, word := range strings.Fields(input) {
		first := []rune(word)[0]
		if unicode.IsLetter(first) {
			b.WriteRune(first)
		}
	}
	return b.String()
}
