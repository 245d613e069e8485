package extract

import (
	"regexp"
	"strings"
)

var (
	numericToken = regexp.MustCompile(`\b[0-9OIl]{2,}(?:[./][0-9OIl]{2,})?\b`)
	hwsRun       = regexp.MustCompile(`[ \t]+`)
	lineEdges    = regexp.MustCompile(`[ \t]*\n[ \t]*`)
)

// Normalize cleans raw extracted text for detection and parsing: it unifies
// exotic whitespace and dashes, collapses horizontal whitespace runs and
// repairs OCR letter/digit confusions inside numeric-looking tokens.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.NewReplacer(
		" ", " ",
		"", " ",
		"–", "-",
		"—", "-",
	).Replace(raw)
	s = hwsRun.ReplaceAllString(s, " ")
	s = lineEdges.ReplaceAllString(s, "\n")
	s = numericToken.ReplaceAllStringFunc(s, func(token string) string {
		token = strings.ReplaceAll(token, "O", "0")
		token = strings.ReplaceAll(token, "o", "0")
		token = strings.ReplaceAll(token, "I", "1")
		token = strings.ReplaceAll(token, "l", "1")
		return token
	})
	return strings.TrimSpace(s)
}

// PageOne returns the text before the first form-feed: the bank profile
// picker only looks at the statement's first page.
func PageOne(raw string) string {
	page, _, _ := strings.Cut(raw, "\f")
	return page
}
