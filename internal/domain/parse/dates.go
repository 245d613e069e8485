package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts tried when normalizing a free-form date token. Order matters:
// Indian documents overwhelmingly use day-first forms, so those come before
// the US month-first layouts.
var dateLayouts = []string{
	"2006-01-02", "2006/01/02",
	"02-01-2006", "02/01/2006", "02.01.2006",
	"01-02-2006", "01/02/2006",
	"02-01-06", "02/01/06",
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// normalizeDate converts a recognized date token to ISO YYYY-MM-DD. Tokens
// that match no known layout come back unchanged so the caller never loses
// the raw value.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

var ddmmyyyyRE = regexp.MustCompile(`^(\d{2})[-/](\d{2})[-/](\d{4})`)

// normalizeDateDDMMYYYY handles the table-export convention DD-MM-YYYY (or
// DD/MM/YYYY) and returns "" when the token does not match.
func normalizeDateDDMMYYYY(s string) string {
	m := ddmmyyyyRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
}

var textualDateLayouts = []string{"2 Jan 2006", "2 January 2006"}

// normalizeTextualDate parses "12 Mar 2024" style tokens to ISO form.
func normalizeTextualDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range textualDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// monthFromName resolves a full English month name, case-insensitively.
func monthFromName(name string) (time.Month, bool) {
	m, ok := monthsByName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// periodFromMonthYear builds a Period covering the whole calendar month.
func periodFromMonthYear(month time.Month, year int) *Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return &Period{
		Month: int(month),
		Year:  year,
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
		Label: fmt.Sprintf("%s %d", month.String(), year),
	}
}
