package casedoc

import (
	"strings"
	"time"
	"unicode"
)

// filedDateLayouts are the date formats seen on case detail pages.
var filedDateLayouts = []string{
	time.DateOnly,
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	time.RFC3339,
}

// QueryTerms splits a query into lowercase, deduplicated terms longer than
// two characters.
func QueryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// MatchesQuery reports whether a case's company or description matches the
// query. It favors recall: a case matches when all terms, or at least half
// of them, occur as substrings. A query without usable terms matches every case.
func MatchesQuery(c *Case, query string) bool {
	terms := QueryTerms(query)
	if len(terms) == 0 {
		return true
	}

	haystack := strings.ToLower(c.Company + " " + c.Description)
	hits := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			hits++
		}
	}

	// Half the terms, rounded up.
	return hits >= (len(terms)+1)/2
}

// ParseFiledDate parses a filed date in any of the known layouts.
func ParseFiledDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range filedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InDateRange reports whether dateFiled falls inside r, inclusive at both
// ends. Missing or unparseable dates never match.
func InDateRange(dateFiled string, r DateRange) bool {
	t, ok := ParseFiledDate(dateFiled)
	if !ok {
		return false
	}
	day := truncateDay(t)
	if !r.Start.IsZero() && day.Before(truncateDay(r.Start)) {
		return false
	}
	if !r.End.IsZero() && day.After(truncateDay(r.End)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
