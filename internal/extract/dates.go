// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"time"
)

// Date regex patterns, tried in order of specificity.
var (
	// isoDateRe matches 2026-01-31.
	isoDateRe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	// monthDateRe matches "January 31, 2026" and "January 2026".
	monthDateRe = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(?:(\d{1,2}),\s+)?(\d{4})\b`)

	// yearRe matches a bare plausible year.
	yearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

var monthIndex = map[string]time.Month{
	"January": time.January, "February": time.February, "March": time.March,
	"April": time.April, "May": time.May, "June": time.June,
	"July": time.July, "August": time.August, "September": time.September,
	"October": time.October, "November": time.November, "December": time.December,
}

// ExtractDate returns the best-effort date mentioned in text, preferring
// full ISO dates, then month-name dates, then a bare year. The zero time
// means no date was found.
func ExtractDate(text string) time.Time {
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		}
	}

	if m := monthDateRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[3])
		day := 1
		if m[2] != "" {
			day, _ = strconv.Atoi(m[2])
		}
		if day >= 1 && day <= 31 {
			return time.Date(year, monthIndex[m[1]], day, 0, 0, 0, 0, time.UTC)
		}
	}

	if m := yearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	return time.Time{}
}
