package caption

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts is the ordered list of calendar formats accepted for explicit
// date markers, after ordinal suffixes are stripped and a missing year has
// been defaulted.
var dateLayouts = []string{
	"2 January 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"2 Jan, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2/1/2006",
	"2-1-2006",
	"2006-1-2",
}

// timeLayouts is the ordered list of clock formats accepted for time
// markers. Candidates are upper-cased first so "6 pm" and "6 PM" parse the
// same way.
var timeLayouts = []string{
	"3:04 PM",
	"15:04",
	"3:04",
	"3 PM",
	"3.04 PM",
	"15.04",
	"3.04",
}

// parseDateString resolves an explicit date string like "16th February 2024"
// or "2nd March". A missing year defaults to the year of now.
func parseDateString(raw string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if !fourDigitYear.MatchString(s) {
		s = fmt.Sprintf("%s %d", s, now.Year())
	}
	s = ordinalPattern.ReplaceAllString(s, "$1")

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// extractDateFromText scans free text for "16th February, 2024" or
// "2nd March" style dates.
func extractDateFromText(text string, now time.Time) (time.Time, bool) {
	match := freeDatePattern.FindStringSubmatch(text)
	if match == nil {
		return time.Time{}, false
	}
	return parseDateString(match[1], now)
}

// extractTimeFromText scans free text for "10:30 AM", "14:00", or "6 PM"
// style times.
func extractTimeFromText(text string) string {
	for _, pattern := range freeTimePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

// combineDateTime merges a resolved date with a time string, defaulting to
// defaultHour when the time fails every clock format.
func combineDateTime(date time.Time, timeStr string, defaultHour int) time.Time {
	normalized := strings.ToUpper(strings.TrimSpace(timeStr))
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, normalized); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), defaultHour, 0, 0, 0, time.UTC)
}
