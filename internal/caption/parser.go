package caption

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// PlaceholderTitle is used when every title rule fails.
const PlaceholderTitle = "Event"

// descriptionLimit bounds the raw-caption fallback description.
const descriptionLimit = 200

// Candidate is the structured result of parsing one caption. OccursAt is
// zero when no date could be extracted; such candidates never reach the
// dedup matcher.
type Candidate struct {
	Title       string
	OccursAt    time.Time
	Location    string
	Description string
}

// HasSchedule reports whether a date was extracted from the caption.
func (c Candidate) HasSchedule() bool {
	return !c.OccursAt.IsZero()
}

// Parser turns captions into candidates. The zero value is not usable;
// construct with NewParser.
type Parser struct {
	// Now supplies the reference time used to default a missing year and
	// is injectable for deterministic tests.
	Now func() time.Time
	// DefaultStartHour is assumed when a caption has a date but no time.
	DefaultStartHour int
}

// NewParser returns a parser with production defaults.
func NewParser() *Parser {
	return &Parser{Now: time.Now, DefaultStartHour: 10}
}

// Parse extracts a structured candidate from one caption. It never fails:
// on total extraction failure the candidate carries the placeholder title,
// no date, and a truncated copy of the caption as description.
func (p *Parser) Parse(text string) Candidate {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	defaultHour := p.DefaultStartHour
	if defaultHour <= 0 || defaultHour > 23 {
		defaultHour = 10
	}

	if strings.TrimSpace(text) == "" {
		return Candidate{Title: PlaceholderTitle}
	}

	lines := splitLines(text)
	if len(lines) == 0 {
		return Candidate{Title: PlaceholderTitle}
	}

	// Lines eligible as generic title candidates: non-boilerplate, long
	// enough to be a name, stripped of leading decoration.
	var candidates []string
	for _, line := range lines {
		if greetingPattern.MatchString(line) || fillerPattern.MatchString(line) {
			continue
		}
		if utf8.RuneCountInString(line) <= 5 {
			continue
		}
		if cleaned := stripDecor(line); cleaned != "" {
			candidates = append(candidates, cleaned)
		}
	}
	if len(candidates) == 0 {
		for _, line := range lines {
			if cleaned := stripDecor(line); cleaned != "" {
				candidates = append(candidates, cleaned)
			}
		}
	}

	// Locate the first line carrying an explicit date marker.
	var eventDate time.Time
	dateLineIdx := -1
	for i, line := range lines {
		for _, pattern := range datePatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			if parsed, ok := parseDateString(match[1], now); ok {
				eventDate = parsed
				dateLineIdx = i
			}
			break
		}
		if dateLineIdx >= 0 {
			break
		}
	}

	title, titleLineIdx := p.resolveTitle(lines, candidates, dateLineIdx)

	// Gather time, venue, and description from the remaining lines. A line
	// is consumed by at most one of time or venue; everything else flows
	// into the description, except the line already claimed as the
	// title-above-date.
	var timeStr string
	var location string
	var descriptionParts []string
	for i, line := range lines {
		if i == titleLineIdx {
			continue
		}

		if timeStr == "" {
			if matched := matchFirst(timePatterns, line); matched != "" {
				timeStr = strings.TrimSpace(timeRangePattern.Split(matched, 2)[0])
				continue
			}
		}

		if location == "" {
			if matched := matchFirst(venuePatterns, line); matched != "" {
				location = matched
				continue
			}
		}

		descriptionParts = append(descriptionParts, line)
	}

	if dateLineIdx < 0 {
		if parsed, ok := extractDateFromText(text, now); ok {
			eventDate = parsed
		}
	}
	if timeStr == "" {
		timeStr = extractTimeFromText(text)
	}

	var occursAt time.Time
	if !eventDate.IsZero() {
		if timeStr != "" {
			occursAt = combineDateTime(eventDate, timeStr, defaultHour)
		} else {
			occursAt = time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(),
				defaultHour, 0, 0, 0, time.UTC)
		}
	}

	description := strings.Join(descriptionParts, " ")
	if description == "" {
		description = truncate(text, descriptionLimit)
	}

	return Candidate{
		Title:       title,
		OccursAt:    occursAt,
		Location:    location,
		Description: description,
	}
}

// resolveTitle applies the title rule cascade. It returns the resolved
// title and, when rule (a) claimed the line above the date marker, the
// index of that line so it can be excluded from the description.
func (p *Parser) resolveTitle(lines, candidates []string, dateLineIdx int) (string, int) {
	// (a) The line immediately above the date marker.
	if dateLineIdx > 0 {
		raw := lines[dateLineIdx-1]
		cleaned := stripDecor(raw)
		if utf8.RuneCountInString(cleaned) > 3 &&
			!greetingPattern.MatchString(raw) && !fillerPattern.MatchString(raw) {
			return normalizeTitle(cleaned), dateLineIdx - 1
		}
	}

	// (b) Announcement phrasings ("X presents Y", "Join us for Y", ...).
	for _, line := range lines {
		for _, pattern := range announcementPatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			title := strings.TrimSpace(match[1])
			title = titleSuffixPattern.ReplaceAllString(title, " $1")
			return normalizeTitle(title), -1
		}
	}

	// (c) The first plausible candidate line under the length ceiling.
	for _, candidate := range candidates {
		if n := utf8.RuneCountInString(candidate); n >= 3 && n < 60 {
			return normalizeTitle(candidate), -1
		}
	}

	// (d) The first non-greeting line of any length.
	for _, line := range lines {
		cleaned := stripDecor(line)
		if utf8.RuneCountInString(cleaned) > 3 && !greetingPattern.MatchString(line) {
			return normalizeTitle(cleaned), -1
		}
	}

	// (e) Give up.
	return PlaceholderTitle, -1
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func stripDecor(line string) string {
	return strings.TrimSpace(leadingDecorPattern.ReplaceAllString(line, ""))
}

func matchFirst(patterns []*regexp.Regexp, line string) string {
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(line); match != nil {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
