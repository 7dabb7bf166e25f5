package caption

import "regexp"

// Line-level boilerplate filters. Greeting lines never become titles;
// filler lines are label scaffolding like "Event Details:".
var (
	greetingPattern = regexp.MustCompile(`(?i)^(Greetings|Warm|Hello|Hi|Get ready|Are you ready|Think you|Join us)`)
	fillerPattern   = regexp.MustCompile(`(?i)^(Event\s*Details:?|Details:?|What are you waiting for|Here's what|Save the date)`)

	// leadingDecorPattern strips the decorative emoji runs captions open
	// lines with.
	leadingDecorPattern = regexp.MustCompile(`^[🎉✨🚀💫🌟🔥⚡📅🕒📍💰🏆👥]+`)
)

// Labeled / emoji-prefixed field markers, tried in order per line.
var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:📅\s*)?Date\s*[:：]\s*(.+)$`),
		regexp.MustCompile(`^📅\s*(.+)$`),
	}
	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:🕒|🕚|⏰|🕝|🕓|🕑)\s*Time\s*[:：]\s*(.+)$`),
		regexp.MustCompile(`(?i)^Time\s*[:：]\s*(.+)$`),
		regexp.MustCompile(`^(?:🕒|🕚|⏰|🕝|🕓|🕑)\s*(.+)$`),
	}
	venuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:📍\s*)?Venue\s*[:：]\s*(.+)$`),
		regexp.MustCompile(`^📍\s*(.+)$`),
	}
)

// Announcement phrasings that carry the event name as a trailing noun
// phrase. Evaluated in order; the first match anywhere in a line wins.
var announcementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)presents\s+(.+?)(?:\s+at|\s*!|\s*‼|\s*$)`),
	regexp.MustCompile(`(?i)invite you to\s+(.+?)(?:\s*!|\s*‼|\s*$)`),
	regexp.MustCompile(`(?i)Think you can\s+(.+?)\?`),
	regexp.MustCompile(`(?i)Get ready for\s+(.+?)(?:\s*!|\s*‼|\s*$)`),
	regexp.MustCompile(`(?i)Join us for\s+(.+?)(?:\s*!|\s*‼|\s*$)`),
	regexp.MustCompile(`(?i)presents:\s+(.+?)(?:\s+at|\s*!|\s*‼|\s*$)`),
}

// titleSuffixPattern collapses stray whitespace before a closing category
// word so "Quiz   Challenge" and "Quiz Challenge" dedup to one title.
var titleSuffixPattern = regexp.MustCompile(`(?i)\s+(challenge|competition|workshop|event)$`)

// timeRangePattern splits "6 to 8 PM" / "6-8PM" so only the start survives.
var timeRangePattern = regexp.MustCompile(`(?i)\s+to\s+|\s*-\s*`)

// Free-text fallbacks scanned over the whole caption when no labeled
// marker matched.
var (
	freeDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)(?:,?\s*\d{4})?)\b`)

	freeTimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b([01]?\d|2[0-3])[:.]([0-5]\d)\s*(AM|PM)\b`),
		regexp.MustCompile(`\b([01]?\d|2[0-3])[:.]([0-5]\d)\b`),
		regexp.MustCompile(`(?i)\b(1[0-2]|[1-9])\s*(AM|PM)\b`),
	}
)

var (
	ordinalPattern  = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
	fourDigitYear   = regexp.MustCompile(`\b\d{4}\b`)
)
