package catalog

import (
	"strings"
	"time"
)

// TimeLayout is the ISO-8601 combined date-time layout used for occurs_at
// columns. Event times are campus-local and carry no zone.
const TimeLayout = "2006-01-02T15:04:05"

// SourceSeparator joins the distinct source identifiers of an event.
const SourceSeparator = ","

// DescriptionSeparator joins the deduplicated description fragments of an event.
const DescriptionSeparator = "\n---\n"

// CategoryOther is the fallback category for events no keyword family matched.
const CategoryOther = "Other"

// Candidate is one parsed caption tagged with its origin. Candidates are
// recorded verbatim as an audit trail and then folded into events.
type Candidate struct {
	ID          int64
	Title       string
	OccursAt    time.Time
	Location    string
	Description string
	Source      string
	BatchID     string
	CreatedAt   time.Time
}

// Event is the canonical, deduplicated representation of one real-world
// event, aggregating one or more candidates.
type Event struct {
	ID          int64
	Title       string
	OccursAt    time.Time
	Location    string
	Description string
	Sources     []string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SourceList renders the ordered, duplicate-free source identifiers as a
// comma-joined string.
func (e *Event) SourceList() string {
	return strings.Join(e.Sources, SourceSeparator)
}

// Fragments splits the merged description back into its fragments.
func (e *Event) Fragments() []string {
	return SplitFragments(e.Description)
}

// SplitFragments splits a merged description on the fragment separator,
// dropping empty entries.
func SplitFragments(description string) []string {
	parts := strings.Split(description, DescriptionSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinFragments joins description fragments with the fragment separator.
func JoinFragments(fragments []string) string {
	return strings.Join(fragments, DescriptionSeparator)
}

func splitSources(joined string) []string {
	parts := strings.Split(joined, SourceSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Filter narrows an event listing. Zero values mean "no constraint".
type Filter struct {
	From     *time.Time
	To       *time.Time
	Category string
	Keyword  string
}

// CategoryCount pairs a category with the number of events assigned to it.
type CategoryCount struct {
	Category string
	Count    int
}

// Totals summarizes catalog size for the run summary and API.
type Totals struct {
	Candidates int
	Events     int
}
