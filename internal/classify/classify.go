// Package classify assigns each event exactly one topical category using
// ordered keyword-family matching.
//
// Categories are modeled as an ordered list of (name, pattern set) pairs
// rather than a map so the tie-break order is an explicit contract: a text
// matching keywords from two families is classified under whichever family
// is declared first. There is no scoring or ranking; assignment is
// reproducible and auditable by construction.
package classify

import (
	"regexp"
	"strings"
)

// Other is the fallback category when no keyword family matches.
const Other = "Other"

// Family is a named group of keyword patterns.
type Family struct {
	Name     string
	Keywords []string

	patterns []*regexp.Regexp
}

// families is the declared match order. Order is load-bearing: Technical
// outranks Career, so "hackathon internship" classifies as Technical.
var families = compile([]Family{
	{
		Name: "Technical",
		Keywords: []string{
			"hackathon", "workshop", "coding", "tech", "developer",
			"programming", "algorithm", "data science", "ai", "ml",
		},
	},
	{
		Name: "Cultural",
		Keywords: []string{
			"concert", "music", "dance", "drama", "theatre", "fest",
			"cultural", "band", "choir", "art", "creative",
		},
	},
	{
		Name: "Sports",
		Keywords: []string{
			"tournament", "match", "game", "league", "cricket", "football",
			"basketball", "volleyball", "athletics", "race", "sport",
		},
	},
	{
		Name: "Career",
		Keywords: []string{
			"career", "internship", "job", "placement", "seminar",
			"technical talk", "tech talk", "recruitment", "dpi", "resume",
		},
	},
	{
		Name: "Social",
		Keywords: []string{
			"social", "networking", "meetup", "mixer", "party",
			"get-together", "gathering", "alumni",
		},
	},
})

func compile(list []Family) []Family {
	for i := range list {
		list[i].patterns = make([]*regexp.Regexp, 0, len(list[i].Keywords))
		for _, keyword := range list[i].Keywords {
			pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
			list[i].patterns = append(list[i].patterns, pattern)
		}
	}
	return list
}

// Families returns the ordered category families. Callers must not mutate
// the returned slice.
func Families() []Family {
	return families
}

// Categories returns every assignable category in declaration order,
// including the Other fallback.
func Categories() []string {
	out := make([]string, 0, len(families)+1)
	for _, family := range families {
		out = append(out, family.Name)
	}
	return append(out, Other)
}

// Known reports whether category is one of the assignable categories.
func Known(category string) bool {
	for _, name := range Categories() {
		if name == category {
			return true
		}
	}
	return false
}

// Classify assigns a category to an event from its title and description.
// The first family with any matching keyword wins; Other is returned when
// nothing matches. Calling it twice on the same inputs always returns the
// same category.
func Classify(title, description string) string {
	text := strings.ToLower(title + "\n" + description)
	for _, family := range families {
		for _, pattern := range family.patterns {
			if pattern.MatchString(text) {
				return family.Name
			}
		}
	}
	return Other
}
