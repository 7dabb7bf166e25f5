// Package dedup consolidates parsed candidates into canonical events.
//
// Two candidates describe the same real-world event when they share an
// exact title and location and start within a small tolerance window.
// Social accounts republish the same event with slightly different stated
// times, so exact-match dedup would under-merge; the window absorbs manual
// transcription drift.
package dedup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"noticeboard/internal/catalog"
	"noticeboard/internal/logging"
)

// DefaultWindow is the tolerance for matching candidate start times
// against existing events.
const DefaultWindow = 5 * time.Minute

// Matcher folds candidates into the catalog one at a time. It is the only
// component that mutates the events table during ingestion; callers must
// apply candidates sequentially.
type Matcher struct {
	store  *catalog.Store
	window time.Duration
	logger *slog.Logger
}

// Outcome describes what one consolidation did.
type Outcome struct {
	Event *catalog.Event
	// Merged is true when the candidate joined an existing event rather
	// than creating one.
	Merged bool
	// SkippedMalformed counts stored rows whose timestamp failed to parse
	// and were treated as non-matching.
	SkippedMalformed int
}

// NewMatcher builds a matcher over the given store. A non-positive window
// falls back to DefaultWindow.
func NewMatcher(store *catalog.Store, window time.Duration, logger *slog.Logger) *Matcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Matcher{
		store:  store,
		window: window,
		logger: logging.NewComponentLogger(logger, "dedup"),
	}
}

// Consolidate folds one candidate into the catalog: it merges into the
// best-matching existing event (same title and location, start within the
// window) or inserts a new event when nothing matches.
//
// When several events fall inside the window the smallest absolute time
// delta wins, with the lowest event ID breaking ties. This keeps the
// choice deterministic regardless of storage scan order.
func (m *Matcher) Consolidate(ctx context.Context, cand *catalog.Candidate) (Outcome, error) {
	if cand == nil {
		return Outcome{}, errors.New("candidate is nil")
	}
	if cand.OccursAt.IsZero() {
		return Outcome{}, errors.New("candidate has no schedule; dateless candidates must be filtered upstream")
	}

	existing, skipped, err := m.store.EventsByTitleLocation(ctx, cand.Title, cand.Location)
	if err != nil {
		return Outcome{SkippedMalformed: skipped}, err
	}

	match := m.selectMatch(existing, cand.OccursAt)
	if match != nil {
		merged, err := m.merge(ctx, match, cand)
		if err != nil {
			return Outcome{SkippedMalformed: skipped}, err
		}
		return Outcome{Event: merged, Merged: true, SkippedMalformed: skipped}, nil
	}

	event := &catalog.Event{
		Title:       cand.Title,
		OccursAt:    cand.OccursAt,
		Location:    cand.Location,
		Description: strings.TrimSpace(cand.Description),
		Sources:     []string{cand.Source},
	}
	inserted, created, err := m.store.InsertEvent(ctx, event)
	if err != nil {
		return Outcome{SkippedMalformed: skipped}, err
	}
	if !created {
		// Another candidate claimed the identical (title, occurs_at,
		// location) triple first; fold into it instead of erroring.
		merged, err := m.merge(ctx, inserted, cand)
		if err != nil {
			return Outcome{SkippedMalformed: skipped}, err
		}
		return Outcome{Event: merged, Merged: true, SkippedMalformed: skipped}, nil
	}

	return Outcome{Event: inserted, SkippedMalformed: skipped}, nil
}

func (m *Matcher) selectMatch(events []*catalog.Event, occursAt time.Time) *catalog.Event {
	var best *catalog.Event
	var bestDelta time.Duration
	for _, event := range events {
		delta := event.OccursAt.Sub(occursAt)
		if delta < 0 {
			delta = -delta
		}
		if delta > m.window {
			continue
		}
		// Strict < keeps the lowest ID on ties: events arrive ordered by ID.
		if best == nil || delta < bestDelta {
			best = event
			bestDelta = delta
		}
	}
	if best != nil && len(events) > 1 {
		m.logger.Debug("candidate matched among multiple events",
			logging.Int("candidates", len(events)),
			logging.Int64("selected_event_id", best.ID),
			logging.Duration("delta", bestDelta),
		)
	}
	return best
}

// merge appends the candidate's source and description fragment to the
// event, both deduplicated; title, location, and occurs_at never change.
func (m *Matcher) merge(ctx context.Context, event *catalog.Event, cand *catalog.Candidate) (*catalog.Event, error) {
	sources := appendUnique(event.Sources, cand.Source)

	fragments := event.Fragments()
	if fragment := strings.TrimSpace(cand.Description); fragment != "" {
		fragments = appendUnique(fragments, fragment)
	}
	description := catalog.JoinFragments(fragments)

	if err := m.store.MergeEvent(ctx, event.ID, sources, description); err != nil {
		return nil, err
	}

	merged := *event
	merged.Sources = sources
	merged.Description = description
	return &merged, nil
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, value)
}
