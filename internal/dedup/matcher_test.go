package dedup_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"noticeboard/internal/catalog"
	"noticeboard/internal/dedup"
	"noticeboard/internal/logging"
	"noticeboard/internal/testsupport"
)

func newMatcher(t *testing.T) (*dedup.Matcher, *catalog.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	return dedup.NewMatcher(store, dedup.DefaultWindow, logging.NewNop()), store
}

func candidateAt(title, location, source string, occursAt time.Time) *catalog.Candidate {
	return &catalog.Candidate{
		Title:       title,
		OccursAt:    occursAt,
		Location:    location,
		Description: "from " + source,
		Source:      source,
	}
}

func TestConsolidateInsertsNewEvent(t *testing.T) {
	matcher, _ := newMatcher(t)
	ctx := context.Background()

	occursAt := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	outcome, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_a", occursAt))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if outcome.Merged {
		t.Fatal("first candidate should insert, not merge")
	}
	if outcome.Event == nil || outcome.Event.ID == 0 {
		t.Fatalf("expected inserted event with ID, got %#v", outcome.Event)
	}
}

func TestConsolidateMergesWithinWindow(t *testing.T) {
	matcher, store := newMatcher(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	first, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_a", base))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	// Exactly at the window boundary still merges.
	outcome, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_b", base.Add(5*time.Minute)))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if !outcome.Merged {
		t.Fatal("candidate 5m away should merge")
	}
	if outcome.Event.ID != first.Event.ID {
		t.Fatalf("merged into event %d, want %d", outcome.Event.ID, first.Event.ID)
	}
	if got := outcome.Event.SourceList(); got != "club_a,club_b" {
		t.Fatalf("SourceList = %q, want %q", got, "club_a,club_b")
	}

	merged, err := store.GetEvent(ctx, first.Event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if fragments := merged.Fragments(); len(fragments) != 2 {
		t.Fatalf("Fragments = %v, want 2 entries", fragments)
	}
	// The stored start time never moves on merge.
	if !merged.OccursAt.Equal(base) {
		t.Fatalf("OccursAt = %v, want %v", merged.OccursAt, base)
	}
}

func TestConsolidateOutsideWindowInserts(t *testing.T) {
	matcher, store := newMatcher(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	if _, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_a", base)); err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	outcome, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_b", base.Add(5*time.Minute+time.Second)))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if outcome.Merged {
		t.Fatal("candidate past the window should insert a second event")
	}

	events, err := store.ListEvents(ctx, catalog.Filter{})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestConsolidateDifferentLocationInserts(t *testing.T) {
	matcher, _ := newMatcher(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	if _, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_a", base)); err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	outcome, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 3", "club_b", base))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if outcome.Merged {
		t.Fatal("different location must not merge")
	}
}

func TestConsolidateDuplicateSourceAndFragment(t *testing.T) {
	matcher, _ := newMatcher(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	cand := candidateAt("Hack Night", "Lab 2", "club_a", base)
	if _, err := matcher.Consolidate(ctx, cand); err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	// Re-posting the identical candidate must not duplicate the source or
	// the description fragment.
	outcome, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_a", base))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if !outcome.Merged {
		t.Fatal("identical candidate should merge")
	}
	if got := outcome.Event.SourceList(); got != "club_a" {
		t.Fatalf("SourceList = %q, want %q", got, "club_a")
	}
	if fragments := outcome.Event.Fragments(); len(fragments) != 1 {
		t.Fatalf("Fragments = %v, want 1 entry", fragments)
	}
}

func TestConsolidatePicksClosestMatch(t *testing.T) {
	matcher, _ := newMatcher(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	if _, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_a", base)); err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	far, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_b", base.Add(10*time.Minute)))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if far.Merged {
		t.Fatal("10m apart should be two events")
	}

	// 9m sits inside the window of the second event only.
	outcome, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_c", base.Add(9*time.Minute)))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if !outcome.Merged || outcome.Event.ID != far.Event.ID {
		t.Fatalf("expected merge into event %d, got merged=%v id=%d", far.Event.ID, outcome.Merged, outcome.Event.ID)
	}
}

func TestConsolidateManyCandidatesOneEvent(t *testing.T) {
	matcher, store := newMatcher(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		cand := candidateAt("Hack Night", "Lab 2", fmt.Sprintf("account_%d", i), base.Add(time.Duration(i)*time.Minute))
		if _, err := matcher.Consolidate(ctx, cand); err != nil {
			t.Fatalf("Consolidate %d failed: %v", i, err)
		}
	}

	events, err := store.ListEvents(ctx, catalog.Filter{})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected all near-simultaneous posts to collapse into 1 event, got %d", len(events))
	}
	if len(events[0].Sources) != 6 {
		t.Fatalf("Sources = %v, want 6 entries", events[0].Sources)
	}
}

func TestConsolidateCountsMalformedRows(t *testing.T) {
	matcher, store := newMatcher(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	first, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_a", base))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	testsupport.CorruptEventTimestamp(t, store, first.Event.ID)

	// A row whose stored timestamp cannot be read is treated as
	// non-matching and counted, never as an error.
	outcome, err := matcher.Consolidate(ctx, candidateAt("Hack Night", "Lab 2", "club_b", base.Add(time.Minute)))
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if outcome.Merged {
		t.Fatal("candidate must not merge into a row with an unreadable timestamp")
	}
	if outcome.SkippedMalformed != 1 {
		t.Fatalf("SkippedMalformed = %d, want 1", outcome.SkippedMalformed)
	}
}

func TestConsolidateOrderIndependent(t *testing.T) {
	// Consolidating A then B yields the same sources and description
	// fragments as B then A.
	base := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)
	a := func() *catalog.Candidate { return candidateAt("Hack Night", "Lab 2", "club_a", base) }
	b := func() *catalog.Candidate { return candidateAt("Hack Night", "Lab 2", "club_b", base.Add(3*time.Minute)) }

	run := func(t *testing.T, first, second *catalog.Candidate) (map[string]bool, map[string]bool) {
		matcher, store := newMatcher(t)
		ctx := context.Background()
		if _, err := matcher.Consolidate(ctx, first); err != nil {
			t.Fatalf("Consolidate failed: %v", err)
		}
		if _, err := matcher.Consolidate(ctx, second); err != nil {
			t.Fatalf("Consolidate failed: %v", err)
		}
		events, err := store.ListEvents(ctx, catalog.Filter{})
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		sources := map[string]bool{}
		for _, source := range events[0].Sources {
			sources[source] = true
		}
		fragments := map[string]bool{}
		for _, fragment := range events[0].Fragments() {
			fragments[fragment] = true
		}
		return sources, fragments
	}

	sourcesAB, fragmentsAB := run(t, a(), b())
	sourcesBA, fragmentsBA := run(t, b(), a())

	if len(sourcesAB) != len(sourcesBA) {
		t.Fatalf("source sets differ: %v vs %v", sourcesAB, sourcesBA)
	}
	for source := range sourcesAB {
		if !sourcesBA[source] {
			t.Fatalf("source %q missing after reversed order", source)
		}
	}
	if len(fragmentsAB) != len(fragmentsBA) {
		t.Fatalf("fragment sets differ: %v vs %v", fragmentsAB, fragmentsBA)
	}
	for fragment := range fragmentsAB {
		if !fragmentsBA[fragment] {
			t.Fatalf("fragment %q missing after reversed order", fragment)
		}
	}
}

func TestConsolidateRejectsDatelessCandidate(t *testing.T) {
	matcher, _ := newMatcher(t)

	_, err := matcher.Consolidate(context.Background(), &catalog.Candidate{Title: "Hack Night"})
	if err == nil {
		t.Fatal("expected error for candidate without a schedule")
	}
}
