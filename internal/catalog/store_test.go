package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"noticeboard/internal/catalog"
	"noticeboard/internal/testsupport"
)

func occursAt(day, hour, minute int) time.Time {
	return time.Date(2024, time.June, day, hour, minute, 0, 0, time.UTC)
}

func TestInsertCandidateIgnoresExactRepeats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	cand := &catalog.Candidate{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
		Source:   "club_a",
		BatchID:  "batch-1",
	}
	created, err := store.InsertCandidate(ctx, cand)
	if err != nil {
		t.Fatalf("InsertCandidate failed: %v", err)
	}
	if !created {
		t.Fatal("first insert should create a row")
	}
	if cand.ID == 0 {
		t.Fatal("expected candidate ID to be assigned")
	}

	repeat := &catalog.Candidate{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
		Source:   "club_a",
		BatchID:  "batch-2",
	}
	created, err = store.InsertCandidate(ctx, repeat)
	if err != nil {
		t.Fatalf("InsertCandidate repeat failed: %v", err)
	}
	if created {
		t.Fatal("repeat of (title, occurs_at, source) should be ignored")
	}

	// Same post text from a different account is a new candidate.
	other := &catalog.Candidate{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
		Source:   "club_b",
	}
	created, err = store.InsertCandidate(ctx, other)
	if err != nil {
		t.Fatalf("InsertCandidate other source failed: %v", err)
	}
	if !created {
		t.Fatal("different source should create a row")
	}
}

func TestEventsByTitleLocationSkipsMalformedTimestamp(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	good, _, err := store.InsertEvent(ctx, &catalog.Event{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
		Sources:  []string{"club_a"},
	})
	if err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}
	bad, _, err := store.InsertEvent(ctx, &catalog.Event{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 30),
		Location: "Lab 2",
		Sources:  []string{"club_b"},
	})
	if err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}
	testsupport.CorruptEventTimestamp(t, store, bad.ID)

	// The corrupted row is dropped and counted; the query never fails.
	events, skipped, err := store.EventsByTitleLocation(ctx, "Hack Night", "Lab 2")
	if err != nil {
		t.Fatalf("EventsByTitleLocation failed: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(events) != 1 || events[0].ID != good.ID {
		t.Fatalf("events = %v, want only event %d", events, good.ID)
	}
}

func TestInsertEventDuplicateTripleReturnsExisting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, created, err := store.InsertEvent(ctx, &catalog.Event{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
		Sources:  []string{"club_a"},
	})
	if err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}
	if !created || first.ID == 0 {
		t.Fatalf("expected creation, got created=%v id=%d", created, first.ID)
	}
	if first.Category != catalog.CategoryOther {
		t.Fatalf("Category = %q, want default %q", first.Category, catalog.CategoryOther)
	}

	second, created, err := store.InsertEvent(ctx, &catalog.Event{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
		Sources:  []string{"club_b"},
	})
	if err != nil {
		t.Fatalf("InsertEvent duplicate failed: %v", err)
	}
	if created {
		t.Fatal("duplicate triple should not create a second event")
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate insert returned event %d, want %d", second.ID, first.ID)
	}
}

func TestMergeEventUpdatesSourcesAndDescription(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	event, _, err := store.InsertEvent(ctx, &catalog.Event{
		Title:       "Hack Night",
		OccursAt:    occursAt(3, 18, 0),
		Location:    "Lab 2",
		Description: "bring laptops",
		Sources:     []string{"club_a"},
	})
	if err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}

	description := catalog.JoinFragments([]string{"bring laptops", "pizza provided"})
	if err := store.MergeEvent(ctx, event.ID, []string{"club_a", "club_b"}, description); err != nil {
		t.Fatalf("MergeEvent failed: %v", err)
	}

	merged, err := store.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got := merged.SourceList(); got != "club_a,club_b" {
		t.Fatalf("SourceList = %q, want %q", got, "club_a,club_b")
	}
	if fragments := merged.Fragments(); len(fragments) != 2 || fragments[1] != "pizza provided" {
		t.Fatalf("Fragments = %v, want two entries ending in %q", fragments, "pizza provided")
	}
}

func TestMergeEventMissingID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.MergeEvent(context.Background(), 9999, []string{"x"}, "")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("MergeEvent error = %v, want ErrNotFound", err)
	}
}

func TestSetCategory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	event, _, err := store.InsertEvent(ctx, &catalog.Event{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
	})
	if err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}

	if err := store.SetCategory(ctx, event.ID, "Technical"); err != nil {
		t.Fatalf("SetCategory failed: %v", err)
	}
	fetched, err := store.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if fetched.Category != "Technical" {
		t.Fatalf("Category = %q, want Technical", fetched.Category)
	}

	// Blank category falls back to Other rather than storing an empty string.
	if err := store.SetCategory(ctx, event.ID, "  "); err != nil {
		t.Fatalf("SetCategory blank failed: %v", err)
	}
	fetched, err = store.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if fetched.Category != catalog.CategoryOther {
		t.Fatalf("Category = %q, want %q", fetched.Category, catalog.CategoryOther)
	}
}

func TestGetEventNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.GetEvent(context.Background(), 42)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("GetEvent error = %v, want ErrNotFound", err)
	}
}

func TestListEventsFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	seed := []*catalog.Event{
		{Title: "Hack Night", OccursAt: occursAt(3, 18, 0), Location: "Lab 2", Description: "overnight hackathon", Category: "Technical"},
		{Title: "Spring Concert", OccursAt: occursAt(5, 19, 0), Location: "Auditorium", Description: "live band", Category: "Cultural"},
		{Title: "Cricket Finals", OccursAt: occursAt(8, 9, 0), Location: "Main Ground", Description: "inter-hostel", Category: "Sports"},
	}
	for _, event := range seed {
		if _, _, err := store.InsertEvent(ctx, event); err != nil {
			t.Fatalf("InsertEvent failed: %v", err)
		}
	}

	all, err := store.ListEvents(ctx, catalog.Filter{})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListEvents returned %d events, want 3", len(all))
	}
	// Ordered by start time.
	if all[0].Title != "Hack Night" || all[2].Title != "Cricket Finals" {
		t.Fatalf("unexpected order: %q ... %q", all[0].Title, all[2].Title)
	}

	from := occursAt(4, 0, 0)
	to := occursAt(6, 0, 0)
	ranged, err := store.ListEvents(ctx, catalog.Filter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListEvents ranged failed: %v", err)
	}
	if len(ranged) != 1 || ranged[0].Title != "Spring Concert" {
		t.Fatalf("ranged = %v, want only Spring Concert", ranged)
	}

	byCategory, err := store.ListEvents(ctx, catalog.Filter{Category: "Sports"})
	if err != nil {
		t.Fatalf("ListEvents by category failed: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Title != "Cricket Finals" {
		t.Fatalf("byCategory = %v, want only Cricket Finals", byCategory)
	}

	byKeyword, err := store.ListEvents(ctx, catalog.Filter{Keyword: "hackathon"})
	if err != nil {
		t.Fatalf("ListEvents by keyword failed: %v", err)
	}
	if len(byKeyword) != 1 || byKeyword[0].Title != "Hack Night" {
		t.Fatalf("byKeyword = %v, want only Hack Night", byKeyword)
	}
}

func TestCategoryAndTotalCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	events := []*catalog.Event{
		{Title: "Hack Night", OccursAt: occursAt(3, 18, 0), Category: "Technical"},
		{Title: "Go Workshop", OccursAt: occursAt(4, 10, 0), Category: "Technical"},
		{Title: "Spring Concert", OccursAt: occursAt(5, 19, 0), Category: "Cultural"},
	}
	for _, event := range events {
		if _, _, err := store.InsertEvent(ctx, event); err != nil {
			t.Fatalf("InsertEvent failed: %v", err)
		}
	}
	if _, err := store.InsertCandidate(ctx, &catalog.Candidate{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Source:   "club_a",
	}); err != nil {
		t.Fatalf("InsertCandidate failed: %v", err)
	}

	counts, err := store.CategoryCounts(ctx)
	if err != nil {
		t.Fatalf("CategoryCounts failed: %v", err)
	}
	want := map[string]int{"Cultural": 1, "Technical": 2}
	if len(counts) != len(want) {
		t.Fatalf("CategoryCounts = %v, want %v", counts, want)
	}
	for _, cc := range counts {
		if want[cc.Category] != cc.Count {
			t.Errorf("count for %s = %d, want %d", cc.Category, cc.Count, want[cc.Category])
		}
	}

	totals, err := store.TotalCounts(ctx)
	if err != nil {
		t.Fatalf("TotalCounts failed: %v", err)
	}
	if totals.Events != 3 || totals.Candidates != 1 {
		t.Fatalf("Totals = %+v, want 3 events and 1 candidate", totals)
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, _, err := store.InsertEvent(ctx, &catalog.Event{
		Title:    "Hack Night",
		OccursAt: occursAt(3, 18, 0),
		Location: "Lab 2",
	}); err != nil {
		t.Fatalf("InsertEvent failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	events, err := reopened.ListEvents(ctx, catalog.Filter{})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Hack Night" {
		t.Fatalf("after reopen events = %v, want the inserted event", events)
	}
}
