package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const eventColumns = "id, title, occurs_at, location, description, sources, category, created_at, updated_at"

// InsertCandidate records a parsed caption. Exact repeats of an already
// recorded (title, occurs_at, source) triple are ignored; the boolean
// reports whether a new row was written.
func (s *Store) InsertCandidate(ctx context.Context, cand *Candidate) (bool, error) {
	if cand == nil {
		return false, errors.New("candidate is nil")
	}
	now := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO candidates
            (title, occurs_at, location, description, source, batch_id, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cand.Title,
		cand.OccursAt.Format(TimeLayout),
		cand.Location,
		cand.Description,
		cand.Source,
		cand.BatchID,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert candidate: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("candidate rows affected: %w", err)
	}
	if affected > 0 {
		cand.CreatedAt = now
		if id, err := res.LastInsertId(); err == nil {
			cand.ID = id
		}
	}
	return affected > 0, nil
}

// EventsByTitleLocation returns every event sharing the exact title and
// location, ordered by ID. Rows whose stored timestamp fails to parse are
// skipped and counted rather than failing the query.
func (s *Store) EventsByTitleLocation(ctx context.Context, title, location string) ([]*Event, int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+eventColumns+` FROM events WHERE title = ? AND location = ? ORDER BY id`,
		title,
		location,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query events by title/location: %w", err)
	}
	defer rows.Close()

	var events []*Event
	skipped := 0
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			if errors.Is(err, errMalformedTimestamp) {
				skipped++
				continue
			}
			return nil, skipped, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, skipped, fmt.Errorf("iterate events: %w", err)
	}
	return events, skipped, nil
}

// InsertEvent creates a new canonical event. If another event already holds
// the same (title, occurs_at, location) triple the insert is a no-op and
// the existing event is returned with inserted=false, so concurrent
// double-inserts degrade to merges rather than errors.
func (s *Store) InsertEvent(ctx context.Context, event *Event) (*Event, bool, error) {
	if event == nil {
		return nil, false, errors.New("event is nil")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	category := event.Category
	if category == "" {
		category = CategoryOther
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO events
            (title, occurs_at, location, description, sources, category, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Title,
		event.OccursAt.Format(TimeLayout),
		event.Location,
		event.Description,
		strings.Join(event.Sources, SourceSeparator),
		category,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("event rows affected: %w", err)
	}
	if affected == 0 {
		existing, err := s.eventByTriple(ctx, event.Title, event.OccursAt, event.Location)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}
	inserted, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return inserted, true, nil
}

// MergeEvent persists the merged sources and description of an existing
// event. Title, location, and occurs_at are never altered by a merge.
func (s *Store) MergeEvent(ctx context.Context, id int64, sources []string, description string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE events SET sources = ?, description = ?, updated_at = ? WHERE id = ?`,
		strings.Join(sources, SourceSeparator),
		description,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("merge event %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("merge rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("merge event %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetCategory records the classifier's assignment for one event.
func (s *Store) SetCategory(ctx context.Context, id int64, category string) error {
	if strings.TrimSpace(category) == "" {
		category = CategoryOther
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE events SET category = ?, updated_at = ? WHERE id = ?`,
		category,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set category for event %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("category rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set category for event %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetEvent fetches one event by identifier.
func (s *Store) GetEvent(ctx context.Context, id int64) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *Store) eventByTriple(ctx context.Context, title string, occursAt time.Time, location string) (*Event, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+eventColumns+` FROM events WHERE title = ? AND occurs_at = ? AND location = ? LIMIT 1`,
		title,
		occursAt.Format(TimeLayout),
		location,
	)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event (%s, %s): %w", title, occursAt.Format(TimeLayout), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event by triple: %w", err)
	}
	return event, nil
}

// ListEvents returns events matching the filter, ordered by start time.
func (s *Store) ListEvents(ctx context.Context, filter Filter) ([]*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var conditions []string
	var args []any

	if filter.From != nil {
		conditions = append(conditions, "occurs_at >= ?")
		args = append(args, filter.From.Format(TimeLayout))
	}
	if filter.To != nil {
		conditions = append(conditions, "occurs_at <= ?")
		args = append(args, filter.To.Format(TimeLayout))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Keyword != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		like := "%" + filter.Keyword + "%"
		args = append(args, like, like)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY occurs_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			if errors.Is(err, errMalformedTimestamp) {
				continue
			}
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CategoryCounts tallies events per category, ordered by category name.
func (s *Store) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT category, COUNT(1) FROM events GROUP BY category ORDER BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}

// TotalCounts reports catalog size.
func (s *Store) TotalCounts(ctx context.Context) (Totals, error) {
	var totals Totals
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM candidates`).Scan(&totals.Candidates); err != nil {
		return totals, fmt.Errorf("count candidates: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM events`).Scan(&totals.Events); err != nil {
		return totals, fmt.Errorf("count events: %w", err)
	}
	return totals, nil
}

var errMalformedTimestamp = errors.New("malformed stored timestamp")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		event     Event
		occursAt  string
		sources   string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&occursAt,
		&event.Location,
		&event.Description,
		&sources,
		&event.Category,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(TimeLayout, occursAt)
	if err != nil {
		return nil, fmt.Errorf("%w: event %d: %q", errMalformedTimestamp, event.ID, occursAt)
	}
	event.OccursAt = parsed
	event.Sources = splitSources(sources)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		event.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		event.UpdatedAt = ts
	}
	return &event, nil
}
