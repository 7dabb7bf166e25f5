package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"noticeboard/internal/caption"
	"noticeboard/internal/catalog"
	"noticeboard/internal/classify"
	"noticeboard/internal/config"
	"noticeboard/internal/dedup"
	"noticeboard/internal/logging"
	"noticeboard/internal/notifications"
)

// Summary reports what one ingest run did.
type Summary struct {
	BatchID            string
	Processed          int
	SkippedShort       int
	SkippedNoDate      int
	SkippedStale       int
	SkippedMalformed   int
	Failed             int
	CandidatesRecorded int
	Inserted           int
	Merged             int
	Classified         int
	Categories         []catalog.CategoryCount
	Duration           time.Duration
}

// Runner executes ingest batches against one catalog.
type Runner struct {
	cfg      *config.Config
	store    *catalog.Store
	parser   *caption.Parser
	matcher  *dedup.Matcher
	notifier notifications.Service
	logger   *slog.Logger
	now      func() time.Time
}

// NewRunner wires the pipeline stages together from configuration.
func NewRunner(cfg *config.Config, store *catalog.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	parser := caption.NewParser()
	if cfg.Ingest.DefaultStartHour > 0 {
		parser.DefaultStartHour = cfg.Ingest.DefaultStartHour
	}
	window := time.Duration(cfg.Ingest.DedupWindowSeconds) * time.Second

	return &Runner{
		cfg:      cfg,
		store:    store,
		parser:   parser,
		matcher:  dedup.NewMatcher(store, window, logger),
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		now:      time.Now,
	}
}

// Run ingests a batch of posts sequentially: parse, consolidate, then one
// classification pass over the whole catalog. Per-post failures are
// absorbed into the summary; only infrastructure failures (lock, store,
// listing) abort the run.
func (r *Runner) Run(ctx context.Context, posts []Post) (*Summary, error) {
	lock := flock.New(filepath.Join(r.cfg.Paths.DataDir, "ingest.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another ingest run holds the lock for %s", r.cfg.Paths.DataDir)
	}
	defer func() { _ = lock.Unlock() }()

	started := r.now()
	summary := &Summary{BatchID: uuid.NewString()}
	r.logger.Info("ingest batch started",
		logging.String("batch_id", summary.BatchID),
		logging.Int("posts", len(posts)),
	)

	for _, post := range posts {
		r.ingestPost(ctx, post, summary)
	}

	if err := r.classifyAll(ctx, summary); err != nil {
		return summary, err
	}

	counts, err := r.store.CategoryCounts(ctx)
	if err != nil {
		return summary, err
	}
	summary.Categories = counts
	summary.Duration = r.now().Sub(started)

	r.logger.Info("ingest batch completed",
		logging.String("batch_id", summary.BatchID),
		logging.Int("processed", summary.Processed),
		logging.Int("inserted", summary.Inserted),
		logging.Int("merged", summary.Merged),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration),
	)

	if err := r.notifier.NotifyIngestCompleted(ctx, summary.Processed, summary.Inserted, summary.Merged, summary.Duration); err != nil {
		r.logger.Warn("ingest notification failed", logging.Error(err))
	}

	return summary, nil
}

func (r *Runner) ingestPost(ctx context.Context, post Post, summary *Summary) {
	text := strings.TrimSpace(post.Caption)
	if len([]rune(text)) < r.cfg.Ingest.MinCaptionLength {
		summary.SkippedShort++
		return
	}

	cand := r.parser.Parse(post.Caption)
	summary.Processed++

	if !cand.HasSchedule() {
		summary.SkippedNoDate++
		r.logger.Debug("caption skipped, no date resolved",
			logging.String("source", post.Source),
			logging.String("title", cand.Title),
		)
		return
	}

	cutoff := r.now().AddDate(0, 0, -r.cfg.Ingest.MaxAgeDays)
	if cand.OccursAt.Before(cutoff) {
		summary.SkippedStale++
		return
	}

	record := &catalog.Candidate{
		Title:       cand.Title,
		OccursAt:    cand.OccursAt,
		Location:    cand.Location,
		Description: cand.Description,
		Source:      post.Source,
		BatchID:     summary.BatchID,
	}
	recorded, err := r.store.InsertCandidate(ctx, record)
	if err != nil {
		summary.Failed++
		r.logger.Warn("candidate not recorded",
			logging.String("source", post.Source),
			logging.String("title", cand.Title),
			logging.Error(err),
		)
		return
	}
	if recorded {
		summary.CandidatesRecorded++
	}

	outcome, err := r.matcher.Consolidate(ctx, record)
	summary.SkippedMalformed += outcome.SkippedMalformed
	if err != nil {
		summary.Failed++
		r.logger.Warn("consolidation failed",
			logging.String("source", post.Source),
			logging.String("title", cand.Title),
			logging.Error(err),
		)
		if notifyErr := r.notifier.NotifyError(ctx, err, "consolidation"); notifyErr != nil {
			r.logger.Warn("error notification failed", logging.Error(notifyErr))
		}
		return
	}

	if outcome.Merged {
		summary.Merged++
		return
	}

	summary.Inserted++
	if !outcome.Event.OccursAt.Before(startOfDay(r.now())) {
		if err := r.notifier.NotifyEventDiscovered(ctx, outcome.Event); err != nil {
			r.logger.Warn("discovery notification failed", logging.Error(err))
		}
	}
}

// ClassifyAll re-runs the classifier over every event. Assignment is
// idempotent, so this is safe to invoke at any time.
func (r *Runner) ClassifyAll(ctx context.Context) (int, []catalog.CategoryCount, error) {
	summary := &Summary{}
	if err := r.classifyAll(ctx, summary); err != nil {
		return 0, nil, err
	}
	counts, err := r.store.CategoryCounts(ctx)
	if err != nil {
		return summary.Classified, nil, err
	}
	return summary.Classified, counts, nil
}

func (r *Runner) classifyAll(ctx context.Context, summary *Summary) error {
	events, err := r.store.ListEvents(ctx, catalog.Filter{})
	if err != nil {
		return fmt.Errorf("list events for classification: %w", err)
	}
	for _, event := range events {
		category := classify.Classify(event.Title, event.Description)
		summary.Classified++
		if category == event.Category {
			continue
		}
		if err := r.store.SetCategory(ctx, event.ID, category); err != nil {
			summary.Failed++
			r.logger.Warn("category not persisted",
				logging.Int64("event_id", event.ID),
				logging.String("category", category),
				logging.Error(err),
			)
		}
	}
	return nil
}

// DigestEvents returns the events scheduled on the given calendar day,
// ordered by start time.
func DigestEvents(ctx context.Context, store *catalog.Store, day time.Time) ([]*catalog.Event, error) {
	from := startOfDay(day)
	to := from.Add(24*time.Hour - time.Second)
	return store.ListEvents(ctx, catalog.Filter{From: &from, To: &to})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
