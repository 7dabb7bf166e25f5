package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
)

const userAgent = "Noticeboard/0.1.0"

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyEventDiscovered(ctx context.Context, event *catalog.Event) error
	NotifyIngestCompleted(ctx context.Context, processed, inserted, merged int, duration time.Duration) error
	NotifyDigest(ctx context.Context, day time.Time, events []*catalog.Event) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		discoveries: cfg.Notifications.Discoveries,
		summaries:   cfg.Notifications.IngestSummary,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	discoveries bool
	summaries   bool
	errors      bool
}

func (n *ntfyService) NotifyEventDiscovered(ctx context.Context, event *catalog.Event) error {
	if !n.discoveries || event == nil {
		return nil
	}
	location := strings.TrimSpace(event.Location)
	if location == "" {
		location = "TBA"
	}
	data := payload{
		title: "Noticeboard - New Event",
		message: fmt.Sprintf("Don't miss %q on %s at %s",
			event.Title, event.OccursAt.Format(catalog.TimeLayout), location),
		tags: []string{"noticeboard", "event", "discovered"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyIngestCompleted(ctx context.Context, processed, inserted, merged int, duration time.Duration) error {
	if !n.summaries {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	data := payload{
		title: "Noticeboard - Ingest Complete",
		message: fmt.Sprintf("Processed %d captions: %d new events, %d merged in %s",
			processed, inserted, merged, duration),
		tags: []string{"noticeboard", "ingest", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDigest(ctx context.Context, day time.Time, events []*catalog.Event) error {
	date := day.Format("2006-01-02")
	if len(events) == 0 {
		return n.send(ctx, payload{
			title:   fmt.Sprintf("Noticeboard - Digest for %s", date),
			message: "No events scheduled.",
			tags:    []string{"noticeboard", "digest"},
		})
	}

	var builder strings.Builder
	for _, event := range events {
		location := strings.TrimSpace(event.Location)
		if location == "" {
			location = "No location"
		}
		fmt.Fprintf(&builder, "[%s] (%s) %s - %s [%s]\n",
			event.OccursAt.Format("15:04"), event.Category, event.Title,
			location, event.SourceList())
	}
	data := payload{
		title:    fmt.Sprintf("Noticeboard - Digest for %s", date),
		message:  strings.TrimRight(builder.String(), "\n"),
		tags:     []string{"noticeboard", "digest"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Noticeboard - Error",
		message:  builder.String(),
		tags:     []string{"noticeboard", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Noticeboard - Test",
		message: "Notifications are configured correctly.",
		tags:    []string{"noticeboard", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyEventDiscovered(context.Context, *catalog.Event) error { return nil }
func (noopService) NotifyIngestCompleted(context.Context, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyDigest(context.Context, time.Time, []*catalog.Event) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                { return nil }
func (noopService) TestNotification(context.Context) error                          { return nil }
