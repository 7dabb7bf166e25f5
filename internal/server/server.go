// Package server exposes the catalog over a small JSON API.
//
// Endpoints mirror the query surface of the CLI: /api/events with
// category/keyword/time-range filters, /api/events/{id}, and /api/summary.
// The server owns no pipeline logic; it reads through the catalog store
// only.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
	"noticeboard/internal/logging"
)

// Server serves the catalog API on the configured bind address.
type Server struct {
	bind   string
	store  *catalog.Store
	logger *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New builds an API server. Returns nil when no bind address is configured.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Server {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &Server{
		bind:   bind,
		store:  store,
		logger: logging.NewComponentLogger(logger, "api"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/events", srv.handleEvents)
	mux.HandleFunc("/api/events/", srv.handleEvent)
	mux.HandleFunc("/api/summary", srv.handleSummary)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Start begins serving and shuts down gracefully when ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down outside of context cancellation.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

type eventView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	OccursAt    string `json:"occurs_at"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Sources     string `json:"sources"`
	Category    string `json:"category"`
}

func viewOf(event *catalog.Event) eventView {
	return eventView{
		ID:          event.ID,
		Title:       event.Title,
		OccursAt:    event.OccursAt.Format(catalog.TimeLayout),
		Location:    event.Location,
		Description: event.Description,
		Sources:     event.SourceList(),
		Category:    event.Category,
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.store.ListEvents(r.Context(), filter)
	if err != nil {
		s.logger.Error("list events", logging.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, event := range events {
		views = append(views, viewOf(event))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idText := strings.TrimPrefix(r.URL.Path, "/api/events/")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
		return
	}
	if err != nil {
		s.logger.Error("get event", logging.Int64("id", id), logging.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(event))
}

type summaryView struct {
	Candidates int                     `json:"candidates"`
	Events     int                     `json:"events"`
	Categories []catalog.CategoryCount `json:"categories"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	totals, err := s.store.TotalCounts(r.Context())
	if err != nil {
		s.logger.Error("summary totals", logging.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	counts, err := s.store.CategoryCounts(r.Context())
	if err != nil {
		s.logger.Error("summary categories", logging.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summaryView{
		Candidates: totals.Candidates,
		Events:     totals.Events,
		Categories: counts,
	})
}

func filterFromQuery(r *http.Request) (catalog.Filter, error) {
	var filter catalog.Filter
	query := r.URL.Query()

	filter.Category = strings.TrimSpace(query.Get("category"))
	filter.Keyword = strings.TrimSpace(query.Get("keyword"))

	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		parsed, err := parseQueryTime(raw, false)
		if err != nil {
			return filter, fmt.Errorf("invalid from value %q", raw)
		}
		filter.From = &parsed
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		parsed, err := parseQueryTime(raw, true)
		if err != nil {
			return filter, fmt.Errorf("invalid to value %q", raw)
		}
		filter.To = &parsed
	}
	return filter, nil
}

// parseQueryTime accepts either a bare date or a combined date-time. Bare
// dates used as an upper bound extend to the end of that day.
func parseQueryTime(raw string, endOfDay bool) (time.Time, error) {
	if parsed, err := time.Parse(catalog.TimeLayout, raw); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Second)
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
