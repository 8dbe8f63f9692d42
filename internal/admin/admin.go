// Package admin exposes a small read-only HTTP surface over the running
// daemon: liveness plus publisher counters.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Dkrayten/newswire/internal/publisher"
)

// StatsSource yields a snapshot of publisher counters.
type StatsSource interface {
	Stats() publisher.Stats
}

type server struct {
	log     *slog.Logger
	source  StatsSource
	started time.Time
}

// NewRouter builds the admin router.
func NewRouter(log *slog.Logger, source StatsSource) http.Handler {
	s := &server{log: log, source: source, started: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"connected": s.source.Stats().Connected,
	})
}

type statsResponse struct {
	publisher.Stats
	UptimeSeconds int64 `json:"uptime_seconds"`
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statsResponse{
		Stats:         s.source.Stats(),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing left to do but note it.
		s.log.Error("encode response", slog.Any("err", err))
	}
}
