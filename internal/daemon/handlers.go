package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/observe"
)

type errorResponse struct {
	Error string `json:"error"`
}

type notificationsResponse struct {
	Unread        int                  `json:"unread"`
	Notifications []model.Notification `json:"notifications"`
}

// Handler returns the daemon's HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observe.ZapLoggerMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)

		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/read-all", s.handleReadAll)
		r.Post("/notifications/{id}/read", s.handleRead)
	})

	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.ledger.Notifications()
	if err != nil {
		s.internalError(w, "listing notifications", err)
		return
	}

	unread := 0
	out := make([]model.Notification, 0, len(list))
	onlyUnread := r.URL.Query().Get("unread") == "true"
	for _, n := range list {
		if !n.IsRead {
			unread++
		} else if onlyUnread {
			continue
		}
		out = append(out, n)
	}
	writeJSON(w, http.StatusOK, notificationsResponse{Unread: unread, Notifications: out})
}

func (s *Service) handleRead(w http.ResponseWriter, r *http.Request) {
	id, err := s.ledger.ResolveNotification(chi.URLParam(r, "id"))
	if err == nil {
		err = s.ledger.MarkRead(id)
	}
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
		return
	case errors.Is(err, model.ErrAmbiguousID):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.internalError(w, "marking notification read", err)
		return
	}
	s.refreshUnread()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleReadAll(w http.ResponseWriter, _ *http.Request) {
	changed, err := s.ledger.MarkAllRead()
	if err != nil {
		s.internalError(w, "marking notifications read", err)
		return
	}
	s.refreshUnread()
	writeJSON(w, http.StatusOK, map[string]int{"marked": changed})
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

// refreshUnread keeps the snapshot's unread count current between polls.
func (s *Service) refreshUnread() {
	n, err := s.ledger.UnreadCount()
	if err != nil {
		return
	}
	s.metrics.SetUnread(n)
	s.mu.Lock()
	s.snapshot.Unread = n
	s.mu.Unlock()
}

func (s *Service) internalError(w http.ResponseWriter, doing string, err error) {
	s.logger.Error(doing, zap.Error(err))
	writeError(w, http.StatusInternalServerError, doing+" failed")
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
