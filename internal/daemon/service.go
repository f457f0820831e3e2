// Package daemon provides the long-running background budget monitor.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/observe"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// Snapshot is a compact ledger state for status/event payloads.
type Snapshot struct {
	At            time.Time `json:"at"`
	Balance       float64   `json:"balance"`
	SpentToday    float64   `json:"spent_today"`
	SpentMonth    float64   `json:"spent_month"`
	BillsDue      float64   `json:"bills_due"`
	BillsOverdue  int       `json:"bills_overdue"`
	WasteKg       float64   `json:"waste_kg"`
	RecyclingRate float64   `json:"recycling_rate"`
	OverLimits    int       `json:"over_limits"`
	Unread        int       `json:"unread"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	SpentToday float64 `json:"spent_today"`
	SpentMonth float64 `json:"spent_month"`
	BillsDue   float64 `json:"bills_due"`
	WasteKg    float64 `json:"waste_kg"`
	OverLimits int     `json:"over_limits"`
	Unread     int     `json:"unread"`
}

func (d Delta) isZero() bool {
	return d.SpentToday == 0 &&
		d.SpentMonth == 0 &&
		d.BillsDue == 0 &&
		d.WasteKg == 0 &&
		d.OverLimits == 0 &&
		d.Unread == 0
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventDelta    = "ledger_delta"
	EventAlert    = "alert"
)

// Event is emitted whenever the ledger snapshot changes or an alert fires.
type Event struct {
	ID           int64               `json:"id"`
	Type         string              `json:"type"`
	Timestamp    time.Time           `json:"timestamp"`
	Snapshot     Snapshot            `json:"snapshot"`
	Delta        Delta               `json:"delta"`
	Notification *model.Notification `json:"notification,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	ledger  *ledger.Service
	logger  *zap.Logger
	metrics *observe.Metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon over svc. metrics must be the same instance svc reports to.
func New(cfg Config, svc *ledger.Service, logger *zap.Logger, metrics *observe.Metrics) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observe.NewMetrics()
	}

	return &Service{
		cfg:       cfg,
		ledger:    svc,
		logger:    logger,
		metrics:   metrics,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves the HTTP API and polls the ledger until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("daemon listening", zap.String("addr", s.cfg.Addr), zap.Duration("interval", s.cfg.Interval))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		// Seed initial snapshot so status is useful immediately.
		s.pollOnce()

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce()
			}
		}
	})

	return g.Wait()
}

// pollOnce re-evaluates every domain so that period rollovers and entries written
// by other processes are picked up, then publishes what changed.
func (s *Service) pollOnce() {
	start := time.Now()
	alerts, err := s.ledger.EvaluateAll()
	var overview []ledger.DomainStatus
	var unread int
	if err == nil {
		overview, err = s.ledger.Overview()
	}
	if err == nil {
		unread, err = s.ledger.UnreadCount()
	}
	s.metrics.ObservePoll(time.Since(start), err)

	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.logger.Error("poll failed", zap.Error(err))
		return
	}

	now := s.ledger.Now()
	snap := snapshotFromOverview(overview, unread, now)
	s.metrics.SetUnread(unread)
	for _, st := range overview {
		for _, ls := range st.Limits {
			if ls.Limit.Active && ls.Limit.Amount > 0 {
				s.metrics.SetLimitUsage(ls.Limit.Label(), ls.RawPercentUsed/100)
			}
		}
	}

	var out []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	for i := range alerts {
		s.nextEventID++
		out = append(out, Event{
			ID:           s.nextEventID,
			Type:         EventAlert,
			Timestamp:    now,
			Snapshot:     snap,
			Notification: &alerts[i],
		})
	}

	if !prevExists {
		s.nextEventID++
		out = append(out, Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Snapshot:  snap,
		})
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		out = append(out, Event{
			ID:        s.nextEventID,
			Type:      EventDelta,
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		})
	}
	s.mu.Unlock()

	for _, ev := range out {
		s.publishEvent(ev)
	}
	s.logger.Info("poll",
		zap.Int("alerts", len(alerts)),
		zap.Int("over_limits", snap.OverLimits),
		zap.Int("unread", unread),
		zap.Duration("took", time.Since(start)),
	)
}

func snapshotFromOverview(overview []ledger.DomainStatus, unread int, at time.Time) Snapshot {
	snap := Snapshot{At: at, Unread: unread}
	for _, st := range overview {
		for _, ls := range st.Limits {
			if ls.Limit.Active && ls.Exceeded {
				snap.OverLimits++
			}
		}
		switch st.Domain {
		case model.DomainExpense:
			snap.Balance = st.Summary.Balance
			snap.SpentToday = st.Today.TotalExpense
			snap.SpentMonth = st.Month.TotalExpense
		case model.DomainBill:
			if st.Bills != nil {
				snap.BillsDue = st.Bills.Due
				snap.BillsOverdue = st.Bills.Overdue
			}
		case model.DomainWaste:
			if st.Waste != nil {
				snap.WasteKg = st.Waste.TotalKg
				snap.RecyclingRate = st.Waste.RecyclingRate
			}
		}
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		SpentToday: curr.SpentToday - prev.SpentToday,
		SpentMonth: curr.SpentMonth - prev.SpentMonth,
		BillsDue:   curr.BillsDue - prev.BillsDue,
		WasteKg:    curr.WasteKg - prev.WasteKg,
		OverLimits: curr.OverLimits - prev.OverLimits,
		Unread:     curr.Unread - prev.Unread,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
