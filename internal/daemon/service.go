// Package daemon provides the long-running document watcher and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/money"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/store"

	"github.com/shopspring/decimal"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Dir          string // document directory synced on every poll
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// Repository is the subset of the store the daemon needs.
type Repository interface {
	Sync(ctx context.Context, dir string, progressFn pipeline.ProgressFunc) (*store.SyncResult, error)
	FindAllBudgets(ctx context.Context) ([]model.Budget, error)
	FindBudget(ctx context.Context, id string) (model.Budget, error)
}

// BudgetSummary is the compact per-budget state carried in snapshots.
type BudgetSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Items      int       `json:"items"`
	GrandTotal float64   `json:"grand_total"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot is the portfolio state after one poll.
type Snapshot struct {
	At         time.Time                `json:"at"`
	Budgets    int                      `json:"budgets"`
	GrandTotal float64                  `json:"grand_total"`
	ByID       map[string]BudgetSummary `json:"by_id"`
}

// Delta captures what changed between two snapshots.
type Delta struct {
	Added      []string `json:"added,omitempty"`
	Removed    []string `json:"removed,omitempty"`
	Changed    []string `json:"changed,omitempty"`
	GrandTotal float64  `json:"grand_total"`
}

func (d Delta) isZero() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 && d.GrandTotal == 0
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Dir             string    `json:"dir"`
	LastImported    int       `json:"last_imported"`
	LastFailed      int       `json:"last_failed"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	repo    Repository
	log     *slog.Logger
	metrics *metrics

	mu           sync.RWMutex
	startedAt    time.Time
	lastPollAt   time.Time
	pollCount    int64
	lastError    string
	lastImported int
	lastFailed   int
	hasSnapshot  bool
	snapshot     Snapshot
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, repo Repository, log *slog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		repo:      repo,
		log:       log,
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/budgets/{id}", s.handleBudget)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.Handle("GET /metrics", s.metrics.handler())
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", "addr", s.cfg.Addr, "dir", s.cfg.Dir, "interval", s.cfg.Interval)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	now := time.Now()

	res, err := s.repo.Sync(ctx, s.cfg.Dir, nil)
	var budgets []model.Budget
	if err == nil {
		budgets, err = s.repo.FindAllBudgets(ctx)
	}
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.metrics.polls.WithLabelValues("error").Inc()
		s.log.Error("poll failed", "dir", s.cfg.Dir, "err", err)
		return
	}

	snap := snapshotFromBudgets(budgets, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	s.lastImported = res.Reparsed
	s.lastFailed = len(res.FailedFiles)

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "budget_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	s.metrics.polls.WithLabelValues("ok").Inc()
	s.metrics.budgets.Set(float64(snap.Budgets))
	s.metrics.grandTotal.Set(snap.GrandTotal)
	s.metrics.imported.Add(float64(res.Reparsed - len(res.FailedFiles)))
	s.metrics.failed.Add(float64(len(res.FailedFiles)))

	if res.Reparsed > 0 {
		s.log.Info("documents imported", "reparsed", res.Reparsed, "failed", len(res.FailedFiles))
	}
	if publish {
		s.publishEvent(ev)
	}
}

func snapshotFromBudgets(budgets []model.Budget, at time.Time) Snapshot {
	snap := Snapshot{At: at, Budgets: len(budgets), ByID: make(map[string]BudgetSummary, len(budgets))}
	total := decimal.Zero
	for _, b := range budgets {
		snap.ByID[b.ID] = BudgetSummary{
			ID:         b.ID,
			Name:       b.Name,
			Items:      len(b.Items),
			GrandTotal: b.Totals.GrandTotal,
			UpdatedAt:  b.UpdatedAt,
		}
		total = total.Add(money.D(b.Totals.GrandTotal))
	}
	snap.GrandTotal = money.F(total)
	return snap
}

// diffSnapshots lists budgets added, removed or re-totalled since prev.
// Ids come out in prev/curr map order, so callers must not rely on it.
func diffSnapshots(prev, curr Snapshot) Delta {
	var d Delta
	for id, c := range curr.ByID {
		p, ok := prev.ByID[id]
		switch {
		case !ok:
			d.Added = append(d.Added, id)
		case p.GrandTotal != c.GrandTotal || !p.UpdatedAt.Equal(c.UpdatedAt):
			d.Changed = append(d.Changed, id)
		}
	}
	for id := range prev.ByID {
		if _, ok := curr.ByID[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	d.GrandTotal = money.F(money.D(curr.GrandTotal).Sub(money.D(prev.GrandTotal)))
	return d
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
		Dir:             s.cfg.Dir,
		LastImported:    s.lastImported,
		LastFailed:      s.lastFailed,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
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

func (s *Service) handleBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.repo.FindBudget(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "budget not found", http.StatusNotFound)
	case err != nil:
		s.log.Error("loading budget", "id", r.PathValue("id"), "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, b)
	}
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{Type: "snapshot", Timestamp: time.Now(), Snapshot: s.snapshotStatus().Summary})
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.metrics.subscribers.Set(float64(len(s.subs)))
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.metrics.subscribers.Set(float64(len(s.subs)))
}
