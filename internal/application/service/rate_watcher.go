package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/domain/repository"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
)

// WatcherState is the lifecycle state of a RateWatcher
type WatcherState string

const (
	StateIdle     WatcherState = "idle"
	StateLoading  WatcherState = "loading"
	StateReady    WatcherState = "ready"
	StateDegraded WatcherState = "degraded"
	StateStopped  WatcherState = "stopped"
)

// RateSource hands out rate tables for a base currency
type RateSource interface {
	Latest(ctx context.Context, base string) *entity.RateSnapshot
}

// WatcherConfig controls how often a RateWatcher refreshes
type WatcherConfig struct {
	// RefreshInterval is the age after which a snapshot is stale
	RefreshInterval time.Duration
	// PollMultiplier spaces the periodic check at RefreshInterval*PollMultiplier
	PollMultiplier int
}

// WatcherStatus is a point-in-time view of a RateWatcher
type WatcherStatus struct {
	Base        string
	State       WatcherState
	Snapshot    *entity.RateSnapshot
	LastUpdated time.Time
	Stale       bool
}

// RateWatcher keeps the current rate table for one base currency up to date.
// Results of fetches started before a base switch or Stop are discarded,
// tracked with a generation counter.
type RateWatcher struct {
	rates  RateSource
	repo   repository.RateSnapshotRepository
	cfg    WatcherConfig
	logger logger.Logger
	now    func() time.Time

	mu          sync.Mutex
	base        string
	state       WatcherState
	snapshot    *entity.RateSnapshot
	lastUpdated time.Time
	generation  uint64
	scheduler   *cron.Cron
	cancel      context.CancelFunc
	runCtx      context.Context
}

// NewRateWatcher creates an idle watcher for base
func NewRateWatcher(rates RateSource, repo repository.RateSnapshotRepository, base string, cfg WatcherConfig, log logger.Logger) *RateWatcher {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Hour
	}
	if cfg.PollMultiplier < 1 {
		cfg.PollMultiplier = 1
	}

	return &RateWatcher{
		rates:  rates,
		repo:   repo,
		cfg:    cfg,
		logger: log.WithField("component", "rate_watcher"),
		now:    time.Now,
		base:   base,
		state:  StateIdle,
	}
}

// Start loads the persisted snapshot, fetches at once when it is missing,
// stale or for another base, and schedules the periodic staleness check.
func (w *RateWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.state == StateStopped {
		w.mu.Unlock()
		return ErrWatcherStopped
	}
	if w.scheduler != nil {
		w.mu.Unlock()
		return nil
	}

	persisted, err := w.repo.Load(ctx)
	if err != nil {
		w.logger.Warn("Failed to load persisted rate snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if persisted != nil && persisted.Base == w.base {
		persisted.Provenance = entity.ProvenanceCached
		persisted.Reason = entity.ReasonNone
		w.snapshot = persisted
		w.lastUpdated = persisted.FetchedAt()
		w.state = StateReady
	}

	w.runCtx, w.cancel = context.WithCancel(context.Background())

	interval := w.cfg.RefreshInterval * time.Duration(w.cfg.PollMultiplier)
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", interval), w.tick); err != nil {
		w.cancel()
		w.mu.Unlock()
		return fmt.Errorf("failed to schedule rate refresh: %w", err)
	}
	scheduler.Start()
	w.scheduler = scheduler

	needsFetch := w.snapshot == nil || entity.IsStale(w.snapshot, w.cfg.RefreshInterval, w.now())
	w.mu.Unlock()

	w.logger.Info("Rate watcher started", map[string]interface{}{
		"base":        w.Base(),
		"poll_every":  interval.String(),
		"fetch_first": needsFetch,
	})

	if needsFetch {
		w.fetch(ctx)
	}

	return nil
}

// Refresh fetches regardless of staleness. The rate service still throttles.
func (w *RateWatcher) Refresh(ctx context.Context) (WatcherStatus, error) {
	if w.stopped() {
		return WatcherStatus{}, ErrWatcherStopped
	}

	w.fetch(ctx)
	return w.Current(), nil
}

// SetBase switches the watched base currency, fetching when the current
// snapshot is for another base.
func (w *RateWatcher) SetBase(ctx context.Context, base string) (WatcherStatus, error) {
	if !entity.IsCurrencyCode(base) {
		return WatcherStatus{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, base)
	}

	w.mu.Lock()
	if w.state == StateStopped {
		w.mu.Unlock()
		return WatcherStatus{}, ErrWatcherStopped
	}

	if w.base == base && w.snapshot != nil && w.snapshot.Base == base {
		w.mu.Unlock()
		return w.Current(), nil
	}

	w.base = base
	w.generation++
	w.mu.Unlock()

	w.fetch(ctx)
	return w.Current(), nil
}

// Stop cancels the schedule. Fetches still in flight are discarded.
func (w *RateWatcher) Stop() {
	w.mu.Lock()
	if w.state == StateStopped {
		w.mu.Unlock()
		return
	}

	w.state = StateStopped
	w.generation++
	scheduler := w.scheduler
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	w.logger.Info("Rate watcher stopped", nil)
}

// Current returns the watched base, state and latest snapshot
func (w *RateWatcher) Current() WatcherStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WatcherStatus{
		Base:        w.base,
		State:       w.state,
		Snapshot:    w.snapshot,
		LastUpdated: w.lastUpdated,
		Stale:       entity.IsStale(w.snapshot, w.cfg.RefreshInterval, w.now()),
	}
}

// Snapshot returns the latest rate table, or nil before the first load
func (w *RateWatcher) Snapshot() *entity.RateSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.snapshot
}

// Base returns the watched base currency
func (w *RateWatcher) Base() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.base
}

func (w *RateWatcher) stopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state == StateStopped
}

// tick runs on the schedule and fetches only when the snapshot needs it
func (w *RateWatcher) tick() {
	w.mu.Lock()
	if w.state == StateStopped {
		w.mu.Unlock()
		return
	}

	needsFetch := w.snapshot == nil ||
		w.state == StateDegraded ||
		entity.IsStale(w.snapshot, w.cfg.RefreshInterval, w.now())
	ctx := w.runCtx
	w.mu.Unlock()

	if !needsFetch {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	w.fetch(ctx)
}

// fetch asks the rate source for the current base and applies the result
// unless the watcher moved on in the meantime.
func (w *RateWatcher) fetch(ctx context.Context) {
	w.mu.Lock()
	if w.state == StateStopped {
		w.mu.Unlock()
		return
	}

	generation := w.generation
	base := w.base
	previous := w.state
	w.state = StateLoading
	w.mu.Unlock()

	snapshot := w.rates.Latest(ctx, base)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateStopped || w.generation != generation {
		w.logger.Debug("Discarding superseded rate snapshot", map[string]interface{}{
			"base":       base,
			"provenance": snapshot.Provenance,
		})
		return
	}

	// A throttled answer carries nothing newer than a snapshot we already hold
	if snapshot.Reason == entity.ReasonThrottled && w.snapshot != nil && w.snapshot.Base == base {
		w.state = previous
		if w.state == StateLoading || w.state == StateIdle {
			w.state = stateFor(w.snapshot)
		}
		return
	}

	w.snapshot = snapshot
	w.lastUpdated = w.now()
	w.state = stateFor(snapshot)
}

func stateFor(snapshot *entity.RateSnapshot) WatcherState {
	if snapshot.IsLive() || (snapshot.Provenance == entity.ProvenanceCached && snapshot.Reason == entity.ReasonNone) {
		return StateReady
	}
	return StateDegraded
}
