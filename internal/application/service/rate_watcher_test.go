package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/mocks"
)

// fakeRateSource answers Latest with next and records the bases asked for
type fakeRateSource struct {
	mu    sync.Mutex
	bases []string
	next  func(base string) *entity.RateSnapshot
}

func (f *fakeRateSource) Latest(ctx context.Context, base string) *entity.RateSnapshot {
	f.mu.Lock()
	f.bases = append(f.bases, base)
	next := f.next
	f.mu.Unlock()

	return next(base)
}

func (f *fakeRateSource) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.bases...)
}

func liveSnapshot(base string) *entity.RateSnapshot {
	return &entity.RateSnapshot{
		Base:             base,
		Date:             "2024-05-01",
		Rates:            map[string]float64{base: 1, "EUR": 0.9},
		FetchedAtEpochMs: testNow.UnixMilli(),
		Provenance:       entity.ProvenanceLive,
		Reason:           entity.ReasonNone,
	}
}

func fallbackSnapshot(base string, reason entity.Reason) *entity.RateSnapshot {
	return &entity.RateSnapshot{
		Base:             base,
		Rates:            map[string]float64{base: 1},
		FetchedAtEpochMs: testNow.UnixMilli(),
		Provenance:       entity.ProvenanceFallback,
		Reason:           reason,
	}
}

func newTestWatcher(source RateSource, repo *mocks.MockRateSnapshotRepository) *RateWatcher {
	w := NewRateWatcher(source, repo, "USD", WatcherConfig{RefreshInterval: time.Hour, PollMultiplier: 3}, quietLogger())
	w.now = func() time.Time { return testNow }
	return w
}

func TestRateWatcherStart(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches when nothing is persisted", func(t *testing.T) {
		source := &fakeRateSource{next: liveSnapshot}
		repo := new(mocks.MockRateSnapshotRepository)
		repo.On("Load", ctx).Return(nil, nil).Once()

		w := newTestWatcher(source, repo)
		require.NoError(t, w.Start(ctx))
		defer w.Stop()

		status := w.Current()
		assert.Equal(t, StateReady, status.State)
		assert.Equal(t, "USD", status.Snapshot.Base)
		assert.Equal(t, testNow, status.LastUpdated)
		assert.False(t, status.Stale)
		assert.Equal(t, []string{"USD"}, source.calls())
	})

	t.Run("Fresh persisted snapshot is used without a fetch", func(t *testing.T) {
		source := &fakeRateSource{next: liveSnapshot}
		repo := new(mocks.MockRateSnapshotRepository)
		persisted := liveSnapshot("USD")
		persisted.FetchedAtEpochMs = testNow.Add(-10 * time.Minute).UnixMilli()
		repo.On("Load", ctx).Return(persisted, nil).Once()

		w := newTestWatcher(source, repo)
		require.NoError(t, w.Start(ctx))
		defer w.Stop()

		status := w.Current()
		assert.Equal(t, StateReady, status.State)
		assert.Equal(t, entity.ProvenanceCached, status.Snapshot.Provenance)
		assert.Empty(t, source.calls())

		// Starting twice is a no-op
		require.NoError(t, w.Start(ctx))
		repo.AssertNumberOfCalls(t, "Load", 1)
	})

	t.Run("Stale persisted snapshot triggers a fetch", func(t *testing.T) {
		source := &fakeRateSource{next: liveSnapshot}
		repo := new(mocks.MockRateSnapshotRepository)
		persisted := liveSnapshot("USD")
		persisted.FetchedAtEpochMs = testNow.Add(-2 * time.Hour).UnixMilli()
		repo.On("Load", ctx).Return(persisted, nil).Once()

		w := newTestWatcher(source, repo)
		require.NoError(t, w.Start(ctx))
		defer w.Stop()

		assert.Equal(t, []string{"USD"}, source.calls())
		assert.Equal(t, entity.ProvenanceLive, w.Snapshot().Provenance)
	})

	t.Run("Persisted snapshot for another base triggers a fetch", func(t *testing.T) {
		source := &fakeRateSource{next: liveSnapshot}
		repo := new(mocks.MockRateSnapshotRepository)
		repo.On("Load", ctx).Return(liveSnapshot("PKR"), nil).Once()

		w := newTestWatcher(source, repo)
		require.NoError(t, w.Start(ctx))
		defer w.Stop()

		assert.Equal(t, []string{"USD"}, source.calls())
		assert.Equal(t, "USD", w.Snapshot().Base)
	})

	t.Run("Fallback leaves the watcher degraded", func(t *testing.T) {
		source := &fakeRateSource{next: func(base string) *entity.RateSnapshot {
			return fallbackSnapshot(base, entity.ReasonMissingCredential)
		}}
		repo := new(mocks.MockRateSnapshotRepository)
		repo.On("Load", ctx).Return(nil, nil).Once()

		w := newTestWatcher(source, repo)
		require.NoError(t, w.Start(ctx))
		defer w.Stop()

		assert.Equal(t, StateDegraded, w.Current().State)
	})
}

func TestRateWatcherTick(t *testing.T) {
	ctx := context.Background()
	source := &fakeRateSource{next: liveSnapshot}
	repo := new(mocks.MockRateSnapshotRepository)
	repo.On("Load", ctx).Return(nil, nil).Once()

	w := newTestWatcher(source, repo)
	require.NoError(t, w.Start(ctx))
	defer w.Stop()
	require.Len(t, source.calls(), 1)

	// Fresh and live: nothing to do
	w.tick()
	assert.Len(t, source.calls(), 1)

	// Two refresh intervals later the snapshot is stale
	w.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	w.tick()
	assert.Len(t, source.calls(), 2)
}

func TestRateWatcherRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Manual refresh bypasses staleness", func(t *testing.T) {
		source := &fakeRateSource{next: liveSnapshot}
		w := newTestWatcher(source, new(mocks.MockRateSnapshotRepository))

		_, err := w.Refresh(ctx)
		require.NoError(t, err)
		status, err := w.Refresh(ctx)
		require.NoError(t, err)

		assert.Len(t, source.calls(), 2)
		assert.Equal(t, StateReady, status.State)
	})

	t.Run("Throttled answer keeps the held snapshot", func(t *testing.T) {
		source := &fakeRateSource{next: liveSnapshot}
		w := newTestWatcher(source, new(mocks.MockRateSnapshotRepository))

		_, err := w.Refresh(ctx)
		require.NoError(t, err)
		held := w.Snapshot()

		source.next = func(base string) *entity.RateSnapshot {
			return fallbackSnapshot(base, entity.ReasonThrottled)
		}
		status, err := w.Refresh(ctx)
		require.NoError(t, err)

		assert.Same(t, held, status.Snapshot)
		assert.Equal(t, StateReady, status.State)
	})
}

func TestRateWatcherSetBase(t *testing.T) {
	ctx := context.Background()
	source := &fakeRateSource{next: liveSnapshot}
	w := newTestWatcher(source, new(mocks.MockRateSnapshotRepository))

	status, err := w.SetBase(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", status.Base)
	assert.Equal(t, "EUR", status.Snapshot.Base)

	// Same base with a matching snapshot does not fetch again
	_, err = w.SetBase(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR"}, source.calls())

	_, err = w.SetBase(ctx, "eur")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestRateWatcherDiscardsLateResults(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})

	source := &fakeRateSource{next: func(base string) *entity.RateSnapshot {
		close(entered)
		<-release
		return liveSnapshot(base)
	}}
	w := newTestWatcher(source, new(mocks.MockRateSnapshotRepository))

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Refresh(ctx)
	}()

	<-entered
	w.Stop()
	close(release)
	<-done

	assert.Nil(t, w.Snapshot())
	assert.Equal(t, StateStopped, w.Current().State)

	_, err := w.Refresh(ctx)
	assert.ErrorIs(t, err, ErrWatcherStopped)
	_, err = w.SetBase(ctx, "GBP")
	assert.ErrorIs(t, err, ErrWatcherStopped)
	assert.ErrorIs(t, w.Start(ctx), ErrWatcherStopped)

	// Stopping twice is harmless
	w.Stop()
}

func TestRateWatcherDiscardsSupersededBase(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	source := &fakeRateSource{next: func(base string) *entity.RateSnapshot {
		if base == "USD" {
			entered <- struct{}{}
			<-release
		}
		return liveSnapshot(base)
	}}
	repo := new(mocks.MockRateSnapshotRepository)
	repo.On("Load", mock.Anything).Return(nil, nil).Maybe()
	w := newTestWatcher(source, repo)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Refresh(ctx)
	}()

	<-entered
	_, err := w.SetBase(ctx, "GBP")
	require.NoError(t, err)
	close(release)
	<-done

	assert.Equal(t, "GBP", w.Snapshot().Base)
	assert.Equal(t, StateReady, w.Current().State)
}
