// Package service internal/application/service/rate_service.go
package service

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/domain/repository"
	domain "github.com/damon-houk/fxconv/internal/domain/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/api"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/metrics"
	"github.com/damon-houk/fxconv/internal/infrastructure/throttle"
)

// fetchTimeout bounds a shared upstream request
const fetchTimeout = 30 * time.Second

// RateService obtains rate tables for arbitrary base currencies. It never
// fails: when the upstream cannot be used it hands out the persisted snapshot
// or the built-in table, tagged with the reason.
type RateService struct {
	api      domain.RateAPI
	repo     repository.RateSnapshotRepository
	throttle *throttle.Throttle
	group    singleflight.Group
	logger   logger.Logger
	now      func() time.Time
}

// NewRateService creates a new rate service
func NewRateService(rateAPI domain.RateAPI, repo repository.RateSnapshotRepository, thr *throttle.Throttle, log logger.Logger) *RateService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateService{
		api:      rateAPI,
		repo:     repo,
		throttle: thr,
		logger:   log.WithField("component", "rate_service"),
		now:      time.Now,
	}
}

// Latest returns the newest rate table expressed relative to base.
// Concurrent calls for the same base share one upstream request. The shared
// request is detached from the caller that started it; a caller whose ctx ends
// first gets a fallback while the request completes for the others.
func (s *RateService) Latest(ctx context.Context, base string) *entity.RateSnapshot {
	ch := s.group.DoChan(base, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx, base), nil
	})

	var snapshot *entity.RateSnapshot
	select {
	case res := <-ch:
		snapshot = res.Val.(*entity.RateSnapshot)
	case <-ctx.Done():
		s.logger.Debug("Caller gave up waiting for rates", map[string]interface{}{
			"base":  base,
			"error": ctx.Err().Error(),
		})
		snapshot = s.fallback(context.WithoutCancel(ctx), base, entity.ReasonTransport)
	}

	metrics.ObserveSnapshot(string(snapshot.Provenance), string(snapshot.Reason))

	return snapshot
}

func (s *RateService) fetch(ctx context.Context, base string) *entity.RateSnapshot {
	if !s.api.Configured() {
		s.logger.Warn("Exchange rate API access key is not configured, using fallback rates", map[string]interface{}{
			"base": base,
		})
		return s.fallback(ctx, base, entity.ReasonMissingCredential)
	}

	if !s.throttle.Allow() {
		s.logger.Debug("Rate request throttled", map[string]interface{}{
			"base":          base,
			"blocked_until": s.throttle.BlockedUntil(),
		})
		return s.fallback(ctx, base, entity.ReasonThrottled)
	}

	latest, err := s.api.Latest(ctx)
	if err != nil {
		reason := api.ReasonFor(err)
		if reason == entity.ReasonRateLimited {
			s.throttle.Penalize()
		}

		s.logger.Warn("Failed to fetch exchange rates", map[string]interface{}{
			"base":   base,
			"reason": reason,
			"error":  err.Error(),
		})
		return s.fallback(ctx, base, reason)
	}

	rates, ok := entity.RebaseRates(latest.Base, latest.Rates, base)
	if !ok {
		s.logger.Warn("Upstream rates do not include the requested base", map[string]interface{}{
			"base":     base,
			"api_base": latest.Base,
		})
		return s.fallback(ctx, base, entity.ReasonUnknownBase)
	}

	snapshot := &entity.RateSnapshot{
		Base:             base,
		Date:             latest.Date,
		Rates:            rates,
		FetchedAtEpochMs: s.now().UnixMilli(),
		Provenance:       entity.ProvenanceLive,
		Reason:           entity.ReasonNone,
	}

	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger.Error("Failed to persist rate snapshot", map[string]interface{}{
			"base":  base,
			"error": err.Error(),
		})
	}

	s.logger.Info("Exchange rates updated", map[string]interface{}{
		"base":  base,
		"date":  snapshot.Date,
		"rates": len(snapshot.Rates),
	})

	return snapshot
}

// fallback returns the persisted snapshot re-based to base, else the built-in
// table re-based to base, else a table holding only base itself.
func (s *RateService) fallback(ctx context.Context, base string, reason entity.Reason) *entity.RateSnapshot {
	now := s.now()

	cached, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load persisted rate snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if rebased, ok := cached.Rebase(base); ok {
		rebased.FetchedAtEpochMs = now.UnixMilli()
		rebased.Provenance = entity.ProvenanceCached
		rebased.Reason = reason
		return rebased
	}

	snapshot, ok := entity.FallbackRates().Rebase(base)
	if !ok {
		snapshot = &entity.RateSnapshot{
			Base:  base,
			Rates: map[string]float64{base: 1},
		}
	}

	snapshot.Date = now.Format("2006-01-02")
	snapshot.FetchedAtEpochMs = now.UnixMilli()
	snapshot.Provenance = entity.ProvenanceFallback
	snapshot.Reason = reason

	return snapshot
}
