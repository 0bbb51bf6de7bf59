package service

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	domain "github.com/damon-houk/fxconv/internal/domain/service"
	"github.com/damon-houk/fxconv/internal/infrastructure/api"
	"github.com/damon-houk/fxconv/internal/infrastructure/cache"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/throttle"
)

const (
	// MaxHistoryDays is the longest series the upstream serves in one request
	MaxHistoryDays = 365

	// apiBase is the native base of the upstream time series
	apiBase    = "EUR"
	dateLayout = "2006-01-02"
)

// HistoryService builds daily cross-rate series between two currencies
type HistoryService struct {
	api      domain.RateAPI
	throttle *throttle.Throttle
	cache    *cache.HistoryCache
	logger   logger.Logger
	now      func() time.Time
}

// NewHistoryService creates a new history service. thr should be the throttle
// shared with the RateService.
func NewHistoryService(rateAPI domain.RateAPI, thr *throttle.Throttle, seriesCache *cache.HistoryCache, log logger.Logger) *HistoryService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if seriesCache == nil {
		seriesCache = cache.NewHistoryCache(cache.DefaultExpiration)
	}

	return &HistoryService{
		api:      rateAPI,
		throttle: thr,
		cache:    seriesCache,
		logger:   log.WithField("component", "history_service"),
		now:      time.Now,
	}
}

// Series returns the daily rate of target in base over the last days days.
// Only invalid arguments are errors; upstream problems yield a flat series
// from the built-in table.
func (s *HistoryService) Series(ctx context.Context, base, target string, days int) (*entity.HistoricalSeries, error) {
	if !entity.IsCurrencyCode(base) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, base)
	}
	if !entity.IsCurrencyCode(target) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, target)
	}
	if days < 1 || days > MaxHistoryDays {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, days)
	}

	if cached := s.cache.Get(base, target, days); cached != nil {
		return cached, nil
	}

	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)

	if !s.api.Configured() {
		return s.fallback(base, target, start, end, entity.ReasonMissingCredential), nil
	}

	if !s.throttle.Allow() {
		s.logger.Debug("History request throttled", map[string]interface{}{
			"base":   base,
			"target": target,
		})
		return s.fallback(base, target, start, end, entity.ReasonThrottled), nil
	}

	series, err := s.api.TimeSeries(ctx, start, end, symbolsFor(base, target))
	if err != nil {
		reason := api.ReasonFor(err)
		if reason == entity.ReasonRateLimited {
			s.throttle.Penalize()
		}

		s.logger.Warn("Failed to fetch rate history", map[string]interface{}{
			"base":   base,
			"target": target,
			"days":   days,
			"reason": reason,
			"error":  err.Error(),
		})
		return s.fallback(base, target, start, end, reason), nil
	}

	result := crossSeries(series, base, target)
	if result.Len() == 0 {
		s.logger.Warn("Rate history has no usable points", map[string]interface{}{
			"base":   base,
			"target": target,
			"gaps":   len(result.Gaps),
		})
		return s.fallback(base, target, start, end, entity.ReasonUnknownBase), nil
	}

	if len(result.Gaps) > 0 {
		s.logger.Info("Rate history has gaps", map[string]interface{}{
			"base":   base,
			"target": target,
			"gaps":   result.Gaps,
		})
	}

	s.cache.Put(result, days)
	return result, nil
}

// symbolsFor lists the currencies needed for the target/base cross rate
func symbolsFor(base, target string) []string {
	symbols := []string{target}
	if base != apiBase && base != target {
		symbols = append(symbols, base)
	}
	return symbols
}

// crossSeries derives target-in-base rates per date. Dates where either leg is
// missing or not positive are listed in Gaps instead of being dropped silently.
func crossSeries(ts *domain.TimeSeries, base, target string) *entity.HistoricalSeries {
	native := ts.Base
	if native == "" {
		native = apiBase
	}

	leg := func(day map[string]float64, code string) (float64, bool) {
		if code == native {
			return 1, true
		}
		r, ok := day[code]
		return r, ok && r > 0
	}

	result := &entity.HistoricalSeries{
		Base:       base,
		Target:     target,
		Dates:      []string{},
		Rates:      []float64{},
		Gaps:       []string{},
		Provenance: entity.ProvenanceLive,
		Reason:     entity.ReasonNone,
	}

	for _, date := range slices.Sorted(maps.Keys(ts.Rates)) {
		day := ts.Rates[date]
		targetRate, okTarget := leg(day, target)
		baseRate, okBase := leg(day, base)
		if !okTarget || !okBase {
			result.Gaps = append(result.Gaps, date)
			continue
		}

		result.Dates = append(result.Dates, date)
		result.Rates = append(result.Rates, targetRate/baseRate)
	}

	return result
}

// fallback builds a flat daily series from the built-in table. Pairs the table
// does not know yield no points, with every date reported as a gap.
func (s *HistoryService) fallback(base, target string, start, end time.Time, reason entity.Reason) *entity.HistoricalSeries {
	_, rate := entity.Convert(1, base, target, entity.FallbackRates().Rates)

	result := &entity.HistoricalSeries{
		Base:       base,
		Target:     target,
		Dates:      []string{},
		Rates:      []float64{},
		Gaps:       []string{},
		Provenance: entity.ProvenanceFallback,
		Reason:     reason,
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		if math.IsNaN(rate) {
			result.Gaps = append(result.Gaps, date)
			continue
		}
		result.Dates = append(result.Dates, date)
		result.Rates = append(result.Rates, rate)
	}

	return result
}
