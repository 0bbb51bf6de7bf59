package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/damon-houk/fxconv/internal/application/service"
	"github.com/damon-houk/fxconv/internal/config"
	"github.com/damon-houk/fxconv/internal/domain/repository"
	"github.com/damon-houk/fxconv/internal/infrastructure/api"
	"github.com/damon-houk/fxconv/internal/infrastructure/cache"
	"github.com/damon-houk/fxconv/internal/infrastructure/db"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
	"github.com/damon-houk/fxconv/internal/infrastructure/throttle"
)

// app holds the wired components shared by every command
type app struct {
	cfg         *config.Config
	log         logger.Logger
	store       db.KVStore
	snapshots   repository.RateSnapshotRepository
	rateAPI     *api.ExchangeRatesAPIClient
	rates       *service.RateService
	history     *service.HistoryService
	preferences *service.PreferencesService
}

// newApp opens the store and builds the services from cfg
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	store, err := db.Open(ctx, db.Options{
		Driver:        cfg.Storage.Driver,
		Path:          cfg.Storage.Path,
		RedisAddr:     cfg.Storage.Redis.Addr,
		RedisPassword: cfg.Storage.Redis.Password,
		RedisDB:       cfg.Storage.Redis.DB,
		Prefix:        cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}

	rateAPI := api.NewExchangeRatesAPIClient(api.ClientOptions{
		BaseURL:    cfg.API.BaseURL,
		AccessKey:  cfg.API.AccessKey,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		MaxRetries: cfg.API.MaxRetries,
		Logger:     log,
	})

	// One throttle guards every upstream call
	thr := throttle.New(cfg.Rates.MinRequestInterval, cfg.Rates.RateLimitPenalty)
	snapshots := db.NewRateSnapshotRepository(store, log)

	return &app{
		cfg:         cfg,
		log:         log,
		store:       store,
		snapshots:   snapshots,
		rateAPI:     rateAPI,
		rates:       service.NewRateService(rateAPI, snapshots, thr, log),
		history:     service.NewHistoryService(rateAPI, thr, cache.NewHistoryCache(cfg.History.CacheTTL), log),
		preferences: service.NewPreferencesService(ctx, db.NewPreferencesRepository(store), log),
	}, nil
}

// newWatcher builds a watcher for base over the app's rate service
func (a *app) newWatcher(base string) *service.RateWatcher {
	return service.NewRateWatcher(a.rates, a.snapshots, base, service.WatcherConfig{
		RefreshInterval: a.cfg.Rates.RefreshInterval,
		PollMultiplier:  a.cfg.Rates.PollMultiplier,
	}, a.log)
}

// Close releases the store
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("Error closing store", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
