package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/domain/repository"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
)

// RateSnapshotRepository persists the rate snapshot as a single JSON record
type RateSnapshotRepository struct {
	store  KVStore
	logger logger.Logger
}

// NewRateSnapshotRepository creates a new repository for the rate snapshot
func NewRateSnapshotRepository(store KVStore, log logger.Logger) repository.RateSnapshotRepository {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateSnapshotRepository{
		store:  store,
		logger: log,
	}
}

// Load returns the persisted snapshot. A missing or unreadable record yields nil
// without error; only storage failures are returned.
func (r *RateSnapshotRepository) Load(ctx context.Context) (*entity.RateSnapshot, error) {
	data, err := r.store.Get(ctx, RatesKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load rate snapshot: %w", err)
	}

	var snapshot entity.RateSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		r.logger.Warn("Discarding unreadable rate snapshot", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}

	if snapshot.Base == "" || len(snapshot.Rates) == 0 {
		r.logger.Warn("Discarding incomplete rate snapshot", map[string]interface{}{
			"base":  snapshot.Base,
			"rates": len(snapshot.Rates),
		})
		return nil, nil
	}

	return &snapshot, nil
}

// Save overwrites the persisted snapshot
func (r *RateSnapshotRepository) Save(ctx context.Context, snapshot *entity.RateSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal rate snapshot: %w", err)
	}

	if err := r.store.Set(ctx, RatesKey, data); err != nil {
		return fmt.Errorf("failed to store rate snapshot: %w", err)
	}

	r.logger.Debug("Rate snapshot stored", map[string]interface{}{
		"base":      snapshot.Base,
		"date":      snapshot.Date,
		"rates":     len(snapshot.Rates),
		"timestamp": snapshot.FetchedAtEpochMs,
	})

	return nil
}
