package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/domain/repository"
)

// PreferencesRepository persists user preferences as a single JSON record
type PreferencesRepository struct {
	store KVStore
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(store KVStore) repository.PreferencesRepository {
	return &PreferencesRepository{store: store}
}

// Load returns the stored preferences, ErrNotFound, or a decode error
func (r *PreferencesRepository) Load(ctx context.Context) (*entity.UserPreferences, error) {
	data, err := r.store.Get(ctx, PreferencesKey)
	if err != nil {
		return nil, err
	}

	var prefs entity.UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}

	if prefs.FavoriteCurrencies == nil {
		prefs.FavoriteCurrencies = []string{}
	}
	if prefs.LastUsedCurrencies.To == nil {
		prefs.LastUsedCurrencies.To = []string{}
	}

	return &prefs, nil
}

// Save replaces the stored preferences
func (r *PreferencesRepository) Save(ctx context.Context, prefs *entity.UserPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := r.store.Set(ctx, PreferencesKey, data); err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}

	return nil
}
