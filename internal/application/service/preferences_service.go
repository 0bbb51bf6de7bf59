package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/domain/repository"
	"github.com/damon-houk/fxconv/internal/infrastructure/db"
	"github.com/damon-houk/fxconv/internal/infrastructure/logger"
)

// PreferencesService owns the user preferences record. Every mutation is
// persisted before it becomes visible through Get.
type PreferencesService struct {
	repo   repository.PreferencesRepository
	logger logger.Logger

	mu    sync.Mutex
	prefs *entity.UserPreferences
}

// NewPreferencesService loads the stored preferences, falling back to the
// defaults when the record is absent or unreadable.
func NewPreferencesService(ctx context.Context, repo repository.PreferencesRepository, log logger.Logger) *PreferencesService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	log = log.WithField("component", "preferences_service")

	prefs, err := repo.Load(ctx)
	switch {
	case errors.Is(err, db.ErrNotFound):
		prefs = entity.DefaultPreferences()
	case err != nil:
		log.Warn("Failed to load preferences, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		prefs = entity.DefaultPreferences()
	default:
		if verr := prefs.Validate(); verr != nil {
			log.Warn("Stored preferences are invalid, using defaults", map[string]interface{}{
				"error": verr.Error(),
			})
			prefs = entity.DefaultPreferences()
		}
	}

	return &PreferencesService{
		repo:   repo,
		logger: log,
		prefs:  prefs,
	}
}

// Get returns a copy of the current preferences
func (s *PreferencesService) Get() *entity.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.prefs.Clone()
}

// ToggleDarkMode flips the dark mode flag
func (s *PreferencesService) ToggleDarkMode(ctx context.Context) (*entity.UserPreferences, error) {
	return s.update(ctx, "toggle_dark_mode", func(p *entity.UserPreferences) bool {
		p.DarkMode = !p.DarkMode
		return true
	})
}

// ToggleReversed flips the conversion direction flag
func (s *PreferencesService) ToggleReversed(ctx context.Context) (*entity.UserPreferences, error) {
	return s.update(ctx, "toggle_reversed", func(p *entity.UserPreferences) bool {
		p.IsReversed = !p.IsReversed
		return true
	})
}

// AddFavorite adds code to the favorites. Adding a favorite twice is a no-op.
func (s *PreferencesService) AddFavorite(ctx context.Context, code string) (*entity.UserPreferences, error) {
	if !entity.IsCurrencyCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}

	return s.update(ctx, "add_favorite", func(p *entity.UserPreferences) bool {
		if p.IsFavorite(code) {
			return false
		}
		p.FavoriteCurrencies = append(p.FavoriteCurrencies, code)
		return true
	})
}

// RemoveFavorite removes code from the favorites
func (s *PreferencesService) RemoveFavorite(ctx context.Context, code string) (*entity.UserPreferences, error) {
	if !entity.IsCurrencyCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}

	return s.update(ctx, "remove_favorite", func(p *entity.UserPreferences) bool {
		if !p.IsFavorite(code) {
			return false
		}
		p.FavoriteCurrencies = slices.DeleteFunc(p.FavoriteCurrencies, func(c string) bool {
			return c == code
		})
		return true
	})
}

// UpdateLastUsed stores the last conversion selection. An unchanged selection
// is not written again.
func (s *PreferencesService) UpdateLastUsed(ctx context.Context, from string, to []string) (*entity.UserPreferences, error) {
	if !entity.IsCurrencyCode(from) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, from)
	}
	for _, code := range to {
		if !entity.IsCurrencyCode(code) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}

	return s.update(ctx, "update_last_used", func(p *entity.UserPreferences) bool {
		if p.SameLastUsed(from, to) {
			return false
		}
		p.LastUsedCurrencies = entity.LastUsedCurrencies{
			From: from,
			To:   append([]string{}, to...),
		}
		return true
	})
}

// Reset restores the defaults
func (s *PreferencesService) Reset(ctx context.Context) (*entity.UserPreferences, error) {
	return s.update(ctx, "reset", func(p *entity.UserPreferences) bool {
		*p = *entity.DefaultPreferences()
		return true
	})
}

// update applies mutate to a copy, persists it and only then publishes it.
// mutate returns false when nothing changed, which skips the write.
func (s *PreferencesService) update(ctx context.Context, op string, mutate func(p *entity.UserPreferences) bool) (*entity.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs.Clone()
	if !mutate(next) {
		return next, nil
	}

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("Failed to save preferences", map[string]interface{}{
			"operation": op,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	s.prefs = next
	s.logger.Debug("Preferences updated", map[string]interface{}{
		"operation": op,
	})

	return next.Clone(), nil
}
