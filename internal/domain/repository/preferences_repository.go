package repository

import (
	"context"

	"github.com/damon-houk/fxconv/internal/domain/entity"
)

// PreferencesRepository defines the interface for user preferences storage
type PreferencesRepository interface {
	// Load returns the stored preferences. A missing record is reported as
	// db.ErrNotFound and an unreadable one as a decode error.
	Load(ctx context.Context) (*entity.UserPreferences, error)

	// Save replaces the stored preferences
	Save(ctx context.Context, prefs *entity.UserPreferences) error
}
