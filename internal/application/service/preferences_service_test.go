package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/damon-houk/fxconv/internal/domain/entity"
	"github.com/damon-houk/fxconv/internal/infrastructure/db"
	"github.com/damon-houk/fxconv/internal/mocks"
)

func newBadgerPreferencesRepo(t *testing.T) (*db.BadgerStore, func()) {
	dbPath, err := os.MkdirTemp("", "badger-preferences-test")
	require.NoError(t, err)

	badgerDB, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	require.NoError(t, err)

	store := db.NewBadgerStore(badgerDB, "")
	return store, func() {
		store.Close()
		os.RemoveAll(dbPath)
	}
}

func TestPreferencesServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newBadgerPreferencesRepo(t)
	defer cleanup()

	svc := NewPreferencesService(ctx, db.NewPreferencesRepository(store), quietLogger())
	assert.Equal(t, entity.DefaultPreferences(), svc.Get())

	_, err := svc.ToggleDarkMode(ctx)
	require.NoError(t, err)
	_, err = svc.AddFavorite(ctx, "PKR")
	require.NoError(t, err)
	_, err = svc.AddFavorite(ctx, "AED")
	require.NoError(t, err)
	_, err = svc.UpdateLastUsed(ctx, "GBP", []string{"PKR", "USD"})
	require.NoError(t, err)
	saved, err := svc.ToggleReversed(ctx)
	require.NoError(t, err)

	// A new service over the same store sees the same preferences
	reloaded := NewPreferencesService(ctx, db.NewPreferencesRepository(store), quietLogger())
	assert.Equal(t, saved, reloaded.Get())
	assert.True(t, reloaded.Get().DarkMode)
	assert.Equal(t, []string{"PKR", "AED"}, reloaded.Get().FavoriteCurrencies)

	reset, err := reloaded.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPreferences(), reset)
}

func TestPreferencesServiceLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Absent record", func(t *testing.T) {
		repo := new(mocks.MockPreferencesRepository)
		repo.On("Load", ctx).Return(nil, db.ErrNotFound).Once()

		svc := NewPreferencesService(ctx, repo, quietLogger())
		assert.Equal(t, entity.DefaultPreferences(), svc.Get())
	})

	t.Run("Corrupt record", func(t *testing.T) {
		repo := new(mocks.MockPreferencesRepository)
		repo.On("Load", ctx).Return(nil, errors.New("failed to decode preferences")).Once()

		svc := NewPreferencesService(ctx, repo, quietLogger())
		assert.Equal(t, entity.DefaultPreferences(), svc.Get())
	})

	t.Run("Invalid codes in the record", func(t *testing.T) {
		stored := entity.DefaultPreferences()
		stored.FavoriteCurrencies = []string{"dollars"}

		repo := new(mocks.MockPreferencesRepository)
		repo.On("Load", ctx).Return(stored, nil).Once()

		svc := NewPreferencesService(ctx, repo, quietLogger())
		assert.Equal(t, entity.DefaultPreferences(), svc.Get())
	})
}

func TestPreferencesServiceMutations(t *testing.T) {
	ctx := context.Background()

	newService := func() (*PreferencesService, *mocks.MockPreferencesRepository) {
		repo := new(mocks.MockPreferencesRepository)
		repo.On("Load", ctx).Return(nil, db.ErrNotFound).Once()
		return NewPreferencesService(ctx, repo, quietLogger()), repo
	}

	t.Run("Unchanged last-used selection is not written", func(t *testing.T) {
		svc, repo := newService()
		repo.On("Save", ctx, mock.Anything).Return(nil)

		prefs, err := svc.UpdateLastUsed(ctx, "USD", []string{"EUR", "GBP", "JPY"})
		require.NoError(t, err)
		assert.Equal(t, "USD", prefs.LastUsedCurrencies.From)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

		_, err = svc.UpdateLastUsed(ctx, "USD", []string{"EUR"})
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("Favorites behave as a set", func(t *testing.T) {
		svc, repo := newService()
		repo.On("Save", ctx, mock.Anything).Return(nil)

		_, err := svc.AddFavorite(ctx, "EUR")
		require.NoError(t, err)
		prefs, err := svc.AddFavorite(ctx, "EUR")
		require.NoError(t, err)
		assert.Equal(t, []string{"EUR"}, prefs.FavoriteCurrencies)

		prefs, err = svc.RemoveFavorite(ctx, "EUR")
		require.NoError(t, err)
		assert.Empty(t, prefs.FavoriteCurrencies)

		_, err = svc.RemoveFavorite(ctx, "EUR")
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("Invalid codes are rejected", func(t *testing.T) {
		svc, repo := newService()

		_, err := svc.AddFavorite(ctx, "eur")
		assert.ErrorIs(t, err, ErrInvalidCurrency)
		_, err = svc.RemoveFavorite(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidCurrency)
		_, err = svc.UpdateLastUsed(ctx, "USD", []string{"EURO"})
		assert.ErrorIs(t, err, ErrInvalidCurrency)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Failed save leaves the preferences unchanged", func(t *testing.T) {
		svc, repo := newService()
		repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := svc.ToggleDarkMode(ctx)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save preferences")
		assert.False(t, svc.Get().DarkMode)
	})

	t.Run("Returned values are copies", func(t *testing.T) {
		svc, _ := newService()

		prefs := svc.Get()
		prefs.FavoriteCurrencies = append(prefs.FavoriteCurrencies, "PKR")
		assert.Empty(t, svc.Get().FavoriteCurrencies)
	})
}
