// Package db internal/infrastructure/db/store.go
package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has never been written
var ErrNotFound = errors.New("record not found")

// KVStore is the small key/value surface the repositories persist through
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	// RatesKey holds the last successfully fetched rate snapshot
	RatesKey = "currency_converter_rates"
	// PreferencesKey holds the user preferences record
	PreferencesKey = "currency_converter_preferences"
)
