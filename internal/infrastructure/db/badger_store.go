package db

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// BadgerStore implements KVStore using BadgerDB
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// NewBadgerStore wraps an already opened BadgerDB
func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{db: db, prefix: prefix}
}

// OpenBadgerStore opens (or creates) a BadgerDB in dir
func OpenBadgerStore(dir, prefix string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable Badger's default logger

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return NewBadgerStore(bdb, prefix), nil
}

// Get returns the value stored under key
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(s.prefix + key))
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return value, nil
}

// Set stores value under key
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(s.prefix+key), value)
	})

	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// Close closes the underlying database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
