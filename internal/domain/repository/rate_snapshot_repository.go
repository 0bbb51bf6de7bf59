// Package repository internal/domain/repository/rate_snapshot_repository.go
package repository

import (
	"context"

	"github.com/damon-houk/fxconv/internal/domain/entity"
)

// RateSnapshotRepository defines the interface for the persisted rate snapshot
type RateSnapshotRepository interface {
	// Load returns the persisted snapshot, or nil when none has been saved yet
	Load(ctx context.Context) (*entity.RateSnapshot, error)

	// Save overwrites the persisted snapshot
	Save(ctx context.Context, snapshot *entity.RateSnapshot) error
}
