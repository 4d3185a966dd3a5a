package game

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/tally/internal/repositories/game Repository

import (
	"context"

	"github.com/KirkDiggler/tally/internal/models"
)

// Repository defines the interface for game snapshot persistence
type Repository interface {
	// SaveSnapshot stores the latest snapshot of a guild's game
	SaveSnapshot(ctx context.Context, input *SaveSnapshotInput) error

	// GetSnapshot retrieves the latest snapshot of a guild's game
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*models.Snapshot, error)

	// DeleteSnapshot removes a guild's snapshot
	DeleteSnapshot(ctx context.Context, input *DeleteSnapshotInput) error
}
