package settings

import (
	"context"

	"github.com/KirkDiggler/tally/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/tally/internal/repositories/settings Repository

// Repository defines the interface for settings persistence
type Repository interface {
	// GetSettings retrieves the settings for a guild
	GetSettings(ctx context.Context, input *GetSettingsInput) (*models.Settings, error)

	// SaveSettings creates or replaces the settings for a guild
	SaveSettings(ctx context.Context, input *SaveSettingsInput) error
}
