package settings

import "github.com/KirkDiggler/tally/internal/models"

// GetSettingsInput defines the input for retrieving settings
type GetSettingsInput struct {
	GuildID string
}

// SaveSettingsInput defines the input for saving settings
type SaveSettingsInput struct {
	Settings *models.Settings
}
