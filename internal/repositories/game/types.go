package game

import "github.com/KirkDiggler/tally/internal/models"

type SaveSnapshotInput struct {
	GuildID  string
	Snapshot *models.Snapshot
}

type GetSnapshotInput struct {
	GuildID string
}

type DeleteSnapshotInput struct {
	GuildID string
}
