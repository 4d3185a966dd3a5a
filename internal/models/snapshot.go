package models

import (
	"time"
)

// Snapshot is a point-in-time copy of a counting game and its players,
// used to carry state across restarts
type Snapshot struct {
	// Game is the shared game state
	Game *Game

	// Participants holds every player the game currently tracks
	Participants []*ParticipantStatus

	// TakenAt is when the snapshot was copied out of the engine
	TakenAt time.Time
}
