package models

import (
	"time"
)

// ParticipantStatus tracks a player's remaining lives in the counting game
type ParticipantStatus struct {
	// ParticipantID is the Discord user ID of the player
	ParticipantID string

	// LivesRemaining is how many more mistakes the player can make
	LivesRemaining int

	// SuspendedUntil is set once the player runs out of lives
	SuspendedUntil *time.Time
}

// IsSuspended reports whether the player is blocked from counting at now
func (p *ParticipantStatus) IsSuspended(now time.Time) bool {
	return p.SuspendedUntil != nil && now.Before(*p.SuspendedUntil)
}

// SuspensionElapsed reports whether a suspension was applied and has since ended
func (p *ParticipantStatus) SuspensionElapsed(now time.Time) bool {
	return p.SuspendedUntil != nil && !now.Before(*p.SuspendedUntil)
}

// Clone returns a copy that does not share the suspension timestamp
func (p *ParticipantStatus) Clone() *ParticipantStatus {
	if p == nil {
		return nil
	}
	c := *p
	if p.SuspendedUntil != nil {
		until := *p.SuspendedUntil
		c.SuspendedUntil = &until
	}
	return &c
}
