package models

import (
	"time"
)

// Game represents the shared state of the counting game played in a channel
type Game struct {
	// CurrentCount is the last accepted number, 0 when the count has been lost
	CurrentCount int64

	// LastParticipantID is the player who supplied CurrentCount, empty if none
	LastParticipantID string

	// HighestCount is the highest count ever reached in this channel
	HighestCount int64

	// CooldownUntil is when submissions are accepted again after a failure
	CooldownUntil time.Time

	// PendingRescue is the offer to restore the most recently lost count
	PendingRescue *RescueOffer

	// UpdatedAt is when the game state last changed
	UpdatedAt time.Time
}

// NextNumber returns the only number that can currently be accepted
func (g *Game) NextNumber() int64 {
	return g.CurrentCount + 1
}

// IsFresh reports whether the count is at zero with nobody having counted yet
func (g *Game) IsFresh() bool {
	return g.CurrentCount == 0 && g.LastParticipantID == ""
}

// InCooldown reports whether the post-failure cooldown is still running
func (g *Game) InCooldown(now time.Time) bool {
	return now.Before(g.CooldownUntil)
}

// Clone returns a deep copy safe to hand out of the engine
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	if g.PendingRescue != nil {
		offer := *g.PendingRescue
		c.PendingRescue = &offer
	}
	return &c
}
