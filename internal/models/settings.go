package models

import (
	"time"
)

// Settings is an immutable snapshot of a guild's counting configuration.
// Updates replace the whole snapshot, never individual fields.
type Settings struct {
	// GuildID is the Discord server the settings belong to
	GuildID string

	// ChannelID is the channel the counting game runs in
	ChannelID string

	// SuspensionHours is how long a player is suspended after losing all lives
	SuspensionHours int

	// CreditsPerSuccess is paid to a player for every correct number
	CreditsPerSuccess int64

	// MaxLives is how many mistakes a player may make before suspension
	MaxLives int

	// Enabled turns the game on or off
	Enabled bool

	// UpdatedAt is when the snapshot was published
	UpdatedAt time.Time
}

// SuspensionDuration returns the configured suspension as a duration
func (s *Settings) SuspensionDuration() time.Duration {
	return time.Duration(s.SuspensionHours) * time.Hour
}
