package models

import (
	"time"
)

// RescueOffer is a one-shot chance to buy back a lost count
type RescueOffer struct {
	// ID identifies the offer in logs and rendered messages
	ID string

	// FailedAtCount is the count that was lost and will be restored
	FailedAtCount int64

	// Cost is the price in credits, fixed when the offer is created
	Cost int64

	// FailedBy is the player whose mistake opened the offer
	FailedBy string

	// CreatedAt is when the failure happened
	CreatedAt time.Time

	// ExpiresAt is when the offer can no longer be redeemed
	ExpiresAt time.Time
}

// IsActive reports whether the offer can still be redeemed at now
func (o *RescueOffer) IsActive(now time.Time) bool {
	return o != nil && now.Before(o.ExpiresAt)
}
