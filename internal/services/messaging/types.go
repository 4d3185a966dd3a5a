package messaging

import (
	"math/rand"

	"github.com/KirkDiggler/tally/internal/services/counting"
)

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral is a neutral tone
	ToneNeutral MessageTone = "neutral"

	// ToneFunny is a humorous tone
	ToneFunny MessageTone = "funny"

	// ToneCelebration is a celebratory tone
	ToneCelebration MessageTone = "celebration"
)

// Error types understood by GetErrorMessage
const (
	ErrorTypeNoRecentFailure    = "no_recent_failure"
	ErrorTypeNothingToRescue    = "nothing_to_rescue"
	ErrorTypeUnknownParticipant = "unknown_participant"
	ErrorTypeInsufficientFunds  = "insufficient_funds"
	ErrorTypeRescueFailed       = "rescue_failed"
	ErrorTypeNotAllowed         = "not_allowed"
)

// GetFailureMessageInput contains parameters for a failure message
type GetFailureMessageInput struct {
	// PlayerName is the name of the player who broke the count
	PlayerName string

	// Reason is why the count was lost
	Reason counting.FailureReason

	// LostCount is the count that was lost
	LostCount int64

	// Expected is the number that should have been submitted
	Expected int64

	// Eliminated is set when the player lost their last life
	Eliminated bool
}

// GetFailureMessageOutput contains the generated failure message
type GetFailureMessageOutput struct {
	Title   string
	Message string
	Tone    MessageTone
}

// GetRescueMessageInput contains parameters for a rescue message
type GetRescueMessageInput struct {
	// PlayerName is the name of the player who paid
	PlayerName string

	// RestoredCount is the count that was bought back
	RestoredCount int64

	// CostPaid is what the rescue cost
	CostPaid int64
}

// GetRescueMessageOutput contains the generated rescue message
type GetRescueMessageOutput struct {
	Message string
}

// GetMilestoneMessageInput contains parameters for a milestone message
type GetMilestoneMessageInput struct {
	// Count is the number that was just accepted
	Count int64

	// HighestCount is the channel record after the submission
	HighestCount int64

	// NewRecord is set when Count beat the previous record
	NewRecord bool
}

// GetMilestoneMessageOutput contains the generated milestone message
type GetMilestoneMessageOutput struct {
	// IsMilestone is false when the count deserves no message
	IsMilestone bool

	Message string
	Tone    MessageTone
}

// GetErrorMessageInput contains parameters for getting an error message
type GetErrorMessageInput struct {
	// ErrorType is the type of error
	ErrorType string

	// PlayerName is the name of the player who was refused
	PlayerName string
}

// GetErrorMessageOutput contains the result of getting an error message
type GetErrorMessageOutput struct {
	// Message is the generated message
	Message string

	// Tone is the tone of the message
	Tone MessageTone
}

// ServiceConfig contains configuration for the messaging service
type ServiceConfig struct {
	// Rand picks among message variants, seeded from the clock when nil
	Rand *rand.Rand

	// MilestoneInterval is how often a round number is celebrated
	MilestoneInterval int64
}
