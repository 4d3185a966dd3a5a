package counting

import (
	"time"

	"github.com/KirkDiggler/tally/internal/common/clock"
	"github.com/KirkDiggler/tally/internal/common/uuid"
	"github.com/KirkDiggler/tally/internal/models"
	walletRepo "github.com/KirkDiggler/tally/internal/repositories/wallet"
	"github.com/KirkDiggler/tally/internal/services/counting/cost"
	"github.com/sirupsen/logrus"
)

// SubmissionResult is the outcome of evaluating a submitted number
type SubmissionResult string

const (
	// SubmissionResultDisabled indicates the game is switched off
	SubmissionResultDisabled SubmissionResult = "disabled"

	// SubmissionResultSuspended indicates the player is serving a suspension
	SubmissionResultSuspended SubmissionResult = "suspended"

	// SubmissionResultCooldownActive indicates the game is pausing after a failure
	SubmissionResultCooldownActive SubmissionResult = "cooldown_active"

	// SubmissionResultCorrect indicates the number was accepted
	SubmissionResultCorrect SubmissionResult = "correct"

	// SubmissionResultWrongNumberWarning indicates a wrong first number after a
	// reset, which costs nothing
	SubmissionResultWrongNumberWarning SubmissionResult = "wrong_number_warning"

	// SubmissionResultFailed indicates the count was lost and the player still has lives
	SubmissionResultFailed SubmissionResult = "failed"

	// SubmissionResultEliminated indicates the count was lost with the player's last life
	SubmissionResultEliminated SubmissionResult = "eliminated"
)

// IsFailure reports whether the submission lost the count
func (r SubmissionResult) IsFailure() bool {
	return r == SubmissionResultFailed || r == SubmissionResultEliminated
}

// FailureReason tags why a submission lost the count
type FailureReason string

const (
	// FailureReasonConsecutiveSubmission indicates the player counted twice in a row
	FailureReasonConsecutiveSubmission FailureReason = "consecutive_submission"

	// FailureReasonWrongNumber indicates the number was not the next one
	FailureReasonWrongNumber FailureReason = "wrong_number"
)

// RescueResult is the outcome of a rescue request
type RescueResult string

const (
	// RescueResultRescued indicates the count was restored
	RescueResultRescued RescueResult = "rescued"

	// RescueResultNoRecentFailure indicates there is no unexpired offer
	RescueResultNoRecentFailure RescueResult = "no_recent_failure"

	// RescueResultNothingToRescue indicates counting already started again
	RescueResultNothingToRescue RescueResult = "nothing_to_rescue"

	// RescueResultUnknownParticipant indicates the requester has no wallet
	RescueResultUnknownParticipant RescueResult = "unknown_participant"

	// RescueResultInsufficientFunds indicates the requester cannot pay
	RescueResultInsufficientFunds RescueResult = "insufficient_funds"

	// RescueResultFailed indicates the wallet could not complete the payment
	RescueResultFailed RescueResult = "failed"
)

// Config holds configuration for the counting engine
type Config struct {
	// Settings is the snapshot the engine starts with
	Settings *models.Settings

	// RescueWindow is how long a rescue offer stays open
	RescueWindow time.Duration

	// FailureCooldown pauses the game after a failure, zero disables it
	FailureCooldown time.Duration

	// CollaboratorTimeout bounds calls to the wallet and the suspension enforcer
	CollaboratorTimeout time.Duration

	// CostCurve prices rescues from the lost count
	CostCurve cost.Curve

	// Repository dependencies
	WalletRepo walletRepo.Repository

	// Service dependencies
	SuspensionEnforcer SuspensionEnforcer
	Clock              clock.Clock
	UUIDGenerator      uuid.UUID
	Logger             logrus.FieldLogger
}

// ProcessSubmissionInput contains a number submitted by a player
type ProcessSubmissionInput struct {
	// ParticipantID is the Discord user ID of the player
	ParticipantID string

	// Number is the value the player submitted
	Number int64
}

// ProcessSubmissionOutput contains the result of evaluating a submission
type ProcessSubmissionOutput struct {
	Result SubmissionResult

	// Reason is set when Result is a failure
	Reason FailureReason

	// Count is the current count after the submission
	Count int64

	// HighestCount is the channel record after the submission
	HighestCount int64

	// NewRecord is set when a correct number beat the previous record
	NewRecord bool

	// Expected is the number that should have been submitted
	Expected int64

	// LostCount is the count that was lost by a failure
	LostCount int64

	// Lives and suspension information
	LivesRemaining  int
	SuspensionHours int
	SuspendedUntil  *time.Time

	// Rescue offer opened by a failure
	RescueCost      int64
	RescueExpiresAt *time.Time

	// SecondsRemaining is how long the cooldown still runs
	SecondsRemaining int

	// CreditsAwarded is what the player was paid for a correct number
	CreditsAwarded int64
}

// RequestRescueInput contains parameters for redeeming a rescue offer
type RequestRescueInput struct {
	// ParticipantID is the Discord user ID of the paying player
	ParticipantID string
}

// RequestRescueOutput contains the result of a rescue request
type RequestRescueOutput struct {
	Result RescueResult

	// RestoredCount is the count after a successful rescue
	RestoredCount int64

	// CostPaid is what the rescue cost
	CostPaid int64

	// Required and Available are set for insufficient funds
	Required  int64
	Available int64

	// Balance is the requester's balance after paying
	Balance int64
}

// ApplySettingsInput contains the snapshot to publish
type ApplySettingsInput struct {
	Settings *models.Settings
}

// ApplySettingsOutput contains the snapshot that was replaced
type ApplySettingsOutput struct {
	Previous *models.Settings
}

// ResetGameInput contains parameters for resetting the count
type ResetGameInput struct {
	// RestoreLives gives every player who is not suspended their full lives back
	RestoreLives bool
}

// ResetGameOutput contains the result of a reset
type ResetGameOutput struct {
	// PreviousCount is the count before the reset
	PreviousCount int64

	// LivesRestored is how many players had their lives restored
	LivesRestored int
}

// GetSettingsInput contains parameters for reading the settings
type GetSettingsInput struct{}

// GetSettingsOutput contains the current settings snapshot
type GetSettingsOutput struct {
	Settings *models.Settings
}

// GetStatusInput contains parameters for reading the game state
type GetStatusInput struct {
	// ParticipantID optionally selects a player whose lives to report
	ParticipantID string
}

// GetStatusOutput contains a copy of the game state
type GetStatusOutput struct {
	Game     *models.Game
	Settings *models.Settings

	// Participant is the selected player's status, with full lives if the
	// engine is not tracking them
	Participant *models.ParticipantStatus
}

// SweepInput contains parameters for a sweep
type SweepInput struct{}

// SweepOutput reports what a sweep removed
type SweepOutput struct {
	ParticipantsEvicted int
	SuspensionsLifted   int
	OffersExpired       int
}

// GetSnapshotInput contains parameters for copying engine state
type GetSnapshotInput struct{}

// GetSnapshotOutput contains the copied engine state
type GetSnapshotOutput struct {
	Snapshot *models.Snapshot
}

// RestoreInput contains a snapshot to load into the engine
type RestoreInput struct {
	Snapshot *models.Snapshot
}

// RestoreOutput contains the result of a restore
type RestoreOutput struct {
	ParticipantsRestored int
}
