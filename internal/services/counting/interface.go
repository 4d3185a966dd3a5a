package counting

import "context"

// Service defines the counting game engine. Every method that touches game
// state is serialized with every other one.
type Service interface {
	// ProcessSubmission evaluates a number submitted by a player
	ProcessSubmission(ctx context.Context, input *ProcessSubmissionInput) (*ProcessSubmissionOutput, error)

	// RequestRescue lets a player pay to restore the most recently lost count
	RequestRescue(ctx context.Context, input *RequestRescueInput) (*RequestRescueOutput, error)

	// ApplySettings publishes a new settings snapshot
	ApplySettings(ctx context.Context, input *ApplySettingsInput) (*ApplySettingsOutput, error)

	// ResetGame starts the count over from zero
	ResetGame(ctx context.Context, input *ResetGameInput) (*ResetGameOutput, error)

	// GetSettings returns the current settings snapshot without touching game state
	GetSettings(ctx context.Context, input *GetSettingsInput) (*GetSettingsOutput, error)

	// GetStatus returns a copy of the game state and optionally one player's lives
	GetStatus(ctx context.Context, input *GetStatusInput) (*GetStatusOutput, error)

	// Sweep evicts idle players, lifts elapsed suspensions and drops expired offers
	Sweep(ctx context.Context, input *SweepInput) (*SweepOutput, error)

	// GetSnapshot copies the full engine state for persistence
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error)

	// Restore replaces the engine state with a previously taken snapshot
	Restore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error)

	// Close waits for outstanding suspension enforcement calls
	Close() error
}
