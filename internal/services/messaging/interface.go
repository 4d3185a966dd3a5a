package messaging

import "context"

// Service is the interface for the messaging service
type Service interface {
	// GetFailureMessage returns a message for a player who lost the count
	GetFailureMessage(ctx context.Context, input *GetFailureMessageInput) (*GetFailureMessageOutput, error)

	// GetRescueMessage returns a message for a player who bought the count back
	GetRescueMessage(ctx context.Context, input *GetRescueMessageInput) (*GetRescueMessageOutput, error)

	// GetMilestoneMessage returns a celebration for round numbers and records
	GetMilestoneMessage(ctx context.Context, input *GetMilestoneMessageInput) (*GetMilestoneMessageOutput, error)

	// GetErrorMessage returns a user-friendly message for a refused request
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
