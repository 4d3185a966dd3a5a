package messaging

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/KirkDiggler/tally/internal/services/counting"
)

const defaultMilestoneInterval = 100

// service implements the Service interface
type service struct {
	// Random number generator for selecting random messages.
	// *rand.Rand is not safe for concurrent use.
	mu   sync.Mutex
	rand *rand.Rand

	milestoneInterval int64
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	if config == nil {
		config = &ServiceConfig{}
	}

	r := config.Rand
	if r == nil {
		// Create a new random source with the current time as seed
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	interval := config.MilestoneInterval
	if interval <= 0 {
		interval = defaultMilestoneInterval
	}

	return &service{
		rand:              r,
		milestoneInterval: interval,
	}, nil
}

func (s *service) pick(options []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return options[s.rand.Intn(len(options))]
}

// GetFailureMessage returns a message for a player who lost the count
func (s *service) GetFailureMessage(ctx context.Context, input *GetFailureMessageInput) (*GetFailureMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var titles, messages []string

	switch {
	case input.Eliminated:
		titles = []string{
			"Out of Lives!",
			"Benched!",
			"Game Over, Man!",
		}
		messages = []string{
			fmt.Sprintf("%s just spent their last life. Take a seat and think about what you did.", input.PlayerName),
			fmt.Sprintf("That's the last strike for %s. See you on the other side of the timeout.", input.PlayerName),
			fmt.Sprintf("%s has been escorted out of the counting channel. Nobody saw it coming. Everybody saw it coming.", input.PlayerName),
		}
	case input.Reason == counting.FailureReasonConsecutiveSubmission:
		titles = []string{
			"Wait Your Turn!",
			"Double Dipping!",
			"Solo Act Cancelled!",
		}
		messages = []string{
			fmt.Sprintf("%s tried to count twice in a row. It's a group activity, champ.", input.PlayerName),
			fmt.Sprintf("Easy there, %s! Let someone else have a number.", input.PlayerName),
			fmt.Sprintf("%s counted back to back and took the whole channel down with them.", input.PlayerName),
		}
	default:
		titles = []string{
			"Wrong Number!",
			"Math Is Hard!",
			"Count Broken!",
		}
		messages = []string{
			fmt.Sprintf("%s forgot that %d comes next. Back to zero we go.", input.PlayerName, input.Expected),
			fmt.Sprintf("Somebody get %s an abacus. The next number was %d.", input.PlayerName, input.Expected),
			fmt.Sprintf("%s looked at %d and said \"nah\". Count reset.", input.PlayerName, input.Expected),
		}
	}

	message := s.pick(messages)
	if input.LostCount > 0 {
		message = fmt.Sprintf("%s The count was at %d.", message, input.LostCount)
	}

	return &GetFailureMessageOutput{
		Title:   s.pick(titles),
		Message: message,
		Tone:    ToneFunny,
	}, nil
}

// GetRescueMessage returns a message for a player who bought the count back
func (s *service) GetRescueMessage(ctx context.Context, input *GetRescueMessageInput) (*GetRescueMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	messages := []string{
		fmt.Sprintf("%s paid %d credits and dragged the count back to %d. Hero.", input.PlayerName, input.CostPaid, input.RestoredCount),
		fmt.Sprintf("Saved! %s spent %d credits to bring back %d.", input.PlayerName, input.CostPaid, input.RestoredCount),
		fmt.Sprintf("The count lives again at %d, courtesy of %s and %d credits.", input.RestoredCount, input.PlayerName, input.CostPaid),
	}

	return &GetRescueMessageOutput{
		Message: s.pick(messages),
	}, nil
}

// GetMilestoneMessage returns a celebration for round numbers and records
func (s *service) GetMilestoneMessage(ctx context.Context, input *GetMilestoneMessageInput) (*GetMilestoneMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	if input.Count <= 0 || input.Count%s.milestoneInterval != 0 {
		return &GetMilestoneMessageOutput{IsMilestone: false}, nil
	}

	var messages []string
	if input.NewRecord {
		messages = []string{
			fmt.Sprintf("%d! The channel has never counted this high.", input.Count),
			fmt.Sprintf("New record: %d. Keep it going!", input.Count),
		}
	} else {
		messages = []string{
			fmt.Sprintf("%d! Nice round number. The record is still %d.", input.Count, input.HighestCount),
			fmt.Sprintf("We made it to %d without anyone embarrassing themselves.", input.Count),
		}
	}

	return &GetMilestoneMessageOutput{
		IsMilestone: true,
		Message:     s.pick(messages),
		Tone:        ToneCelebration,
	}, nil
}

// GetErrorMessage returns a user-friendly message for a refused request
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var messages []string

	switch input.ErrorType {
	case ErrorTypeNoRecentFailure:
		messages = []string{
			"There's nothing to rescue right now. Either nobody messed up or you were too slow.",
			"No recent failure to buy back. The rescue window may have closed.",
		}
	case ErrorTypeNothingToRescue:
		messages = []string{
			"Counting already started again, so the old count is gone for good.",
			"Too late! Someone already started a new count.",
		}
	case ErrorTypeUnknownParticipant:
		messages = []string{
			"You don't have a wallet yet. Count a few numbers to earn some credits first.",
			"I can't find any credits for you. Correct numbers earn credits!",
		}
	case ErrorTypeInsufficientFunds:
		messages = []string{
			"You can't afford this rescue.",
			"Your wallet says no.",
		}
	case ErrorTypeNotAllowed:
		messages = []string{
			"You need the Manage Server permission to do that.",
		}
	default:
		messages = []string{
			"Something went wrong talking to the bank. Try again in a moment.",
			"The rescue didn't go through. No credits were taken.",
		}
	}

	return &GetErrorMessageOutput{
		Message: s.pick(messages),
		Tone:    ToneNeutral,
	}, nil
}
