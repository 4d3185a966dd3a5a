package messaging

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/stretchr/testify/suite"
)

type MessagingServiceTestSuite struct {
	suite.Suite
	service Service
	ctx     context.Context
}

func TestMessagingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MessagingServiceTestSuite))
}

func (s *MessagingServiceTestSuite) SetupTest() {
	svc, err := NewService(&ServiceConfig{
		Rand:              rand.New(rand.NewSource(42)),
		MilestoneInterval: 100,
	})
	s.Require().NoError(err)
	s.service = svc
	s.ctx = context.Background()
}

func (s *MessagingServiceTestSuite) TestNilInput() {
	_, err := s.service.GetFailureMessage(s.ctx, nil)
	s.Error(err)

	_, err = s.service.GetRescueMessage(s.ctx, nil)
	s.Error(err)

	_, err = s.service.GetMilestoneMessage(s.ctx, nil)
	s.Error(err)

	_, err = s.service.GetErrorMessage(s.ctx, nil)
	s.Error(err)
}

func (s *MessagingServiceTestSuite) TestGetFailureMessage_WrongNumber() {
	output, err := s.service.GetFailureMessage(s.ctx, &GetFailureMessageInput{
		PlayerName: "Bob",
		Reason:     counting.FailureReasonWrongNumber,
		LostCount:  48,
		Expected:   49,
	})
	s.Require().NoError(err)
	s.NotEmpty(output.Title)
	s.Contains(output.Message, "Bob")
	s.Contains(output.Message, "49")
	s.Contains(output.Message, "The count was at 48.")
}

func (s *MessagingServiceTestSuite) TestGetFailureMessage_Consecutive() {
	output, err := s.service.GetFailureMessage(s.ctx, &GetFailureMessageInput{
		PlayerName: "Alice",
		Reason:     counting.FailureReasonConsecutiveSubmission,
		LostCount:  10,
		Expected:   11,
	})
	s.Require().NoError(err)
	s.Contains(output.Message, "Alice")
	s.NotContains(output.Message, "11")
}

func (s *MessagingServiceTestSuite) TestGetFailureMessage_Eliminated() {
	output, err := s.service.GetFailureMessage(s.ctx, &GetFailureMessageInput{
		PlayerName: "Dana",
		Reason:     counting.FailureReasonWrongNumber,
		Eliminated: true,
	})
	s.Require().NoError(err)
	s.Contains([]string{"Out of Lives!", "Benched!", "Game Over, Man!"}, output.Title)
	s.Contains(output.Message, "Dana")
	s.NotContains(output.Message, "The count was at")
}

func (s *MessagingServiceTestSuite) TestGetRescueMessage() {
	output, err := s.service.GetRescueMessage(s.ctx, &GetRescueMessageInput{
		PlayerName:    "Carol",
		RestoredCount: 48,
		CostPaid:      106,
	})
	s.Require().NoError(err)
	s.Contains(output.Message, "Carol")
	s.Contains(output.Message, "48")
	s.Contains(output.Message, "106")
}

func (s *MessagingServiceTestSuite) TestGetMilestoneMessage() {
	testCases := []struct {
		name        string
		input       *GetMilestoneMessageInput
		isMilestone bool
	}{
		{"ordinary number", &GetMilestoneMessageInput{Count: 42, HighestCount: 80}, false},
		{"round number", &GetMilestoneMessageInput{Count: 200, HighestCount: 500}, true},
		{"round record", &GetMilestoneMessageInput{Count: 300, HighestCount: 300, NewRecord: true}, true},
		{"zero", &GetMilestoneMessageInput{Count: 0, HighestCount: 300}, false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			output, err := s.service.GetMilestoneMessage(s.ctx, tc.input)
			s.Require().NoError(err)
			s.Equal(tc.isMilestone, output.IsMilestone)
			if tc.isMilestone {
				s.Contains(output.Message, fmt.Sprint(tc.input.Count))
			} else {
				s.Empty(output.Message)
			}
		})
	}
}

func (s *MessagingServiceTestSuite) TestGetErrorMessage() {
	for _, errorType := range []string{
		ErrorTypeNoRecentFailure,
		ErrorTypeNothingToRescue,
		ErrorTypeUnknownParticipant,
		ErrorTypeInsufficientFunds,
		ErrorTypeRescueFailed,
		ErrorTypeNotAllowed,
		"something_else",
	} {
		output, err := s.service.GetErrorMessage(s.ctx, &GetErrorMessageInput{ErrorType: errorType})
		s.Require().NoError(err)
		s.NotEmpty(output.Message, errorType)
	}
}
