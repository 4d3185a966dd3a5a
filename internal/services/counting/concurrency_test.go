package counting

import (
	"fmt"
	"sync"

	walletRepo "github.com/KirkDiggler/tally/internal/repositories/wallet"
	"go.uber.org/mock/gomock"
)

func (s *CountingServiceTestSuite) TestConcurrentRescue_RedeemedOnce() {
	s.seed(10, "zed")
	output := s.submit("b", 5)
	s.Require().Equal(SubmissionResultFailed, output.Result)
	price := output.RescueCost

	s.mockWallet.EXPECT().GetBalance(gomock.Any(), gomock.Any()).
		Return(&walletRepo.GetBalanceOutput{Balance: 1000}, nil).
		Times(1)
	s.mockWallet.EXPECT().Debit(gomock.Any(), gomock.Any()).
		Return(&walletRepo.DebitOutput{Debited: true, Balance: 1000 - price}, nil).
		Times(1)

	const requesters = 20
	results := make(chan RescueResult, requesters)

	var wg sync.WaitGroup
	for i := 0; i < requesters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			output, err := s.svc.RequestRescue(s.ctx, &RequestRescueInput{
				ParticipantID: fmt.Sprintf("rescuer-%d", i),
			})
			if err != nil {
				return
			}
			results <- output.Result
		}(i)
	}
	wg.Wait()
	close(results)

	counts := make(map[RescueResult]int)
	for result := range results {
		counts[result]++
	}

	s.Equal(1, counts[RescueResultRescued])
	s.Equal(requesters-1, counts[RescueResultNoRecentFailure])
	s.Equal(int64(10), s.status("").Game.CurrentCount)
}

func (s *CountingServiceTestSuite) TestConcurrentSubmissions_OneWinnerAndFailureIsVisible() {
	s.seed(10, "zed")

	const players = 50
	results := make(chan SubmissionResult, players)

	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			output, err := s.svc.ProcessSubmission(s.ctx, &ProcessSubmissionInput{
				ParticipantID: fmt.Sprintf("player-%d", i),
				Number:        11,
			})
			if err != nil {
				return
			}
			results <- output.Result
		}(i)
	}
	wg.Wait()
	close(results)

	counts := make(map[SubmissionResult]int)
	for result := range results {
		counts[result]++
	}

	// The first 11 wins, the second breaks the count, and everyone after
	// that lands in the cooldown the failure started
	s.Equal(1, counts[SubmissionResultCorrect])
	s.Equal(1, counts[SubmissionResultFailed])
	s.Equal(players-2, counts[SubmissionResultCooldownActive])

	game := s.status("").Game
	s.Equal(int64(0), game.CurrentCount)
	s.Equal(int64(11), game.HighestCount)
	s.Require().NotNil(game.PendingRescue)
	s.Equal(int64(11), game.PendingRescue.FailedAtCount)
}

func (s *CountingServiceTestSuite) TestConcurrentReadsDuringSettingsChanges() {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			next := *s.settings
			next.MaxLives = 1 + i%3
			_, _ = s.svc.ApplySettings(s.ctx, &ApplySettingsInput{Settings: &next})
		}(i)
		go func() {
			defer wg.Done()
			output, err := s.svc.GetStatus(s.ctx, &GetStatusInput{ParticipantID: "reader"})
			if err == nil {
				s.GreaterOrEqual(output.Participant.LivesRemaining, 1)
			}
		}()
	}
	wg.Wait()
}
