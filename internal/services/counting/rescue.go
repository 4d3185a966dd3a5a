package counting

import (
	"context"
	"errors"
	"time"

	walletRepo "github.com/KirkDiggler/tally/internal/repositories/wallet"
	"github.com/sirupsen/logrus"
)

// RequestRescue lets a player pay to restore the most recently lost count.
//
// The wallet is called while the game lock is held so that exactly one
// request can redeem an offer. The debit always happens before the count is
// restored, and the count is restored only when the debit is confirmed.
func (s *service) RequestRescue(ctx context.Context, input *RequestRescueInput) (*RequestRescueOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	if input.ParticipantID == "" {
		return nil, ErrEmptyParticipantID
	}

	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger.WithField("participant_id", input.ParticipantID)

	offer := s.game.PendingRescue
	if !offer.IsActive(now) {
		return &RequestRescueOutput{Result: RescueResultNoRecentFailure}, nil
	}

	if s.game.CurrentCount != 0 {
		return &RequestRescueOutput{Result: RescueResultNothingToRescue}, nil
	}

	log = log.WithFields(logrus.Fields{
		"offer_id":   offer.ID,
		"failed_at":  offer.FailedAtCount,
		"offer_cost": offer.Cost,
	})

	walletCtx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	balance, err := s.walletRepo.GetBalance(walletCtx, &walletRepo.GetBalanceInput{
		AccountID: input.ParticipantID,
	})
	if err != nil {
		if errors.Is(err, walletRepo.ErrAccountNotFound) {
			return &RequestRescueOutput{Result: RescueResultUnknownParticipant}, nil
		}
		log.WithError(err).Error("failed to read balance for rescue")
		return &RequestRescueOutput{Result: RescueResultFailed}, nil
	}

	if balance.Balance < offer.Cost {
		return &RequestRescueOutput{
			Result:    RescueResultInsufficientFunds,
			Required:  offer.Cost,
			Available: balance.Balance,
		}, nil
	}

	output := &RequestRescueOutput{
		RestoredCount: offer.FailedAtCount,
		CostPaid:      offer.Cost,
	}

	if offer.Cost > 0 {
		// The balance may have been spent elsewhere since it was read, so the
		// debit re-checks it atomically
		debit, err := s.walletRepo.Debit(walletCtx, &walletRepo.DebitInput{
			AccountID: input.ParticipantID,
			Amount:    offer.Cost,
		})
		if err != nil {
			if errors.Is(err, walletRepo.ErrAccountNotFound) {
				return &RequestRescueOutput{Result: RescueResultUnknownParticipant}, nil
			}
			log.WithError(err).Error("rescue debit failed")
			return &RequestRescueOutput{Result: RescueResultFailed}, nil
		}

		if !debit.Debited {
			return &RequestRescueOutput{
				Result:    RescueResultInsufficientFunds,
				Required:  offer.Cost,
				Available: debit.Balance,
			}, nil
		}
		output.Balance = debit.Balance
	} else {
		output.Balance = balance.Balance
	}

	// The rescuer counts as the last submitter of the restored number
	s.game.CurrentCount = offer.FailedAtCount
	s.game.LastParticipantID = input.ParticipantID
	s.game.PendingRescue = nil
	s.game.CooldownUntil = time.Time{}
	s.game.UpdatedAt = now

	output.Result = RescueResultRescued

	log.WithField("balance", output.Balance).Info("count rescued")

	return output, nil
}
