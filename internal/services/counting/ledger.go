package counting

import (
	"time"

	"github.com/KirkDiggler/tally/internal/models"
)

// participant returns the ledger entry for a player, creating it with full
// lives on first sight. Must hold s.mu.
func (s *service) participant(participantID string, maxLives int) *models.ParticipantStatus {
	status, ok := s.participants[participantID]
	if !ok {
		status = &models.ParticipantStatus{
			ParticipantID:  participantID,
			LivesRemaining: maxLives,
		}
		s.participants[participantID] = status
	}

	// A lowered cap applies to players already tracked
	if status.LivesRemaining > maxLives {
		status.LivesRemaining = maxLives
	}

	return status
}

// liftSuspension ends an elapsed suspension and refills lives. Must hold s.mu.
func (s *service) liftSuspension(status *models.ParticipantStatus, maxLives int) {
	status.SuspendedUntil = nil
	status.LivesRemaining = maxLives
}

// fail runs the shared failure path: the player loses a life, the count is
// lost, and either a rescue offer opens or the player is suspended.
// Must hold s.mu.
func (s *service) fail(settings *models.Settings, status *models.ParticipantStatus, reason FailureReason, expected int64, now time.Time) (*ProcessSubmissionOutput, *enforcement) {
	game := s.game
	lostCount := game.CurrentCount

	if status.LivesRemaining > 0 {
		status.LivesRemaining--
	}

	game.CurrentCount = 0
	game.LastParticipantID = ""
	game.PendingRescue = nil
	game.UpdatedAt = now
	if s.failureCooldown > 0 {
		game.CooldownUntil = now.Add(s.failureCooldown)
	}

	output := &ProcessSubmissionOutput{
		Reason:         reason,
		Count:          0,
		Expected:       expected,
		LostCount:      lostCount,
		LivesRemaining: status.LivesRemaining,
	}

	if status.LivesRemaining == 0 {
		until := now.Add(settings.SuspensionDuration())
		status.SuspendedUntil = &until

		output.Result = SubmissionResultEliminated
		output.SuspensionHours = settings.SuspensionHours
		suspendedUntil := until
		output.SuspendedUntil = &suspendedUntil

		return output, &enforcement{
			participantID: status.ParticipantID,
			until:         until,
		}
	}

	output.Result = SubmissionResultFailed

	// Nothing was built up, so there is nothing to buy back
	if lostCount == 0 {
		return output, nil
	}

	offer := &models.RescueOffer{
		ID:            s.uuid.NewUUID(),
		FailedAtCount: lostCount,
		Cost:          s.costCurve(lostCount),
		FailedBy:      status.ParticipantID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.rescueWindow),
	}
	game.PendingRescue = offer

	output.RescueCost = offer.Cost
	expiresAt := offer.ExpiresAt
	output.RescueExpiresAt = &expiresAt

	return output, nil
}
