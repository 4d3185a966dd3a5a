package counting

import (
	"context"
	"time"

	"github.com/KirkDiggler/tally/internal/models"
	"github.com/sirupsen/logrus"
)

// Sweep evicts players with full lives, lifts elapsed suspensions and drops
// an expired rescue offer. The lock is taken once to find candidates and then
// once per removal, never across I/O.
func (s *service) Sweep(ctx context.Context, input *SweepInput) (*SweepOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	settings := s.settings.Load()
	now := s.clock.Now()

	s.mu.Lock()
	var candidates []string
	for id, status := range s.participants {
		if evictable(status, settings.MaxLives, now) {
			candidates = append(candidates, id)
		}
	}
	offerExpired := s.game.PendingRescue != nil && !s.game.PendingRescue.IsActive(now)
	s.mu.Unlock()

	output := &SweepOutput{}

	for _, id := range candidates {
		if ctx.Err() != nil {
			break
		}

		s.mu.Lock()
		status, ok := s.participants[id]
		if ok && evictable(status, settings.MaxLives, now) {
			if status.SuspensionElapsed(now) {
				s.enforce([]enforcement{{participantID: id, lift: true}})
				output.SuspensionsLifted++
			}
			delete(s.participants, id)
			output.ParticipantsEvicted++
		}
		s.mu.Unlock()
	}

	if offerExpired {
		s.mu.Lock()
		if offer := s.game.PendingRescue; offer != nil && !offer.IsActive(now) {
			s.game.PendingRescue = nil
			output.OffersExpired++
		}
		s.mu.Unlock()
	}

	if output.ParticipantsEvicted > 0 || output.OffersExpired > 0 {
		s.logger.WithFields(logrus.Fields{
			"evicted":        output.ParticipantsEvicted,
			"lifted":         output.SuspensionsLifted,
			"offers_expired": output.OffersExpired,
		}).Debug("sweep finished")
	}

	return output, nil
}

// RunSweeper calls Sweep every interval until ctx is done
func (s *service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx, &SweepInput{}); err != nil {
				s.logger.WithError(err).Warn("sweep failed")
			}
		}
	}
}

// evictable reports whether dropping the entry loses nothing: a recreated
// entry starts with full lives and no suspension
func evictable(status *models.ParticipantStatus, maxLives int, now time.Time) bool {
	if status.SuspendedUntil != nil {
		return status.SuspensionElapsed(now)
	}
	return status.LivesRemaining >= maxLives
}
