package counting

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_suspension.go github.com/KirkDiggler/tally/internal/services/counting SuspensionEnforcer

// SuspensionEnforcer mirrors suspensions onto the chat platform, for example
// by granting and removing a muted role. Calls are made outside the game lock
// and their failures never change game state.
type SuspensionEnforcer interface {
	// ApplySuspension blocks a player on the platform until the given time
	ApplySuspension(ctx context.Context, participantID string, until time.Time) error

	// ClearSuspension lifts a player's block on the platform
	ClearSuspension(ctx context.Context, participantID string) error
}

// enforcement is a platform call decided inside the lock and run after it
type enforcement struct {
	participantID string
	until         time.Time
	lift          bool
}

// enforce queues suspension calls for the background. Calls for one player
// run one at a time in the order they were queued, so a lift decided after a
// suspension always reaches the platform after it. Callers hold s.mu so the
// queue order matches the order decisions were made. Close waits for the
// queues to drain.
func (s *service) enforce(actions []enforcement) {
	if s.suspensions == nil || len(actions) == 0 {
		return
	}

	s.queueMu.Lock()
	defer s.queueMu.Unlock()

	for _, action := range actions {
		queue, running := s.queues[action.participantID]
		s.queues[action.participantID] = append(queue, action)
		if !running {
			s.pending.Add(1)
			go s.drain(action.participantID)
		}
	}
}

// drain runs one player's queued calls until the queue is empty
func (s *service) drain(participantID string) {
	defer s.pending.Done()

	for {
		s.queueMu.Lock()
		queue := s.queues[participantID]
		if len(queue) == 0 {
			delete(s.queues, participantID)
			s.queueMu.Unlock()
			return
		}
		action := queue[0]
		s.queues[participantID] = queue[1:]
		s.queueMu.Unlock()

		s.runEnforcement(action)
	}
}

func (s *service) runEnforcement(action enforcement) {
	ctx, cancel := context.WithTimeout(context.Background(), s.collaboratorTimeout)
	defer cancel()

	var err error
	if action.lift {
		err = s.suspensions.ClearSuspension(ctx, action.participantID)
	} else {
		err = s.suspensions.ApplySuspension(ctx, action.participantID, action.until)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"participant_id": action.participantID,
			"lift":           action.lift,
		}).Warn("suspension enforcement failed")
	}
}
