package counting

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KirkDiggler/tally/internal/common/clock"
	"github.com/KirkDiggler/tally/internal/common/uuid"
	"github.com/KirkDiggler/tally/internal/models"
	walletRepo "github.com/KirkDiggler/tally/internal/repositories/wallet"
	"github.com/KirkDiggler/tally/internal/services/counting/cost"
	"github.com/sirupsen/logrus"
)

const defaultCollaboratorTimeout = 5 * time.Second

// service implements the Service interface.
//
// mu guards game and participants together: sequential numbering, the
// consecutive-submitter rule and single rescue redemption all need one total
// order across every caller.
type service struct {
	mu           sync.Mutex
	game         *models.Game
	participants map[string]*models.ParticipantStatus

	settings atomic.Pointer[models.Settings]

	rescueWindow        time.Duration
	failureCooldown     time.Duration
	collaboratorTimeout time.Duration
	costCurve           cost.Curve

	walletRepo  walletRepo.Repository
	suspensions SuspensionEnforcer
	clock       clock.Clock
	uuid        uuid.UUID
	logger      logrus.FieldLogger

	// queues holds each player's suspension calls not yet sent to the platform
	queueMu sync.Mutex
	queues  map[string][]enforcement
	pending sync.WaitGroup
}

// New creates a new counting engine
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Settings == nil {
		return nil, ErrNilSettings
	}

	if err := ValidateSettings(cfg.Settings); err != nil {
		return nil, err
	}

	if cfg.WalletRepo == nil {
		return nil, ErrNilWalletRepo
	}

	if cfg.CostCurve == nil {
		return nil, ErrNilCostCurve
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	if cfg.RescueWindow <= 0 {
		return nil, ErrInvalidRescueWindow
	}

	if cfg.FailureCooldown < 0 {
		return nil, ErrNegativeCooldown
	}

	timeout := cfg.CollaboratorTimeout
	if timeout <= 0 {
		timeout = defaultCollaboratorTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &service{
		game:                &models.Game{},
		participants:        make(map[string]*models.ParticipantStatus),
		queues:              make(map[string][]enforcement),
		rescueWindow:        cfg.RescueWindow,
		failureCooldown:     cfg.FailureCooldown,
		collaboratorTimeout: timeout,
		costCurve:           cfg.CostCurve,
		walletRepo:          cfg.WalletRepo,
		suspensions:         cfg.SuspensionEnforcer,
		clock:               cfg.Clock,
		uuid:                cfg.UUIDGenerator,
		logger:              logger.WithField("component", "counting"),
	}

	settings := *cfg.Settings
	s.settings.Store(&settings)

	return s, nil
}

// ProcessSubmission evaluates a number submitted by a player
func (s *service) ProcessSubmission(ctx context.Context, input *ProcessSubmissionInput) (*ProcessSubmissionOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	if input.ParticipantID == "" {
		return nil, ErrEmptyParticipantID
	}

	// The whole call runs against the snapshot that was current when it started
	settings := s.settings.Load()
	now := s.clock.Now()

	s.mu.Lock()
	output, actions := s.evaluateSubmission(settings, input, now)
	s.enforce(actions)
	s.mu.Unlock()

	if output.Result == SubmissionResultCorrect && settings.CreditsPerSuccess > 0 {
		output.CreditsAwarded = s.payout(ctx, input.ParticipantID, settings.CreditsPerSuccess)
	}

	entry := s.logger.WithFields(logrus.Fields{
		"participant_id": input.ParticipantID,
		"number":         input.Number,
		"result":         output.Result,
		"count":          output.Count,
	})
	if output.Result.IsFailure() {
		entry.WithFields(logrus.Fields{
			"reason":     output.Reason,
			"lost_count": output.LostCount,
			"lives":      output.LivesRemaining,
		}).Info("count lost")
	} else {
		entry.Debug("submission processed")
	}

	return output, nil
}

// evaluateSubmission applies the submission rules in order. Must hold s.mu.
func (s *service) evaluateSubmission(settings *models.Settings, input *ProcessSubmissionInput, now time.Time) (*ProcessSubmissionOutput, []enforcement) {
	game := s.game

	if !settings.Enabled {
		return &ProcessSubmissionOutput{
			Result: SubmissionResultDisabled,
			Count:  game.CurrentCount,
		}, nil
	}

	var actions []enforcement

	status := s.participant(input.ParticipantID, settings.MaxLives)
	if status.SuspensionElapsed(now) {
		s.liftSuspension(status, settings.MaxLives)
		actions = append(actions, enforcement{participantID: status.ParticipantID, lift: true})
	}

	if status.IsSuspended(now) {
		until := *status.SuspendedUntil
		return &ProcessSubmissionOutput{
			Result:         SubmissionResultSuspended,
			Count:          game.CurrentCount,
			SuspendedUntil: &until,
		}, actions
	}

	if game.InCooldown(now) {
		return &ProcessSubmissionOutput{
			Result:           SubmissionResultCooldownActive,
			Count:            game.CurrentCount,
			SecondsRemaining: secondsUntil(now, game.CooldownUntil),
		}, actions
	}

	expected := game.NextNumber()

	if game.LastParticipantID == input.ParticipantID {
		output, action := s.fail(settings, status, FailureReasonConsecutiveSubmission, expected, now)
		return output, appendAction(actions, action)
	}

	if input.Number != expected {
		if game.IsFresh() {
			return &ProcessSubmissionOutput{
				Result:         SubmissionResultWrongNumberWarning,
				Count:          game.CurrentCount,
				Expected:       expected,
				LivesRemaining: status.LivesRemaining,
			}, actions
		}
		output, action := s.fail(settings, status, FailureReasonWrongNumber, expected, now)
		return output, appendAction(actions, action)
	}

	game.CurrentCount++
	game.LastParticipantID = input.ParticipantID
	newRecord := game.CurrentCount > game.HighestCount
	if newRecord {
		game.HighestCount = game.CurrentCount
	}
	game.CooldownUntil = time.Time{}
	game.UpdatedAt = now

	return &ProcessSubmissionOutput{
		Result:         SubmissionResultCorrect,
		Count:          game.CurrentCount,
		HighestCount:   game.HighestCount,
		NewRecord:      newRecord,
		Expected:       expected,
		LivesRemaining: status.LivesRemaining,
	}, actions
}

// payout credits a player for a correct number. Failures are logged only.
func (s *service) payout(ctx context.Context, participantID string, amount int64) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	_, err := s.walletRepo.Credit(ctx, &walletRepo.CreditInput{
		AccountID: participantID,
		Amount:    amount,
	})
	if err != nil {
		s.logger.WithError(err).WithField("participant_id", participantID).Warn("failed to pay credits for correct number")
		return 0
	}

	return amount
}

// ApplySettings publishes a new settings snapshot
func (s *service) ApplySettings(ctx context.Context, input *ApplySettingsInput) (*ApplySettingsOutput, error) {
	if input == nil || input.Settings == nil {
		return nil, ErrNilInput
	}

	if err := ValidateSettings(input.Settings); err != nil {
		return nil, err
	}

	next := *input.Settings
	previous := s.settings.Swap(&next)

	s.logger.WithFields(logrus.Fields{
		"channel_id":          next.ChannelID,
		"enabled":             next.Enabled,
		"max_lives":           next.MaxLives,
		"suspension_hours":    next.SuspensionHours,
		"credits_per_success": next.CreditsPerSuccess,
	}).Info("settings applied")

	return &ApplySettingsOutput{
		Previous: previous,
	}, nil
}

// ResetGame starts the count over from zero
func (s *service) ResetGame(ctx context.Context, input *ResetGameInput) (*ResetGameOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	output := &ResetGameOutput{
		PreviousCount: s.game.CurrentCount,
	}

	s.game.CurrentCount = 0
	s.game.LastParticipantID = ""
	s.game.PendingRescue = nil
	s.game.CooldownUntil = time.Time{}
	s.game.UpdatedAt = now

	if input.RestoreLives {
		// Entries are recreated with full lives on the next submission
		for id, status := range s.participants {
			if status.SuspendedUntil != nil {
				continue
			}
			delete(s.participants, id)
			output.LivesRestored++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"previous_count": output.PreviousCount,
		"lives_restored": output.LivesRestored,
	}).Info("game reset")

	return output, nil
}

// GetSettings returns the current settings snapshot. Snapshots are never
// mutated once published, so no lock is needed.
func (s *service) GetSettings(ctx context.Context, input *GetSettingsInput) (*GetSettingsOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	return &GetSettingsOutput{
		Settings: s.settings.Load(),
	}, nil
}

// GetStatus returns a copy of the game state
func (s *service) GetStatus(ctx context.Context, input *GetStatusInput) (*GetStatusOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	settings := s.settings.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	output := &GetStatusOutput{
		Game:     s.game.Clone(),
		Settings: settings,
	}

	if input.ParticipantID != "" {
		if status, ok := s.participants[input.ParticipantID]; ok {
			output.Participant = status.Clone()
			if output.Participant.LivesRemaining > settings.MaxLives {
				output.Participant.LivesRemaining = settings.MaxLives
			}
		} else {
			output.Participant = &models.ParticipantStatus{
				ParticipantID:  input.ParticipantID,
				LivesRemaining: settings.MaxLives,
			}
		}
	}

	return output, nil
}

// GetSnapshot copies the full engine state
func (s *service) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	now := s.clock.Now()

	s.mu.Lock()
	snapshot := &models.Snapshot{
		Game:         s.game.Clone(),
		Participants: make([]*models.ParticipantStatus, 0, len(s.participants)),
		TakenAt:      now,
	}
	for _, status := range s.participants {
		snapshot.Participants = append(snapshot.Participants, status.Clone())
	}
	s.mu.Unlock()

	sort.Slice(snapshot.Participants, func(i, j int) bool {
		return snapshot.Participants[i].ParticipantID < snapshot.Participants[j].ParticipantID
	})

	return &GetSnapshotOutput{
		Snapshot: snapshot,
	}, nil
}

// Restore replaces the engine state with a snapshot
func (s *service) Restore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error) {
	if input == nil || input.Snapshot == nil || input.Snapshot.Game == nil {
		return nil, ErrNilInput
	}

	game := input.Snapshot.Game.Clone()
	if game.CurrentCount < 0 || game.HighestCount < game.CurrentCount {
		return nil, ErrInvalidSnapshot
	}

	participants := make(map[string]*models.ParticipantStatus, len(input.Snapshot.Participants))
	for _, status := range input.Snapshot.Participants {
		if status == nil || status.ParticipantID == "" || status.LivesRemaining < 0 {
			return nil, ErrInvalidSnapshot
		}
		participants[status.ParticipantID] = status.Clone()
	}

	s.mu.Lock()
	s.game = game
	s.participants = participants
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"count":        game.CurrentCount,
		"participants": len(participants),
		"taken_at":     input.Snapshot.TakenAt,
	}).Info("game state restored")

	return &RestoreOutput{
		ParticipantsRestored: len(participants),
	}, nil
}

// Close waits for background suspension enforcement to finish
func (s *service) Close() error {
	s.pending.Wait()
	return nil
}

// ValidateSettings reports whether a settings snapshot can be applied
func ValidateSettings(settings *models.Settings) error {
	if settings == nil {
		return ErrNilSettings
	}
	if settings.MaxLives < 1 || settings.SuspensionHours < 0 || settings.CreditsPerSuccess < 0 {
		return ErrInvalidSettings
	}
	return nil
}

func secondsUntil(now, until time.Time) int {
	remaining := until.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

func appendAction(actions []enforcement, action *enforcement) []enforcement {
	if action == nil {
		return actions
	}
	return append(actions, *action)
}
