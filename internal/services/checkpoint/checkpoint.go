package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/tally/internal/repositories/game"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_engine.go github.com/KirkDiggler/tally/internal/services/checkpoint Engine

const saveTimeout = 5 * time.Second

var (
	ErrNilConfig   = errors.New("config cannot be nil")
	ErrNilEngine   = errors.New("engine cannot be nil")
	ErrNilGameRepo = errors.New("game repository cannot be nil")
	ErrEmptyGuild  = errors.New("guild ID cannot be empty")
)

// Engine is the part of the counting engine that can be checkpointed
type Engine interface {
	GetSnapshot(ctx context.Context, input *counting.GetSnapshotInput) (*counting.GetSnapshotOutput, error)
	Restore(ctx context.Context, input *counting.RestoreInput) (*counting.RestoreOutput, error)
}

// Config holds configuration for the checkpointer
type Config struct {
	Engine   Engine
	GameRepo game.Repository

	// GuildID keys the stored snapshot
	GuildID string

	Logger logrus.FieldLogger
}

// Checkpointer copies engine state into the game repository so a restart
// picks up where the game left off. It is best effort: the engine's memory
// stays authoritative and a failed save only loses progress since the last one.
type Checkpointer struct {
	engine   Engine
	gameRepo game.Repository
	guildID  string
	logger   logrus.FieldLogger
}

// New creates a new checkpointer
func New(cfg *Config) (*Checkpointer, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Engine == nil {
		return nil, ErrNilEngine
	}

	if cfg.GameRepo == nil {
		return nil, ErrNilGameRepo
	}

	if cfg.GuildID == "" {
		return nil, ErrEmptyGuild
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Checkpointer{
		engine:   cfg.Engine,
		gameRepo: cfg.GameRepo,
		guildID:  cfg.GuildID,
		logger:   logger.WithFields(logrus.Fields{"component": "checkpoint", "guild_id": cfg.GuildID}),
	}, nil
}

// Load restores the engine from the stored snapshot. It reports false when
// there was nothing to restore. A snapshot that cannot be decoded or that the
// engine rejects is deleted so no later start restores it.
func (c *Checkpointer) Load(ctx context.Context) (bool, error) {
	snapshot, err := c.gameRepo.GetSnapshot(ctx, &game.GetSnapshotInput{GuildID: c.guildID})
	if err != nil {
		if errors.Is(err, game.ErrSnapshotNotFound) {
			return false, nil
		}
		if errors.Is(err, game.ErrCorruptSnapshot) {
			c.discard(ctx)
		}
		return false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	output, err := c.engine.Restore(ctx, &counting.RestoreInput{Snapshot: snapshot})
	if err != nil {
		if errors.Is(err, counting.ErrInvalidSnapshot) {
			c.discard(ctx)
		}
		return false, fmt.Errorf("failed to restore snapshot: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"count":        snapshot.Game.CurrentCount,
		"participants": output.ParticipantsRestored,
		"taken_at":     snapshot.TakenAt,
	}).Info("restored game from checkpoint")

	return true, nil
}

func (c *Checkpointer) discard(ctx context.Context) {
	if err := c.gameRepo.DeleteSnapshot(ctx, &game.DeleteSnapshotInput{GuildID: c.guildID}); err != nil {
		c.logger.WithError(err).Warn("failed to delete unusable snapshot")
		return
	}
	c.logger.Warn("deleted unusable snapshot")
}

// Save stores the engine's current state
func (c *Checkpointer) Save(ctx context.Context) error {
	output, err := c.engine.GetSnapshot(ctx, &counting.GetSnapshotInput{})
	if err != nil {
		return fmt.Errorf("failed to snapshot engine: %w", err)
	}

	if err := c.gameRepo.SaveSnapshot(ctx, &game.SaveSnapshotInput{
		GuildID:  c.guildID,
		Snapshot: output.Snapshot,
	}); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Run saves every interval until ctx is done, then saves one last time
func (c *Checkpointer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is already cancelled, so the final save gets its own deadline
			finalCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
			defer cancel()
			if err := c.Save(finalCtx); err != nil {
				c.logger.WithError(err).Warn("final checkpoint failed")
			}
			return nil
		case <-ticker.C:
			if err := c.Save(ctx); err != nil {
				c.logger.WithError(err).Warn("checkpoint failed")
			}
		}
	}
}
