package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// RoleManager is the part of a Discord session that grants and revokes roles.
// *discordgo.Session satisfies it.
type RoleManager interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleEnforcer suspends players by giving them a role that cannot post in the
// game channel
type RoleEnforcer struct {
	roles   RoleManager
	guildID string
	roleID  string
	logger  logrus.FieldLogger
}

// RoleEnforcerConfig holds the dependencies of a RoleEnforcer
type RoleEnforcerConfig struct {
	Roles   RoleManager
	GuildID string
	RoleID  string
	Logger  logrus.FieldLogger
}

// NewRoleEnforcer creates a suspension enforcer backed by a guild role
func NewRoleEnforcer(cfg *RoleEnforcerConfig) (*RoleEnforcer, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Roles == nil {
		return nil, errors.New("role manager cannot be nil")
	}

	if cfg.GuildID == "" || cfg.RoleID == "" {
		return nil, errors.New("guild ID and role ID are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &RoleEnforcer{
		roles:   cfg.Roles,
		guildID: cfg.GuildID,
		roleID:  cfg.RoleID,
		logger:  logger.WithField("component", "role_enforcer"),
	}, nil
}

// ApplySuspension gives the participant the suspended role
func (e *RoleEnforcer) ApplySuspension(ctx context.Context, participantID string, until time.Time) error {
	reason := fmt.Sprintf("Out of counting lives until %s", until.UTC().Format(time.RFC3339))

	if err := e.roles.GuildMemberRoleAdd(e.guildID, participantID, e.roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)); err != nil {
		return fmt.Errorf("failed to add suspended role to %s: %w", participantID, err)
	}

	e.logger.WithFields(logrus.Fields{
		"participant_id": participantID,
		"until":          until,
	}).Info("suspended role added")

	return nil
}

// ClearSuspension takes the suspended role away
func (e *RoleEnforcer) ClearSuspension(ctx context.Context, participantID string) error {
	if err := e.roles.GuildMemberRoleRemove(e.guildID, participantID, e.roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason("Counting suspension over")); err != nil {
		return fmt.Errorf("failed to remove suspended role from %s: %w", participantID, err)
	}

	e.logger.WithField("participant_id", participantID).Info("suspended role removed")

	return nil
}
