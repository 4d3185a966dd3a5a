package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/tally/internal/common/clock"
	"github.com/KirkDiggler/tally/internal/metrics"
	settingsRepo "github.com/KirkDiggler/tally/internal/repositories/settings"
	walletRepo "github.com/KirkDiggler/tally/internal/repositories/wallet"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/KirkDiggler/tally/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const handlerTimeout = 10 * time.Second

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID

	engine    counting.Service
	messaging messaging.Service
	metrics   *metrics.Metrics
	gate      *ChannelGate

	config *Config
	logger logrus.FieldLogger
}

// Config holds the configuration for the bot
type Config struct {
	// Session is an existing Discord session. One is created from Token when nil.
	Session *discordgo.Session

	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// GuildID is the server the counting game runs in. Commands are
	// registered for this guild only.
	GuildID string

	// Services
	CountingService  counting.Service
	MessagingService messaging.Service

	// Repositories
	SettingsRepo settingsRepo.Repository
	WalletRepo   walletRepo.Repository

	// Metrics is optional
	Metrics *metrics.Metrics

	Clock  clock.Clock
	Logger logrus.FieldLogger
}

// NewSession creates a Discord session with the intents the counting game needs
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("token cannot be empty")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentMessageContent

	return session, nil
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.GuildID == "" {
		return nil, errors.New("guild ID cannot be empty")
	}

	if cfg.CountingService == nil {
		return nil, errors.New("counting service cannot be nil")
	}

	if cfg.MessagingService == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	if cfg.SettingsRepo == nil {
		return nil, errors.New("settings repository cannot be nil")
	}

	if cfg.WalletRepo == nil {
		return nil, errors.New("wallet repository cannot be nil")
	}

	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}

	session := cfg.Session
	if session == nil {
		var err error
		session, err = NewSession(cfg.Token)
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		engine:     cfg.CountingService,
		messaging:  cfg.MessagingService,
		metrics:    cfg.Metrics,
		gate:       NewChannelGate(cfg.CountingService),
		config:     cfg,
		logger:     logger.WithField("component", "discord"),
	}

	// Register the event handlers
	session.AddHandler(bot.handleInteraction)
	session.AddHandler(bot.handleMessageCreate)

	return bot, nil
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	// Open the websocket connection to Discord
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	countingCmd := NewCountingCommand(&CountingCommandConfig{
		CountingService:  b.engine,
		MessagingService: b.messaging,
		SettingsRepo:     b.config.SettingsRepo,
		WalletRepo:       b.config.WalletRepo,
		Metrics:          b.metrics,
		Clock:            b.config.Clock,
		GuildID:          b.config.GuildID,
		Logger:           b.logger,
	})
	if err := b.RegisterCommand(countingCmd); err != nil {
		return fmt.Errorf("failed to register counting command: %w", err)
	}

	b.logger.Info("bot is now running")
	return nil
}

// Run starts the bot and stops it when ctx is done
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	return b.Stop()
}

// Stop gracefully shuts down the Discord connection
func (b *Bot) Stop() error {
	appID := b.appID()

	// Remove all commands
	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			b.logger.WithError(err).WithField("command", cmdName).Warn("failed to delete command")
		} else {
			b.logger.WithField("command", cmdName).Debug("deleted command")
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	// Store the command handler and its ID
	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	b.logger.WithFields(logrus.Fields{
		"command":    cmd.GetName(),
		"command_id": createdCmd.ID,
		"guild_id":   b.config.GuildID,
	}).Info("registered command")

	return nil
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// handleInteraction handles Discord interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	if h, ok := b.commands[name]; ok {
		if err := h.Handle(s, i); err != nil {
			b.logger.WithError(err).WithField("command", name).Error("failed to handle command")
		}
	}
}

// handleMessageCreate feeds numbers posted in the game channel to the engine
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != b.config.GuildID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if !b.gate.IsGameChannel(ctx, m.ChannelID) {
		return
	}

	// Chatter in the game channel is not a submission
	number, ok := ParseSubmission(m.Content)
	if !ok {
		return
	}

	log := b.logger.WithFields(logrus.Fields{
		"participant_id": m.Author.ID,
		"message_id":     m.ID,
	})

	output, err := b.engine.ProcessSubmission(ctx, &counting.ProcessSubmissionInput{
		ParticipantID: m.Author.ID,
		Number:        number,
	})
	if err != nil {
		log.WithError(err).Error("failed to process submission")
		return
	}
	b.metrics.ObserveSubmission(output)

	if emoji := reactionFor(output.Result); emoji != "" {
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
			log.WithError(err).Warn("failed to react to submission")
		}
	}

	reply := renderSubmissionReply(output, b.submissionFlavor(ctx, displayName(m.Member, m.Author), output), b.config.Clock.Now())
	if reply == "" {
		return
	}

	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		log.WithError(err).Warn("failed to reply to submission")
	}
}

// submissionFlavor picks the joke that goes with a result, if any
func (b *Bot) submissionFlavor(ctx context.Context, name string, output *counting.ProcessSubmissionOutput) string {
	switch {
	case output.Result.IsFailure():
		msg, err := b.messaging.GetFailureMessage(ctx, &messaging.GetFailureMessageInput{
			PlayerName: name,
			Reason:     output.Reason,
			LostCount:  output.LostCount,
			Expected:   output.Expected,
			Eliminated: output.Result == counting.SubmissionResultEliminated,
		})
		if err != nil {
			return ""
		}
		return fmt.Sprintf("**%s** %s", msg.Title, msg.Message)
	case output.Result == counting.SubmissionResultCorrect:
		msg, err := b.messaging.GetMilestoneMessage(ctx, &messaging.GetMilestoneMessageInput{
			Count:        output.Count,
			HighestCount: output.HighestCount,
			NewRecord:    output.NewRecord,
		})
		if err != nil || !msg.IsMilestone {
			return ""
		}
		return msg.Message
	default:
		return ""
	}
}
