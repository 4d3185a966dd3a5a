package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/tally/internal/common/clock"
	"github.com/KirkDiggler/tally/internal/metrics"
	"github.com/KirkDiggler/tally/internal/models"
	settingsRepo "github.com/KirkDiggler/tally/internal/repositories/settings"
	walletRepo "github.com/KirkDiggler/tally/internal/repositories/wallet"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/KirkDiggler/tally/internal/services/messaging"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Subcommand and option names
const (
	subcommandRescue   = "rescue"
	subcommandStatus   = "status"
	subcommandBalance  = "balance"
	subcommandReset    = "reset"
	subcommandSettings = "settings"

	optionRestoreLives      = "restore_lives"
	optionChannel           = "channel"
	optionMaxLives          = "max_lives"
	optionSuspensionHours   = "suspension_hours"
	optionCreditsPerSuccess = "credits_per_success"
	optionEnabled           = "enabled"
)

// CountingCommand handles the /counting command
type CountingCommand struct {
	BaseCommand
	engine       counting.Service
	messaging    messaging.Service
	settingsRepo settingsRepo.Repository
	walletRepo   walletRepo.Repository
	metrics      *metrics.Metrics
	clock        clock.Clock
	guildID      string
	logger       logrus.FieldLogger
}

// CountingCommandConfig holds the dependencies of the counting command
type CountingCommandConfig struct {
	CountingService  counting.Service
	MessagingService messaging.Service
	SettingsRepo     settingsRepo.Repository
	WalletRepo       walletRepo.Repository
	Metrics          *metrics.Metrics
	Clock            clock.Clock
	GuildID          string
	Logger           logrus.FieldLogger
}

// NewCountingCommand creates a new counting command handler
func NewCountingCommand(cfg *CountingCommandConfig) *CountingCommand {
	minLives := 1.0
	minZero := 0.0

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &CountingCommand{
		BaseCommand: BaseCommand{
			Name:        "counting",
			Description: "Counting game commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandRescue,
					Description: "Pay credits to restore the count that was just lost",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandStatus,
					Description: "Show the count, the record and your lives",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandBalance,
					Description: "Show how many credits you have",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandReset,
					Description: "Start the count over from zero (admin)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        optionRestoreLives,
							Description: "Give every player who is not suspended their lives back",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandSettings,
					Description: "Change the counting game settings (admin)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         optionChannel,
							Description:  "Channel the game runs in",
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        optionMaxLives,
							Description: "Mistakes a player may make before suspension",
							MinValue:    &minLives,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        optionSuspensionHours,
							Description: "How long a player is suspended after losing all lives",
							MinValue:    &minZero,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        optionCreditsPerSuccess,
							Description: "Credits paid for every correct number",
							MinValue:    &minZero,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        optionEnabled,
							Description: "Turn the game on or off",
						},
					},
				},
			},
		},
		engine:       cfg.CountingService,
		messaging:    cfg.MessagingService,
		settingsRepo: cfg.SettingsRepo,
		walletRepo:   cfg.WalletRepo,
		metrics:      cfg.Metrics,
		clock:        cfg.Clock,
		guildID:      cfg.GuildID,
		logger:       logger,
	}
}

// Handle processes a Discord interaction for the counting command
func (c *CountingCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	// Commands only make sense inside the game's guild
	if i.Member == nil || i.Member.User == nil || i.GuildID != c.guildID {
		return RespondWithEphemeralMessage(s, i, "This command only works in the counting server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	userID := i.Member.User.ID
	username := displayName(i.Member, i.Member.User)
	subcommand := data.Options[0]

	// Handle the appropriate subcommand
	switch subcommand.Name {
	case subcommandRescue:
		return c.handleRescue(ctx, s, i, userID, username)
	case subcommandStatus:
		return c.handleStatus(ctx, s, i, userID)
	case subcommandBalance:
		return c.handleBalance(ctx, s, i, userID)
	case subcommandReset:
		if !isAdmin(i.Member) {
			return c.respondRefusal(ctx, s, i, messaging.ErrorTypeNotAllowed, username)
		}
		return c.handleReset(ctx, s, i, username, subcommand.Options)
	case subcommandSettings:
		if !isAdmin(i.Member) {
			return c.respondRefusal(ctx, s, i, messaging.ErrorTypeNotAllowed, username)
		}
		return c.handleSettings(ctx, s, i, userID, subcommand.Options)
	default:
		return errors.New("unknown subcommand")
	}
}

// handleRescue handles the rescue subcommand
func (c *CountingCommand) handleRescue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID, username string) error {
	output, err := c.engine.RequestRescue(ctx, &counting.RequestRescueInput{
		ParticipantID: userID,
	})
	if err != nil {
		c.logger.WithError(err).Error("failed to request rescue")
		return RespondWithError(s, i, "The rescue could not be processed.")
	}
	c.metrics.ObserveRescue(output)

	if output.Result != counting.RescueResultRescued {
		return c.respondRescueRefusal(ctx, s, i, output, username)
	}

	msg, err := c.messaging.GetRescueMessage(ctx, &messaging.GetRescueMessageInput{
		PlayerName:    username,
		RestoredCount: output.RestoredCount,
		CostPaid:      output.CostPaid,
	})
	if err != nil {
		return err
	}

	return RespondWithMessage(s, i, fmt.Sprintf("%s\nThe next number is %d, and it can't be you.", msg.Message, output.RestoredCount+1))
}

func (c *CountingCommand) respondRescueRefusal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, output *counting.RequestRescueOutput, username string) error {
	msg, err := c.messaging.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{
		ErrorType:  rescueErrorType(output.Result),
		PlayerName: username,
	})
	if err != nil {
		return err
	}

	return RespondWithEphemeralMessage(s, i, renderRescueRefusal(output, msg.Message))
}

func (c *CountingCommand) respondRefusal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, errorType, username string) error {
	msg, err := c.messaging.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{
		ErrorType:  errorType,
		PlayerName: username,
	})
	if err != nil {
		return err
	}

	return RespondWithEphemeralMessage(s, i, msg.Message)
}

// handleStatus handles the status subcommand
func (c *CountingCommand) handleStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	status, err := c.engine.GetStatus(ctx, &counting.GetStatusInput{
		ParticipantID: userID,
	})
	if err != nil {
		c.logger.WithError(err).Error("failed to get status")
		return RespondWithError(s, i, "Could not read the game status.")
	}

	var balance *int64
	if output, err := c.walletRepo.GetBalance(ctx, &walletRepo.GetBalanceInput{AccountID: userID}); err == nil {
		balance = &output.Balance
	}

	return RespondWithEphemeralEmbed(s, i, renderStatusEmbed(status, balance, c.clock.Now()))
}

// handleBalance handles the balance subcommand
func (c *CountingCommand) handleBalance(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	output, err := c.walletRepo.GetBalance(ctx, &walletRepo.GetBalanceInput{AccountID: userID})
	if err != nil {
		if errors.Is(err, walletRepo.ErrAccountNotFound) {
			return RespondWithEphemeralMessage(s, i, "You have 0 credits. Count correctly to earn some!")
		}
		c.logger.WithError(err).Error("failed to get balance")
		return RespondWithError(s, i, "Could not read your balance.")
	}

	return RespondWithEphemeralMessage(s, i, fmt.Sprintf("You have %d credits.", output.Balance))
}

// handleReset handles the reset subcommand
func (c *CountingCommand) handleReset(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, username string, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	restoreLives := false
	for _, opt := range options {
		if opt.Name == optionRestoreLives {
			restoreLives = opt.BoolValue()
		}
	}

	output, err := c.engine.ResetGame(ctx, &counting.ResetGameInput{RestoreLives: restoreLives})
	if err != nil {
		c.logger.WithError(err).Error("failed to reset game")
		return RespondWithError(s, i, "Could not reset the game.")
	}

	message := fmt.Sprintf("%s reset the count from %d. Start again at 1!", username, output.PreviousCount)
	if restoreLives {
		message += fmt.Sprintf(" Lives were restored for %d players.", output.LivesRestored)
	}

	return RespondWithMessage(s, i, message)
}

// handleSettings handles the settings subcommand. The new snapshot is saved
// before it is applied so a restart never reverts an acknowledged change.
func (c *CountingCommand) handleSettings(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	current, err := c.engine.GetSettings(ctx, &counting.GetSettingsInput{})
	if err != nil {
		return RespondWithError(s, i, "Could not read the current settings.")
	}

	next := mergeSettingsOptions(current.Settings, options)
	next.GuildID = c.guildID
	next.UpdatedAt = c.clock.Now()

	if err := counting.ValidateSettings(next); err != nil {
		return RespondWithError(s, i, "Those settings are not valid.")
	}

	log := c.logger.WithField("admin_id", userID)

	if err := c.settingsRepo.SaveSettings(ctx, &settingsRepo.SaveSettingsInput{Settings: next}); err != nil {
		log.WithError(err).Error("failed to save settings")
		return RespondWithError(s, i, "Could not save the settings.")
	}

	if _, err := c.engine.ApplySettings(ctx, &counting.ApplySettingsInput{Settings: next}); err != nil {
		log.WithError(err).Error("failed to apply settings")
		return RespondWithError(s, i, "Could not apply the settings.")
	}

	return RespondWithEphemeralEmbed(s, i, renderSettingsEmbed(next))
}

// mergeSettingsOptions copies current and overwrites the fields the admin set
func mergeSettingsOptions(current *models.Settings, options []*discordgo.ApplicationCommandInteractionDataOption) *models.Settings {
	next := *current

	for _, opt := range options {
		switch opt.Name {
		case optionChannel:
			next.ChannelID = opt.ChannelValue(nil).ID
		case optionMaxLives:
			next.MaxLives = int(opt.IntValue())
		case optionSuspensionHours:
			next.SuspensionHours = int(opt.IntValue())
		case optionCreditsPerSuccess:
			next.CreditsPerSuccess = opt.IntValue()
		case optionEnabled:
			next.Enabled = opt.BoolValue()
		}
	}

	return &next
}

func renderSettingsEmbed(settings *models.Settings) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Settings Saved",
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: fmt.Sprintf("<#%s>", settings.ChannelID), Inline: true},
			{Name: "Enabled", Value: fmt.Sprintf("%t", settings.Enabled), Inline: true},
			{Name: "Lives", Value: fmt.Sprintf("%d", settings.MaxLives), Inline: true},
			{Name: "Suspension", Value: plural(settings.SuspensionHours, "hour", "hours"), Inline: true},
			{Name: "Credits Per Number", Value: fmt.Sprintf("%d", settings.CreditsPerSuccess), Inline: true},
		},
	}
}

// isAdmin reports whether a member may reset the game or change settings
func isAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	return member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0
}

func rescueErrorType(result counting.RescueResult) string {
	switch result {
	case counting.RescueResultNoRecentFailure:
		return messaging.ErrorTypeNoRecentFailure
	case counting.RescueResultNothingToRescue:
		return messaging.ErrorTypeNothingToRescue
	case counting.RescueResultUnknownParticipant:
		return messaging.ErrorTypeUnknownParticipant
	case counting.RescueResultInsufficientFunds:
		return messaging.ErrorTypeInsufficientFunds
	default:
		return messaging.ErrorTypeRescueFailed
	}
}
