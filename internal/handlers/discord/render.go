package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/bwmarrin/discordgo"
)

const (
	colorGreen  = 0x00ff00
	colorRed    = 0xff0000
	colorYellow = 0xffcc00
)

// reactionFor returns the emoji used to acknowledge a submission
func reactionFor(result counting.SubmissionResult) string {
	switch result {
	case counting.SubmissionResultCorrect:
		return "✅"
	case counting.SubmissionResultWrongNumberWarning:
		return "⚠️"
	case counting.SubmissionResultCooldownActive:
		return "⏳"
	case counting.SubmissionResultSuspended:
		return "🚫"
	case counting.SubmissionResultFailed:
		return "❌"
	case counting.SubmissionResultEliminated:
		return "💀"
	default:
		return ""
	}
}

// discordTimestamp renders t as a relative time in the reader's client
func discordTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// renderSubmissionReply builds the reply to a submission, empty when the
// reaction says enough
func renderSubmissionReply(output *counting.ProcessSubmissionOutput, flavor string, now time.Time) string {
	var lines []string
	if flavor != "" {
		lines = append(lines, flavor)
	}

	switch output.Result {
	case counting.SubmissionResultWrongNumberWarning:
		lines = append(lines, fmt.Sprintf("The count starts at %d. No harm done.", output.Expected))
	case counting.SubmissionResultCooldownActive:
		lines = append(lines, fmt.Sprintf("Hold on, counting resumes in %ds.", output.SecondsRemaining))
	case counting.SubmissionResultSuspended:
		if output.SuspendedUntil != nil {
			lines = append(lines, fmt.Sprintf("You're suspended from counting, back %s.", discordTimestamp(*output.SuspendedUntil)))
		}
	case counting.SubmissionResultFailed:
		lines = append(lines, fmt.Sprintf("%s left.", plural(output.LivesRemaining, "life", "lives")))
		if output.RescueExpiresAt != nil && output.RescueExpiresAt.After(now) {
			lines = append(lines, fmt.Sprintf(
				"Anyone can restore the count to %d for %d credits with `/counting rescue`, offer ends %s.",
				output.LostCount, output.RescueCost, discordTimestamp(*output.RescueExpiresAt),
			))
		}
	case counting.SubmissionResultEliminated:
		line := fmt.Sprintf("Out of lives, suspended for %s.", plural(output.SuspensionHours, "hour", "hours"))
		if output.SuspendedUntil != nil {
			line = fmt.Sprintf("Out of lives, suspended for %s, back %s.",
				plural(output.SuspensionHours, "hour", "hours"), discordTimestamp(*output.SuspendedUntil))
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// renderRescueRefusal describes a refused rescue to the requester
func renderRescueRefusal(output *counting.RequestRescueOutput, flavor string) string {
	if output.Result == counting.RescueResultInsufficientFunds {
		return fmt.Sprintf("%s The rescue costs %d credits and you have %d.", flavor, output.Required, output.Available)
	}
	return flavor
}

// renderStatusEmbed shows the game state and the caller's own standing
func renderStatusEmbed(status *counting.GetStatusOutput, balance *int64, now time.Time) *discordgo.MessageEmbed {
	game := status.Game

	lastCounter := "nobody yet"
	if game.LastParticipantID != "" {
		lastCounter = fmt.Sprintf("<@%s>", game.LastParticipantID)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Count", Value: fmt.Sprintf("%d", game.CurrentCount), Inline: true},
		{Name: "Next Number", Value: fmt.Sprintf("%d", game.NextNumber()), Inline: true},
		{Name: "Record", Value: fmt.Sprintf("%d", game.HighestCount), Inline: true},
		{Name: "Last Counter", Value: lastCounter, Inline: true},
	}

	if game.PendingRescue.IsActive(now) {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Rescue Offer",
			Value: fmt.Sprintf("Restore %d for %d credits, ends %s",
				game.PendingRescue.FailedAtCount, game.PendingRescue.Cost, discordTimestamp(game.PendingRescue.ExpiresAt)),
		})
	}

	if game.InCooldown(now) {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Cooldown",
			Value: fmt.Sprintf("Counting resumes %s", discordTimestamp(game.CooldownUntil)),
		})
	}

	if p := status.Participant; p != nil {
		lives := fmt.Sprintf("%d/%d", p.LivesRemaining, status.Settings.MaxLives)
		if p.IsSuspended(now) {
			lives = fmt.Sprintf("Suspended, back %s", discordTimestamp(*p.SuspendedUntil))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Your Lives", Value: lives, Inline: true})
	}

	if balance != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Your Credits", Value: fmt.Sprintf("%d", *balance), Inline: true})
	}

	color := colorGreen
	description := fmt.Sprintf("Counting in <#%s>", status.Settings.ChannelID)
	if !status.Settings.Enabled {
		color = colorYellow
		description = "The counting game is switched off."
	}

	return &discordgo.MessageEmbed{
		Title:       "Counting Game",
		Description: description,
		Color:       color,
		Fields:      fields,
	}
}

// displayName prefers the server nickname over the account name
func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return "Someone"
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, many)
}
