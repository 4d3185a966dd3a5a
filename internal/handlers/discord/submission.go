package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/KirkDiggler/tally/internal/services/counting"
)

// maxSubmissionDigits keeps parsed numbers inside int64
const maxSubmissionDigits = 18

// ParseSubmission reads a message as a counting submission. Only a bare
// non-negative integer counts; anything else is chatter.
func ParseSubmission(content string) (int64, bool) {
	text := strings.TrimSpace(content)
	if text == "" || len(text) > maxSubmissionDigits {
		return 0, false
	}

	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	number, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}

	return number, true
}

// SettingsGetter reads the engine's current settings
type SettingsGetter interface {
	GetSettings(ctx context.Context, input *counting.GetSettingsInput) (*counting.GetSettingsOutput, error)
}

// ChannelGate decides whether a channel hosts the counting game
type ChannelGate struct {
	settings SettingsGetter
}

// NewChannelGate creates a gate that follows the engine's settings
func NewChannelGate(settings SettingsGetter) *ChannelGate {
	return &ChannelGate{settings: settings}
}

// IsGameChannel reports whether messages in channelID are submissions
func (g *ChannelGate) IsGameChannel(ctx context.Context, channelID string) bool {
	if channelID == "" {
		return false
	}

	output, err := g.settings.GetSettings(ctx, &counting.GetSettingsInput{})
	if err != nil || output.Settings == nil {
		return false
	}

	return output.Settings.ChannelID == channelID
}
