package discord

import (
	"testing"
	"time"

	"github.com/KirkDiggler/tally/internal/models"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestReactionFor(t *testing.T) {
	tests := map[counting.SubmissionResult]string{
		counting.SubmissionResultCorrect:            "✅",
		counting.SubmissionResultWrongNumberWarning: "⚠️",
		counting.SubmissionResultCooldownActive:     "⏳",
		counting.SubmissionResultSuspended:          "🚫",
		counting.SubmissionResultFailed:             "❌",
		counting.SubmissionResultEliminated:         "💀",
		counting.SubmissionResultDisabled:           "",
	}

	for result, want := range tests {
		t.Run(string(result), func(t *testing.T) {
			assert.Equal(t, want, reactionFor(result))
		})
	}
}

type RenderTestSuite struct {
	suite.Suite
	now time.Time
}

func (s *RenderTestSuite) SetupTest() {
	s.now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
}

func (s *RenderTestSuite) TestCorrectWithoutFlavorIsSilent() {
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result: counting.SubmissionResultCorrect,
		Count:  12,
	}, "", s.now)

	s.Empty(reply)
}

func (s *RenderTestSuite) TestCorrectWithFlavor() {
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result: counting.SubmissionResultCorrect,
		Count:  100,
	}, "One hundred!", s.now)

	s.Equal("One hundred!", reply)
}

func (s *RenderTestSuite) TestWarning() {
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result:   counting.SubmissionResultWrongNumberWarning,
		Expected: 1,
	}, "", s.now)

	s.Equal("The count starts at 1. No harm done.", reply)
}

func (s *RenderTestSuite) TestCooldown() {
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result:           counting.SubmissionResultCooldownActive,
		SecondsRemaining: 2,
	}, "", s.now)

	s.Equal("Hold on, counting resumes in 2s.", reply)
}

func (s *RenderTestSuite) TestSuspended() {
	until := s.now.Add(3 * time.Hour)
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result:         counting.SubmissionResultSuspended,
		SuspendedUntil: &until,
	}, "", s.now)

	s.Contains(reply, "suspended")
	s.Contains(reply, discordTimestamp(until))
}

func (s *RenderTestSuite) TestFailedWithOffer() {
	expires := s.now.Add(5 * time.Minute)
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result:          counting.SubmissionResultFailed,
		Reason:          counting.FailureReasonWrongNumber,
		LostCount:       47,
		LivesRemaining:  2,
		RescueCost:      57,
		RescueExpiresAt: &expires,
	}, "**Oops** the count is gone.", s.now)

	s.Contains(reply, "**Oops** the count is gone.")
	s.Contains(reply, "2 lives left.")
	s.Contains(reply, "restore the count to 47 for 57 credits")
	s.Contains(reply, discordTimestamp(expires))
}

func (s *RenderTestSuite) TestFailedWithoutOffer() {
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result:         counting.SubmissionResultFailed,
		LivesRemaining: 1,
	}, "", s.now)

	s.Equal("1 life left.", reply)
}

func (s *RenderTestSuite) TestFailedWithExpiredOffer() {
	expired := s.now.Add(-time.Second)
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result:          counting.SubmissionResultFailed,
		LivesRemaining:  1,
		RescueExpiresAt: &expired,
	}, "", s.now)

	s.NotContains(reply, "rescue")
}

func (s *RenderTestSuite) TestEliminated() {
	until := s.now.Add(24 * time.Hour)
	reply := renderSubmissionReply(&counting.ProcessSubmissionOutput{
		Result:          counting.SubmissionResultEliminated,
		SuspensionHours: 24,
		SuspendedUntil:  &until,
	}, "", s.now)

	s.Contains(reply, "Out of lives, suspended for 24 hours")
	s.Contains(reply, discordTimestamp(until))
}

func (s *RenderTestSuite) TestRescueRefusalInsufficientFunds() {
	msg := renderRescueRefusal(&counting.RequestRescueOutput{
		Result:    counting.RescueResultInsufficientFunds,
		Required:  57,
		Available: 12,
	}, "Not enough.")

	s.Equal("Not enough. The rescue costs 57 credits and you have 12.", msg)
}

func (s *RenderTestSuite) TestRescueRefusalOther() {
	msg := renderRescueRefusal(&counting.RequestRescueOutput{
		Result: counting.RescueResultNoRecentFailure,
	}, "Nothing to rescue.")

	s.Equal("Nothing to rescue.", msg)
}

func (s *RenderTestSuite) TestStatusEmbed() {
	balance := int64(42)
	status := &counting.GetStatusOutput{
		Game: &models.Game{
			CurrentCount:      48,
			LastParticipantID: "b",
			HighestCount:      120,
		},
		Settings: &models.Settings{ChannelID: "counting", MaxLives: 3, Enabled: true},
		Participant: &models.ParticipantStatus{
			ParticipantID:  "a",
			LivesRemaining: 2,
		},
	}

	embed := renderStatusEmbed(status, &balance, s.now)

	s.Equal(colorGreen, embed.Color)
	s.Equal("Counting in <#counting>", embed.Description)
	s.Equal("48", fieldValue(embed, "Count"))
	s.Equal("49", fieldValue(embed, "Next Number"))
	s.Equal("120", fieldValue(embed, "Record"))
	s.Equal("<@b>", fieldValue(embed, "Last Counter"))
	s.Equal("2/3", fieldValue(embed, "Your Lives"))
	s.Equal("42", fieldValue(embed, "Your Credits"))
	s.Empty(fieldValue(embed, "Rescue Offer"))
	s.Empty(fieldValue(embed, "Cooldown"))
}

func (s *RenderTestSuite) TestStatusEmbedWithOfferAndCooldown() {
	until := s.now.Add(time.Hour)
	status := &counting.GetStatusOutput{
		Game: &models.Game{
			CooldownUntil: s.now.Add(2 * time.Second),
			PendingRescue: &models.RescueOffer{
				FailedAtCount: 47,
				Cost:          57,
				ExpiresAt:     s.now.Add(5 * time.Minute),
			},
		},
		Settings: &models.Settings{ChannelID: "counting", MaxLives: 3, Enabled: false},
		Participant: &models.ParticipantStatus{
			ParticipantID:  "a",
			SuspendedUntil: &until,
		},
	}

	embed := renderStatusEmbed(status, nil, s.now)

	s.Equal(colorYellow, embed.Color)
	s.Equal("nobody yet", fieldValue(embed, "Last Counter"))
	s.Contains(fieldValue(embed, "Rescue Offer"), "Restore 47 for 57 credits")
	s.Contains(fieldValue(embed, "Cooldown"), "Counting resumes")
	s.Contains(fieldValue(embed, "Your Lives"), "Suspended")
	s.Empty(fieldValue(embed, "Your Credits"))
}

func (s *RenderTestSuite) TestDisplayName() {
	user := &discordgo.User{Username: "counter99", GlobalName: "Counter"}

	s.Equal("Nick", displayName(&discordgo.Member{Nick: "Nick"}, user))
	s.Equal("Counter", displayName(&discordgo.Member{}, user))
	s.Equal("counter99", displayName(nil, &discordgo.User{Username: "counter99"}))
	s.Equal("Someone", displayName(nil, nil))
}

func (s *RenderTestSuite) TestPlural() {
	s.Equal("1 life", plural(1, "life", "lives"))
	s.Equal("0 lives", plural(0, "life", "lives"))
	s.Equal("3 lives", plural(3, "life", "lives"))
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderTestSuite))
}

func fieldValue(embed *discordgo.MessageEmbed, name string) string {
	for _, f := range embed.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}
