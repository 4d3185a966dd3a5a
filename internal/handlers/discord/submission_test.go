package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/KirkDiggler/tally/internal/models"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestParseSubmission(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
		wantOK  bool
	}{
		{name: "plain number", content: "48", want: 48, wantOK: true},
		{name: "surrounding whitespace", content: "  7\n", want: 7, wantOK: true},
		{name: "leading zeros", content: "007", want: 7, wantOK: true},
		{name: "zero", content: "0", want: 0, wantOK: true},
		{name: "largest accepted", content: "999999999999999999", want: 999999999999999999, wantOK: true},
		{name: "too many digits", content: "1000000000000000000"},
		{name: "empty", content: ""},
		{name: "only whitespace", content: "   "},
		{name: "negative", content: "-3"},
		{name: "plus sign", content: "+3"},
		{name: "chatter", content: "nice one"},
		{name: "number with words", content: "48 lol"},
		{name: "decimal", content: "4.8"},
		{name: "thousands separator", content: "1,000"},
		{name: "inner space", content: "4 8"},
		{name: "non ascii digits", content: "٤٨"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSubmission(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type settingsGetterFunc func(ctx context.Context, input *counting.GetSettingsInput) (*counting.GetSettingsOutput, error)

func (f settingsGetterFunc) GetSettings(ctx context.Context, input *counting.GetSettingsInput) (*counting.GetSettingsOutput, error) {
	return f(ctx, input)
}

type ChannelGateTestSuite struct {
	suite.Suite
	settings *models.Settings
	err      error
	gate     *ChannelGate
}

func (s *ChannelGateTestSuite) SetupTest() {
	s.settings = &models.Settings{
		GuildID:   "guild",
		ChannelID: "counting",
		MaxLives:  3,
		Enabled:   true,
	}
	s.err = nil
	s.gate = NewChannelGate(settingsGetterFunc(func(context.Context, *counting.GetSettingsInput) (*counting.GetSettingsOutput, error) {
		if s.err != nil {
			return nil, s.err
		}
		return &counting.GetSettingsOutput{Settings: s.settings}, nil
	}))
}

func (s *ChannelGateTestSuite) TestGameChannel() {
	s.True(s.gate.IsGameChannel(context.Background(), "counting"))
}

func (s *ChannelGateTestSuite) TestOtherChannel() {
	s.False(s.gate.IsGameChannel(context.Background(), "general"))
}

func (s *ChannelGateTestSuite) TestEmptyChannel() {
	s.settings.ChannelID = ""
	s.False(s.gate.IsGameChannel(context.Background(), ""))
}

func (s *ChannelGateTestSuite) TestFollowsSettingsChanges() {
	s.settings = &models.Settings{ChannelID: "moved", Enabled: true}

	s.False(s.gate.IsGameChannel(context.Background(), "counting"))
	s.True(s.gate.IsGameChannel(context.Background(), "moved"))
}

func (s *ChannelGateTestSuite) TestSettingsError() {
	s.err = errors.New("boom")
	s.False(s.gate.IsGameChannel(context.Background(), "counting"))
}

func (s *ChannelGateTestSuite) TestNilSettings() {
	s.settings = nil
	s.False(s.gate.IsGameChannel(context.Background(), "counting"))
}

func TestChannelGateSuite(t *testing.T) {
	suite.Run(t, new(ChannelGateTestSuite))
}
