package settings

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/tally/internal/models"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	repo *sqliteRepository
	ctx  context.Context
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	db, err := Open("", nil)
	s.Require().NoError(err)

	s.repo, err = NewSQLite(&Config{DB: db})
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *SQLiteRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.repo.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())
}

func (s *SQLiteRepositoryTestSuite) TestNewSQLite_InvalidConfig() {
	repo, err := NewSQLite(nil)
	s.Error(err)
	s.Nil(repo)

	repo, err = NewSQLite(&Config{})
	s.Error(err)
	s.Nil(repo)
}

func (s *SQLiteRepositoryTestSuite) TestGetSettings_NotFound() {
	settings, err := s.repo.GetSettings(s.ctx, &GetSettingsInput{GuildID: "missing-guild"})
	s.ErrorIs(err, ErrSettingsNotFound)
	s.Nil(settings)
}

func (s *SQLiteRepositoryTestSuite) TestSaveAndGetSettings() {
	updatedAt := time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	err := s.repo.SaveSettings(s.ctx, &SaveSettingsInput{
		Settings: &models.Settings{
			GuildID:           "test-guild-id",
			ChannelID:         "test-channel-id",
			SuspensionHours:   24,
			CreditsPerSuccess: 2,
			MaxLives:          3,
			Enabled:           true,
			UpdatedAt:         updatedAt,
		},
	})
	s.Require().NoError(err)

	settings, err := s.repo.GetSettings(s.ctx, &GetSettingsInput{GuildID: "test-guild-id"})
	s.Require().NoError(err)
	s.Equal("test-channel-id", settings.ChannelID)
	s.Equal(24, settings.SuspensionHours)
	s.Equal(int64(2), settings.CreditsPerSuccess)
	s.Equal(3, settings.MaxLives)
	s.True(settings.Enabled)
	s.True(updatedAt.Equal(settings.UpdatedAt))
}

func (s *SQLiteRepositoryTestSuite) TestSaveSettings_ReplacesExisting() {
	base := &models.Settings{
		GuildID:         "test-guild-id",
		ChannelID:       "first-channel",
		SuspensionHours: 24,
		MaxLives:        3,
		Enabled:         true,
	}
	s.Require().NoError(s.repo.SaveSettings(s.ctx, &SaveSettingsInput{Settings: base}))

	next := *base
	next.ChannelID = "second-channel"
	next.MaxLives = 5
	next.Enabled = false
	s.Require().NoError(s.repo.SaveSettings(s.ctx, &SaveSettingsInput{Settings: &next}))

	settings, err := s.repo.GetSettings(s.ctx, &GetSettingsInput{GuildID: "test-guild-id"})
	s.Require().NoError(err)
	s.Equal("second-channel", settings.ChannelID)
	s.Equal(5, settings.MaxLives)
	s.False(settings.Enabled)

	var rows int64
	s.Require().NoError(s.repo.db.Model(&settingsRow{}).Count(&rows).Error)
	s.Equal(int64(1), rows)
}

func (s *SQLiteRepositoryTestSuite) TestSaveSettings_InvalidInput() {
	s.Error(s.repo.SaveSettings(s.ctx, nil))
	s.Error(s.repo.SaveSettings(s.ctx, &SaveSettingsInput{Settings: &models.Settings{}}))
}

func TestOpen_LogsDatabaseErrors(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	db, err := Open("", logger)
	require.NoError(t, err)

	repo, err := NewSQLite(&Config{DB: db})
	require.NoError(t, err)

	// A missing guild is an expected outcome and stays quiet
	_, err = repo.GetSettings(context.Background(), &GetSettingsInput{GuildID: "missing"})
	require.ErrorIs(t, err, ErrSettingsNotFound)
	assert.Empty(t, hook.AllEntries())

	require.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	assert.NotEmpty(t, hook.AllEntries())
}
