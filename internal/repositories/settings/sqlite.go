package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/tally/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ErrSettingsNotFound is returned when a guild has no saved settings
var ErrSettingsNotFound = errors.New("settings not found")

// settingsRow is the table layout, one row per guild
type settingsRow struct {
	GuildID           string `gorm:"primaryKey"`
	ChannelID         string
	SuspensionHours   int
	CreditsPerSuccess int64
	MaxLives          int
	Enabled           bool
	UpdatedAt         time.Time
}

func (settingsRow) TableName() string {
	return "counting_settings"
}

const slowQueryThreshold = 200 * time.Millisecond

func wrapLogrus(logger logrus.FieldLogger) gormlogger.Interface {
	if logger == nil {
		return gormlogger.Discard
	}

	return gormlogger.New(logger.WithField("component", "settings_db"), gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Config holds configuration for the SQLite settings repository
type Config struct {
	DB *gorm.DB
}

// sqliteRepository implements the Repository interface using GORM
type sqliteRepository struct {
	db *gorm.DB
}

// Open opens the settings database at path. An empty path opens a private
// in-memory database. Slow queries and errors go to logger when one is given.
func Open(path string, logger logrus.FieldLogger) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 wrapLogrus(logger),
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings database handle: %w", err)
	}
	// Each connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// NewSQLite creates a new GORM-backed settings repository and migrates its table
func NewSQLite(cfg *Config) (*sqliteRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DB == nil {
		return nil, errors.New("database cannot be nil")
	}

	if err := cfg.DB.AutoMigrate(&settingsRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate settings table: %w", err)
	}

	return &sqliteRepository{
		db: cfg.DB,
	}, nil
}

// GetSettings retrieves the settings for a guild
func (r *sqliteRepository) GetSettings(ctx context.Context, input *GetSettingsInput) (*models.Settings, error) {
	if input == nil || input.GuildID == "" {
		return nil, errors.New("input and guild ID cannot be empty")
	}

	var row settingsRow
	result := r.db.WithContext(ctx).Where("guild_id = ?", input.GuildID).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", result.Error)
	}

	return &models.Settings{
		GuildID:           row.GuildID,
		ChannelID:         row.ChannelID,
		SuspensionHours:   row.SuspensionHours,
		CreditsPerSuccess: row.CreditsPerSuccess,
		MaxLives:          row.MaxLives,
		Enabled:           row.Enabled,
		UpdatedAt:         row.UpdatedAt,
	}, nil
}

// SaveSettings creates or replaces the settings for a guild
func (r *sqliteRepository) SaveSettings(ctx context.Context, input *SaveSettingsInput) error {
	if input == nil || input.Settings == nil {
		return errors.New("input and settings cannot be nil")
	}

	if input.Settings.GuildID == "" {
		return errors.New("guild ID cannot be empty")
	}

	row := settingsRow{
		GuildID:           input.Settings.GuildID,
		ChannelID:         input.Settings.ChannelID,
		SuspensionHours:   input.Settings.SuspensionHours,
		CreditsPerSuccess: input.Settings.CreditsPerSuccess,
		MaxLives:          input.Settings.MaxLives,
		Enabled:           input.Settings.Enabled,
		UpdatedAt:         input.Settings.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to save settings: %w", result.Error)
	}

	return nil
}
