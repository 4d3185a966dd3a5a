package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/KirkDiggler/tally/internal/models"
	"github.com/KirkDiggler/tally/internal/services/counting/cost"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the process configuration, read from the environment
type Config struct {
	// Discord
	DiscordToken    string `env:"DISCORD_TOKEN,required,notEmpty"`
	ApplicationID   string `env:"APPLICATION_ID"`
	GuildID         string `env:"GUILD_ID,required,notEmpty"`
	GameChannelID   string `env:"GAME_CHANNEL_ID"`
	SuspendedRoleID string `env:"SUSPENDED_ROLE_ID"`

	// Storage
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	SettingsDBPath string        `env:"SETTINGS_DB_PATH" envDefault:"tally.db"`
	SnapshotTTL    time.Duration `env:"SNAPSHOT_TTL" envDefault:"720h"`

	// Observability
	MetricsAddr string       `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel    logrus.Level `env:"LOG_LEVEL" envDefault:"info"`

	// Initial game settings, used until an admin saves their own
	MaxLives          int   `env:"MAX_LIVES" envDefault:"3"`
	SuspensionHours   int   `env:"SUSPENSION_HOURS" envDefault:"24"`
	CreditsPerSuccess int64 `env:"CREDITS_PER_SUCCESS" envDefault:"1"`

	// Engine tuning
	RescueWindow       time.Duration `env:"RESCUE_WINDOW" envDefault:"5m"`
	FailureCooldown    time.Duration `env:"FAILURE_COOLDOWN" envDefault:"3s"`
	RescueBaseCost     int64         `env:"RESCUE_BASE_COST" envDefault:"10"`
	RescueCostPerCount int64         `env:"RESCUE_COST_PER_COUNT" envDefault:"1"`
	RescueMaxCost      int64         `env:"RESCUE_MAX_COST" envDefault:"0"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	CheckpointInterval time.Duration `env:"CHECKPOINT_INTERVAL" envDefault:"30s"`
}

// Load reads .env files, if present, into the environment and then parses
// the environment. Variables already set win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.SweepInterval <= 0 || cfg.CheckpointInterval <= 0 {
		return nil, errors.New("sweep and checkpoint intervals must be positive")
	}

	return &cfg, nil
}

// DefaultSettings builds the settings a guild starts with
func (c *Config) DefaultSettings(now time.Time) *models.Settings {
	return &models.Settings{
		GuildID:           c.GuildID,
		ChannelID:         c.GameChannelID,
		SuspensionHours:   c.SuspensionHours,
		CreditsPerSuccess: c.CreditsPerSuccess,
		MaxLives:          c.MaxLives,
		Enabled:           c.GameChannelID != "",
		UpdatedAt:         now,
	}
}

// CostCurve builds the rescue price curve
func (c *Config) CostCurve() cost.Curve {
	curve := cost.Linear(c.RescueBaseCost, c.RescueCostPerCount)
	if c.RescueMaxCost > 0 {
		curve = cost.Capped(curve, c.RescueMaxCost)
	}
	return curve
}
