package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/tally/internal/common/clock"
	"github.com/KirkDiggler/tally/internal/common/uuid"
	"github.com/KirkDiggler/tally/internal/config"
	"github.com/KirkDiggler/tally/internal/handlers/discord"
	"github.com/KirkDiggler/tally/internal/handlers/health"
	"github.com/KirkDiggler/tally/internal/metrics"
	"github.com/KirkDiggler/tally/internal/models"
	"github.com/KirkDiggler/tally/internal/repositories/game"
	"github.com/KirkDiggler/tally/internal/repositories/settings"
	"github.com/KirkDiggler/tally/internal/repositories/wallet"
	"github.com/KirkDiggler/tally/internal/services/checkpoint"
	"github.com/KirkDiggler/tally/internal/services/counting"
	"github.com/KirkDiggler/tally/internal/services/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&prefixed.TextFormatter{FullTimestamp: true})
	logger.SetLevel(cfg.LogLevel)
	log := logger.WithField("guild_id", cfg.GuildID)

	sysClock := clock.New()

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, shutdownTimeout)
	err = redisClient.Ping(pingCtx).Err()
	cancelPing()
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	log.WithField("addr", cfg.RedisAddr).Info("connected to redis")

	walletRepo, err := wallet.NewRedis(&wallet.Config{
		RedisClient: redisClient,
		Namespace:   cfg.GuildID,
	})
	if err != nil {
		return fmt.Errorf("creating wallet repository: %w", err)
	}

	gameRepo, err := game.NewRedis(&game.Config{
		RedisClient: redisClient,
		TTL:         cfg.SnapshotTTL,
	})
	if err != nil {
		return fmt.Errorf("creating game repository: %w", err)
	}

	// --- SQLite ---
	db, err := settings.Open(cfg.SettingsDBPath, log)
	if err != nil {
		return fmt.Errorf("opening settings database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("opening settings database: %w", err)
	}
	defer sqlDB.Close()

	settingsRepo, err := settings.NewSQLite(&settings.Config{DB: db})
	if err != nil {
		return fmt.Errorf("creating settings repository: %w", err)
	}

	initial, err := loadSettings(ctx, settingsRepo, cfg, sysClock.Now())
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"channel_id": initial.ChannelID,
		"enabled":    initial.Enabled,
	}).Info("loaded settings")

	// --- Discord ---
	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}

	var enforcer counting.SuspensionEnforcer
	if cfg.SuspendedRoleID != "" {
		enforcer, err = discord.NewRoleEnforcer(&discord.RoleEnforcerConfig{
			Roles:   session,
			GuildID: cfg.GuildID,
			RoleID:  cfg.SuspendedRoleID,
			Logger:  log,
		})
		if err != nil {
			return fmt.Errorf("creating role enforcer: %w", err)
		}
	} else {
		log.Warn("SUSPENDED_ROLE_ID not set, suspensions are only enforced by the engine")
	}

	// --- Engine ---
	engine, err := counting.New(&counting.Config{
		Settings:           initial,
		RescueWindow:       cfg.RescueWindow,
		FailureCooldown:    cfg.FailureCooldown,
		CostCurve:          cfg.CostCurve(),
		WalletRepo:         walletRepo,
		SuspensionEnforcer: enforcer,
		Clock:              sysClock,
		UUIDGenerator:      uuid.New(),
		Logger:             log,
	})
	if err != nil {
		return fmt.Errorf("creating counting engine: %w", err)
	}
	defer engine.Close()

	checkpointer, err := checkpoint.New(&checkpoint.Config{
		Engine:   engine,
		GameRepo: gameRepo,
		GuildID:  cfg.GuildID,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("creating checkpointer: %w", err)
	}

	if restored, err := checkpointer.Load(ctx); err != nil {
		log.WithError(err).Warn("could not restore game, starting fresh")
	} else if restored {
		log.Info("restored game from checkpoint")
	}

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{})
	if err != nil {
		return fmt.Errorf("creating messaging service: %w", err)
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(metrics.NewGameCollector(engine))
	gameMetrics := metrics.New(reg)

	healthHandler := health.NewHandler(log, map[string]health.Checker{
		"redis": health.CheckerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
		"sqlite": health.CheckerFunc(sqlDB.PingContext),
	})
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           health.NewRouter(healthHandler, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	bot, err := discord.New(&discord.Config{
		Session:          session,
		ApplicationID:    cfg.ApplicationID,
		GuildID:          cfg.GuildID,
		CountingService:  engine,
		MessagingService: messagingSvc,
		SettingsRepo:     settingsRepo,
		WalletRepo:       walletRepo,
		Metrics:          gameMetrics,
		Clock:            sysClock,
		Logger:           log,
	})
	if err != nil {
		return fmt.Errorf("creating discord bot: %w", err)
	}

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	g.Go(func() error {
		return engine.RunSweeper(gctx, cfg.SweepInterval)
	})

	g.Go(func() error {
		return checkpointer.Run(gctx, cfg.CheckpointInterval)
	})

	g.Go(func() error {
		log.WithField("addr", cfg.MetricsAddr).Info("starting metrics and health server")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("tally has been shut down")
	return err
}

// loadSettings returns the saved settings, seeding them from the environment
// the first time the bot runs in a guild
func loadSettings(ctx context.Context, repo settings.Repository, cfg *config.Config, now time.Time) (*models.Settings, error) {
	saved, err := repo.GetSettings(ctx, &settings.GetSettingsInput{GuildID: cfg.GuildID})
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, settings.ErrSettingsNotFound) {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	initial := cfg.DefaultSettings(now)
	if err := counting.ValidateSettings(initial); err != nil {
		return nil, fmt.Errorf("invalid initial settings: %w", err)
	}

	if err := repo.SaveSettings(ctx, &settings.SaveSettingsInput{Settings: initial}); err != nil {
		return nil, fmt.Errorf("saving initial settings: %w", err)
	}

	return initial, nil
}
