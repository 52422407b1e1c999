// Package main is the entry point for the Pokémon guessing bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pokemon-guess-bot/internal/bot"
	"pokemon-guess-bot/internal/config"
	"pokemon-guess-bot/internal/game/daily"
	"pokemon-guess-bot/internal/game/session"
	"pokemon-guess-bot/internal/pkg/db"
	"pokemon-guess-bot/internal/pkg/lock"
	"pokemon-guess-bot/internal/pokedex"
	"pokemon-guess-bot/internal/render"
	"pokemon-guess-bot/internal/repository"
	"pokemon-guess-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Load static game assets
	catalog, err := pokedex.Load(cfg.Data.PokedexPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Data.PokedexPath).Msg("Failed to load pokedex")
	}
	log.Info().Int("entities", catalog.Len()).Msg("Pokedex loaded")

	renderer := render.NewSpriteRenderer(cfg.Data.SpritesDir)

	// Initialize repositories
	scoreRepo := repository.NewScoreRepository(dbPool.Pool)
	statsRepo := repository.NewStatsRepository(dbPool.Pool)
	dailyRepo := repository.NewDailyRepository(dbPool.Pool)

	// Initialize services
	leaderboardService := service.NewLeaderboardService(scoreRepo, dailyRepo)
	statsService := service.NewStatsService(statsRepo)

	playerLock := lock.NewPlayerLock()

	// The telebot instance comes first so the controllers can post
	// through it.
	teleBot, err := bot.NewTelebot(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	messenger := bot.NewTeleMessenger(teleBot)

	// Initialize game controllers
	sessionCtrl := session.NewController(session.Deps{
		Catalog:   catalog,
		Renderer:  renderer,
		Messenger: messenger,
		Scores:    leaderboardService,
		Stats:     statsService,
		Config:    cfg.Session,
	})

	dailyCtrl, err := daily.NewController(daily.Deps{
		Catalog:   catalog,
		Renderer:  renderer,
		Messenger: messenger,
		Store:     dailyRepo,
		Streaks:   statsService,
		Config:    cfg.Daily,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create daily controller")
	}

	// Assemble the bot
	telegramBot := bot.New(teleBot, &bot.Dependencies{
		Config:             cfg,
		SessionController:  sessionCtrl,
		DailyController:    dailyCtrl,
		LeaderboardService: leaderboardService,
		StatsService:       statsService,
		PlayerLock:         playerLock,
	})

	// Daily reset scheduler
	go dailyCtrl.RunScheduler(ctx)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	cancel()
	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: per-mode leaderboard wins
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scores (
			player_id BIGINT NOT NULL,
			username VARCHAR(255) NOT NULL,
			mode VARCHAR(32) NOT NULL,
			wins INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (player_id, mode)
		);
		CREATE INDEX IF NOT EXISTS idx_scores_mode_wins ON scores(mode, wins DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: scores table created")

	// Migration 2: per-player aggregate statistics
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS player_stats (
			player_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			games_played INT NOT NULL DEFAULT 0,
			games_won INT NOT NULL DEFAULT 0,
			leaderboard_wins INT NOT NULL DEFAULT 0,
			total_guess_time_ms BIGINT NOT NULL DEFAULT 0,
			total_correct_guesses INT NOT NULL DEFAULT 0,
			normal_wins INT NOT NULL DEFAULT 0,
			silhouette_wins INT NOT NULL DEFAULT 0,
			spotlight_wins INT NOT NULL DEFAULT 0,
			best_streak INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: player_stats table created")

	// Migration 3: daily challenge records
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS daily_records (
			player_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			day VARCHAR(10) NOT NULL DEFAULT '',
			streak INT NOT NULL DEFAULT 0,
			total_wins INT NOT NULL DEFAULT 0,
			entities INT[] NOT NULL DEFAULT '{}',
			guessed INT[] NOT NULL DEFAULT '{}',
			wrong_guesses INT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_daily_records_streak ON daily_records(streak DESC);
		CREATE INDEX IF NOT EXISTS idx_daily_records_wins ON daily_records(total_wins DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: daily_records table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
