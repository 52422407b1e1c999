package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pokemon-guess-bot/internal/model"
)

// StatsRepository persists aggregate gameplay statistics per player.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository instance.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// modeWinsColumn maps a mode name onto its counter column. The mode
// value comes from an internal enum, never from user input.
func modeWinsColumn(mode string) (string, error) {
	switch mode {
	case "normal":
		return "normal_wins", nil
	case "silhouette":
		return "silhouette_wins", nil
	case "spotlight":
		return "spotlight_wins", nil
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}
}

// RecordRoundWin folds one won round into the player's aggregates:
// played/won counters, cumulative guess latency and the per-mode win
// counter.
func (r *StatsRepository) RecordRoundWin(ctx context.Context, playerID int64, username, mode string, guessTime time.Duration) error {
	col, err := modeWinsColumn(mode)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO player_stats
			(player_id, username, games_played, games_won, total_guess_time_ms, total_correct_guesses, %[1]s, updated_at)
		VALUES ($1, $2, 1, 1, $3, 1, 1, NOW())
		ON CONFLICT (player_id)
		DO UPDATE SET
			username = EXCLUDED.username,
			games_played = player_stats.games_played + 1,
			games_won = player_stats.games_won + 1,
			total_guess_time_ms = player_stats.total_guess_time_ms + EXCLUDED.total_guess_time_ms,
			total_correct_guesses = player_stats.total_correct_guesses + 1,
			%[1]s = player_stats.%[1]s + 1,
			updated_at = NOW()
	`, col)

	if _, err := r.pool.Exec(ctx, query, playerID, username, guessTime.Milliseconds()); err != nil {
		return fmt.Errorf("failed to record round win: %w", err)
	}
	return nil
}

// RecordLeaderboardWin counts one session won on the final tally.
func (r *StatsRepository) RecordLeaderboardWin(ctx context.Context, playerID int64, username string) error {
	const query = `
		INSERT INTO player_stats (player_id, username, leaderboard_wins, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (player_id)
		DO UPDATE SET
			username = EXCLUDED.username,
			leaderboard_wins = player_stats.leaderboard_wins + 1,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, playerID, username); err != nil {
		return fmt.Errorf("failed to record leaderboard win: %w", err)
	}
	return nil
}

// ObserveStreak keeps the player's best daily streak as a high-water
// mark.
func (r *StatsRepository) ObserveStreak(ctx context.Context, playerID int64, username string, streak int) error {
	const query = `
		INSERT INTO player_stats (player_id, username, best_streak, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (player_id)
		DO UPDATE SET
			username = EXCLUDED.username,
			best_streak = GREATEST(player_stats.best_streak, EXCLUDED.best_streak),
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, playerID, username, streak); err != nil {
		return fmt.Errorf("failed to record streak: %w", err)
	}
	return nil
}

// Get retrieves a player's statistics.
// Returns ErrStatsNotFound if the player has no recorded stats.
func (r *StatsRepository) Get(ctx context.Context, playerID int64) (*model.PlayerStats, error) {
	const query = `
		SELECT player_id, username, games_played, games_won, leaderboard_wins,
		       total_guess_time_ms, total_correct_guesses,
		       normal_wins, silhouette_wins, spotlight_wins, best_streak
		FROM player_stats
		WHERE player_id = $1
	`

	var s model.PlayerStats
	err := r.pool.QueryRow(ctx, query, playerID).Scan(
		&s.PlayerID,
		&s.Username,
		&s.GamesPlayed,
		&s.GamesWon,
		&s.LeaderboardWins,
		&s.TotalGuessTimeMs,
		&s.TotalCorrectGuesses,
		&s.NormalWins,
		&s.SilhouetteWins,
		&s.SpotlightWins,
		&s.BestStreak,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatsNotFound
		}
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	return &s, nil
}
