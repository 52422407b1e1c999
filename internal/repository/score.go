// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pokemon-guess-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrStatsNotFound = errors.New("player stats not found")
)

// ScoreRepository persists per-mode leaderboard win counts.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository instance.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// Credit adds one leaderboard win for the player in the given mode,
// creating the row on first win. The username is refreshed on every
// credit so renames propagate.
func (r *ScoreRepository) Credit(ctx context.Context, playerID int64, username, mode string) error {
	const query = `
		INSERT INTO scores (player_id, username, mode, wins, updated_at)
		VALUES ($1, $2, $3, 1, NOW())
		ON CONFLICT (player_id, mode)
		DO UPDATE SET wins = scores.wins + 1, username = EXCLUDED.username, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, playerID, username, mode); err != nil {
		return fmt.Errorf("failed to credit win: %w", err)
	}
	return nil
}

// Top returns the highest win counts for one mode, ordered by wins
// descending with username as the tiebreak.
func (r *ScoreRepository) Top(ctx context.Context, mode string, limit int) ([]model.PlayerScore, error) {
	const query = `
		SELECT player_id, username, mode, wins
		FROM scores
		WHERE mode = $1
		ORDER BY wins DESC, username ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, mode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var scores []model.PlayerScore
	for rows.Next() {
		var s model.PlayerScore
		if err := rows.Scan(&s.PlayerID, &s.Username, &s.Mode, &s.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}

	return scores, nil
}

// Wins returns the player's win count in one mode, zero if absent.
func (r *ScoreRepository) Wins(ctx context.Context, playerID int64, mode string) (int, error) {
	const query = `SELECT wins FROM scores WHERE player_id = $1 AND mode = $2`

	var wins int
	err := r.pool.QueryRow(ctx, query, playerID, mode).Scan(&wins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query wins: %w", err)
	}
	return wins, nil
}
