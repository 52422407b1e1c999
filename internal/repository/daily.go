package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pokemon-guess-bot/internal/model"
)

// DailyRepository persists per-player daily challenge records.
type DailyRepository struct {
	pool *pgxpool.Pool
}

// NewDailyRepository creates a new DailyRepository instance.
func NewDailyRepository(pool *pgxpool.Pool) *DailyRepository {
	return &DailyRepository{pool: pool}
}

// Get retrieves a player's daily record, or (nil, nil) when the player
// has never played.
func (r *DailyRepository) Get(ctx context.Context, playerID int64) (*model.DailyRecord, error) {
	const query = `
		SELECT player_id, username, day, streak, total_wins, entities, guessed, wrong_guesses
		FROM daily_records
		WHERE player_id = $1
	`

	var rec model.DailyRecord
	err := r.pool.QueryRow(ctx, query, playerID).Scan(
		&rec.PlayerID,
		&rec.Username,
		&rec.Day,
		&rec.Streak,
		&rec.TotalWins,
		&rec.Entities,
		&rec.Guessed,
		&rec.WrongGuesses,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily record: %w", err)
	}

	return &rec, nil
}

// Upsert writes the player's full daily record.
func (r *DailyRepository) Upsert(ctx context.Context, rec *model.DailyRecord) error {
	const query = `
		INSERT INTO daily_records
			(player_id, username, day, streak, total_wins, entities, guessed, wrong_guesses, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (player_id)
		DO UPDATE SET
			username = EXCLUDED.username,
			day = EXCLUDED.day,
			streak = EXCLUDED.streak,
			total_wins = EXCLUDED.total_wins,
			entities = EXCLUDED.entities,
			guessed = EXCLUDED.guessed,
			wrong_guesses = EXCLUDED.wrong_guesses,
			updated_at = NOW()
	`

	// Nil slices would encode as SQL NULL and trip the NOT NULL columns.
	entities := rec.Entities
	if entities == nil {
		entities = []int32{}
	}
	guessed := rec.Guessed
	if guessed == nil {
		guessed = []int32{}
	}

	_, err := r.pool.Exec(ctx, query,
		rec.PlayerID, rec.Username, rec.Day, rec.Streak, rec.TotalWins,
		entities, guessed, rec.WrongGuesses)
	if err != nil {
		return fmt.Errorf("failed to upsert daily record: %w", err)
	}
	return nil
}

// ResetAll wipes the per-day state of every record at the reset
// boundary. Streaks and total wins survive.
func (r *DailyRepository) ResetAll(ctx context.Context) error {
	const query = `
		UPDATE daily_records
		SET entities = '{}', guessed = '{}', wrong_guesses = 0, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to reset daily records: %w", err)
	}
	return nil
}

// TopStreaks returns the highest active streaks.
func (r *DailyRepository) TopStreaks(ctx context.Context, limit int) ([]model.DailyRecord, error) {
	const query = `
		SELECT player_id, username, day, streak, total_wins, entities, guessed, wrong_guesses
		FROM daily_records
		WHERE streak > 0
		ORDER BY streak DESC, total_wins DESC, username ASC
		LIMIT $1
	`
	return r.queryRecords(ctx, query, limit)
}

// TopByWins returns the all-time daily win leaders.
func (r *DailyRepository) TopByWins(ctx context.Context, limit int) ([]model.DailyRecord, error) {
	const query = `
		SELECT player_id, username, day, streak, total_wins, entities, guessed, wrong_guesses
		FROM daily_records
		WHERE total_wins > 0
		ORDER BY total_wins DESC, streak DESC, username ASC
		LIMIT $1
	`
	return r.queryRecords(ctx, query, limit)
}

func (r *DailyRepository) queryRecords(ctx context.Context, query string, limit int) ([]model.DailyRecord, error) {
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	defer rows.Close()

	var recs []model.DailyRecord
	for rows.Next() {
		var rec model.DailyRecord
		if err := rows.Scan(
			&rec.PlayerID,
			&rec.Username,
			&rec.Day,
			&rec.Streak,
			&rec.TotalWins,
			&rec.Entities,
			&rec.Guessed,
			&rec.WrongGuesses,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily records: %w", err)
	}

	return recs, nil
}
