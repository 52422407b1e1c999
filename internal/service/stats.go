package service

import (
	"context"
	"time"

	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/model"
	"pokemon-guess-bot/internal/repository"
)

// StatsService records and reports per-player gameplay statistics.
type StatsService struct {
	statsRepo *repository.StatsRepository
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(statsRepo *repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// RecordRoundWin folds one won round into the player's aggregates.
func (s *StatsService) RecordRoundWin(ctx context.Context, playerID int64, username string, mode game.Mode, guessTime time.Duration) error {
	return s.statsRepo.RecordRoundWin(ctx, playerID, username, string(mode), guessTime)
}

// RecordLeaderboardWin counts one session won on the final tally.
func (s *StatsService) RecordLeaderboardWin(ctx context.Context, playerID int64, username string) error {
	return s.statsRepo.RecordLeaderboardWin(ctx, playerID, username)
}

// ObserveStreak keeps the best daily streak as a high-water mark.
func (s *StatsService) ObserveStreak(ctx context.Context, playerID int64, username string, streak int) error {
	return s.statsRepo.ObserveStreak(ctx, playerID, username, streak)
}

// Get retrieves a player's statistics. Returns
// repository.ErrStatsNotFound when the player has never won a round.
func (s *StatsService) Get(ctx context.Context, playerID int64) (*model.PlayerStats, error) {
	return s.statsRepo.Get(ctx, playerID)
}
