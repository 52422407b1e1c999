// Package service provides business logic implementations.
package service

import (
	"context"

	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/model"
	"pokemon-guess-bot/internal/repository"
)

// LeaderboardService exposes the per-mode win leaderboards and the
// daily challenge top lists.
type LeaderboardService struct {
	scoreRepo *repository.ScoreRepository
	dailyRepo *repository.DailyRepository
}

// NewLeaderboardService creates a new LeaderboardService instance.
func NewLeaderboardService(
	scoreRepo *repository.ScoreRepository,
	dailyRepo *repository.DailyRepository,
) *LeaderboardService {
	return &LeaderboardService{
		scoreRepo: scoreRepo,
		dailyRepo: dailyRepo,
	}
}

// Credit records one leaderboard win for the player in the mode's
// namespace. Called once per co-winner on the final session tally.
func (s *LeaderboardService) Credit(ctx context.Context, playerID int64, username string, mode game.Mode) error {
	return s.scoreRepo.Credit(ctx, playerID, username, string(mode))
}

// Top returns the win leaderboard for one mode.
func (s *LeaderboardService) Top(ctx context.Context, mode game.Mode, limit int) ([]model.PlayerScore, error) {
	return s.scoreRepo.Top(ctx, string(mode), limit)
}

// DailyTop returns the all-time daily challenge win leaders.
func (s *LeaderboardService) DailyTop(ctx context.Context, limit int) ([]model.DailyRecord, error) {
	return s.dailyRepo.TopByWins(ctx, limit)
}

// DailyStreaks returns the current streak leaders.
func (s *LeaderboardService) DailyStreaks(ctx context.Context, limit int) ([]model.DailyRecord, error) {
	return s.dailyRepo.TopStreaks(ctx, limit)
}
