package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"pokemon-guess-bot/internal/repository"
	"pokemon-guess-bot/internal/service"
)

// StatsHandler handles the personal statistics command.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleStats shows the sender's gameplay statistics: /pokestats.
func (h *StatsHandler) HandleStats(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	s, err := h.stats.Get(context.Background(), sender.ID)
	if err != nil {
		if errors.Is(err, repository.ErrStatsNotFound) {
			return c.Reply("No stats yet. Win a round first: /poke")
		}
		log.Error().Err(err).Int64("player_id", sender.ID).Msg("Failed to load player stats")
		return c.Reply("❌ Could not load your stats")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Stats for %s\n", displayName(sender))
	fmt.Fprintf(&b, "Rounds won: %d\n", s.GamesWon)
	fmt.Fprintf(&b, "Sessions won: %d\n", s.LeaderboardWins)
	fmt.Fprintf(&b, "Win rate: %.1f%%\n", s.WinRate())
	fmt.Fprintf(&b, "Avg guess time: %.1fs\n", s.AvgGuessTimeSeconds())
	fmt.Fprintf(&b, "Best mode: %s\n", s.BestMode())
	if s.BestStreak > 0 {
		fmt.Fprintf(&b, "Best daily streak: %d\n", s.BestStreak)
	}
	return c.Reply(b.String())
}
