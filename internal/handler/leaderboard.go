package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/service"
)

// LeaderboardHandler handles the per-mode win leaderboard command.
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// HandleLeaderboard shows the win leaderboard: /leaderboard [mode].
func (h *LeaderboardHandler) HandleLeaderboard(c tele.Context) error {
	mode := game.ModeNormal
	if args := c.Args(); len(args) >= 1 {
		m, err := game.ParseMode(args[0])
		if err != nil {
			if errors.Is(err, game.ErrUnknownMode) {
				return c.Reply("Unknown mode. Try: normal, silhouette, spotlight")
			}
			return err
		}
		mode = m
	}

	top, err := h.leaderboard.Top(context.Background(), mode, 10)
	if err != nil {
		log.Error().Err(err).Str("mode", string(mode)).Msg("Failed to load leaderboard")
		return c.Reply("❌ Could not load the leaderboard")
	}
	if len(top) == 0 {
		return c.Reply(fmt.Sprintf("No %s wins recorded yet. Start a game with /poke", mode))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Leaderboard (%s)\n", mode)
	for i, s := range top {
		fmt.Fprintf(&b, "%d. %s — %d win(s)\n", i+1, s.Username, s.Wins)
	}
	return c.Reply(b.String())
}
