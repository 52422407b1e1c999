package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"pokemon-guess-bot/internal/game/daily"
	"pokemon-guess-bot/internal/pkg/lock"
	"pokemon-guess-bot/internal/service"
)

// DailyHandler handles the daily challenge commands.
type DailyHandler struct {
	daily       *daily.Controller
	leaderboard *service.LeaderboardService
	playerLock  *lock.PlayerLock
}

// NewDailyHandler creates a new DailyHandler.
func NewDailyHandler(
	dailyCtrl *daily.Controller,
	leaderboard *service.LeaderboardService,
	playerLock *lock.PlayerLock,
) *DailyHandler {
	return &DailyHandler{
		daily:       dailyCtrl,
		leaderboard: leaderboard,
		playerLock:  playerLock,
	}
}

// HandleDaily starts the sender's daily attempt: /pokedaily.
func (h *DailyHandler) HandleDaily(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	// Serialize per player so a double-sent command cannot race the
	// played-today check.
	h.playerLock.Lock(sender.ID)
	defer h.playerLock.Unlock(sender.ID)

	err := h.daily.StartAttempt(context.Background(), chat.ID, sender.ID, displayName(sender))
	switch {
	case errors.Is(err, daily.ErrAlreadyPlayed):
		return c.Reply(fmt.Sprintf("You already played today. %v", err))
	case errors.Is(err, daily.ErrAttemptActive):
		return c.Reply("Your attempt is already running, type your guesses!")
	case err != nil:
		log.Error().Err(err).Int64("player_id", sender.ID).Msg("Failed to start daily attempt")
		return c.Reply("❌ Could not start the daily challenge, please try again later")
	}
	return nil
}

// HandleDailyTop shows the daily challenge leaders: /dailytop.
func (h *DailyHandler) HandleDailyTop(c tele.Context) error {
	ctx := context.Background()

	wins, err := h.leaderboard.DailyTop(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load daily top list")
		return c.Reply("❌ Could not load the daily leaderboard")
	}
	streaks, err := h.leaderboard.DailyStreaks(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load streak top list")
		return c.Reply("❌ Could not load the daily leaderboard")
	}

	if len(wins) == 0 && len(streaks) == 0 {
		return c.Reply("No daily challenge results yet. Be the first: /pokedaily")
	}

	var b strings.Builder
	if len(wins) > 0 {
		b.WriteString("🏆 Daily Challenge Wins\n")
		for i, r := range wins {
			fmt.Fprintf(&b, "%d. %s — %d\n", i+1, r.Username, r.TotalWins)
		}
	}
	if len(streaks) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("🔥 Current Streaks\n")
		for i, r := range streaks {
			fmt.Fprintf(&b, "%d. %s — %d\n", i+1, r.Username, r.Streak)
		}
	}
	return c.Reply(b.String())
}
