// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/game/daily"
	"pokemon-guess-bot/internal/game/session"
	"pokemon-guess-bot/internal/pokedex"
)

const defaultRounds = 10

// displayName picks the best human-readable name for a sender.
func displayName(sender *tele.User) string {
	if sender.Username != "" {
		return sender.Username
	}
	return sender.FirstName
}

// GameHandler handles the guessing session commands and the text
// fan-in that judges guesses.
type GameHandler struct {
	sessions *session.Controller
	daily    *daily.Controller
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(sessions *session.Controller, daily *daily.Controller) *GameHandler {
	return &GameHandler{
		sessions: sessions,
		daily:    daily,
	}
}

// HandlePoke starts a session: /poke [generation] [rounds] [mode].
// Generation 0 or "all" draws from every generation.
func (h *GameHandler) HandlePoke(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	generation := pokedex.WildcardGeneration
	rounds := defaultRounds
	mode := game.ModeNormal

	args := c.Args()
	if len(args) >= 1 {
		if args[0] == "all" {
			generation = pokedex.WildcardGeneration
		} else {
			g, err := strconv.Atoi(args[0])
			if err != nil {
				return c.Reply("Usage: /poke [generation|all] [rounds] [mode]")
			}
			generation = g
		}
	}
	if len(args) >= 2 {
		r, err := strconv.Atoi(args[1])
		if err != nil {
			return c.Reply("Usage: /poke [generation|all] [rounds] [mode]")
		}
		rounds = r
	}
	if len(args) >= 3 {
		m, err := game.ParseMode(args[2])
		if err != nil {
			return c.Reply("Unknown mode. Try: normal, silhouette, spotlight")
		}
		mode = m
	}

	err := h.sessions.Start(chat.ID, mode, generation, rounds)
	switch {
	case errors.Is(err, session.ErrAlreadyRunning):
		return c.Reply("A game is already running here. Finish it or /stop it first.")
	case errors.Is(err, session.ErrInvalidRounds):
		return c.Reply(fmt.Sprintf("Can't play that many rounds (%v).", err))
	case errors.Is(err, pokedex.ErrGenerationNotFound):
		return c.Reply("Unknown generation. Use 1-5, or \"all\".")
	case err != nil:
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to start session")
		return c.Reply("❌ Could not start the game, please try again later")
	}
	return nil
}

// HandleStop force-stops the running session: /stop.
func (h *GameHandler) HandleStop(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}

	if err := h.sessions.ForceStop(chat.ID); err != nil {
		if errors.Is(err, session.ErrNotRunning) {
			return c.Reply("Nothing to stop.")
		}
		return err
	}
	return c.Reply("Game stopped.")
}

// HandleText judges every plain text message, first against the chat's
// session round, then against the sender's daily attempt.
func (h *GameHandler) HandleText(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	text := c.Text()
	if text == "" {
		return nil
	}

	if out, won := h.sessions.SubmitGuess(chat.ID, sender.ID, displayName(sender), text); won {
		return c.Reply(fmt.Sprintf("✅ %s got it! It was %s (%d point(s))",
			displayName(sender), out.EntityName, out.SessionScore))
	}

	h.daily.HandleGuess(context.Background(), chat.ID, sender.ID, text)
	return nil
}
