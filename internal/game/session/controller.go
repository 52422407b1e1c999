package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pokemon-guess-bot/internal/config"
	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/pokedex"
	"pokemon-guess-bot/internal/render"
)

var (
	ErrAlreadyRunning = errors.New("a game is already running in this chat")
	ErrNotRunning     = errors.New("no game is running in this chat")
	ErrInvalidRounds  = errors.New("invalid round count")
)

// ScoreStore persists per-mode leaderboard wins.
type ScoreStore interface {
	Credit(ctx context.Context, playerID int64, username string, mode game.Mode) error
}

// StatsStore persists per-player gameplay statistics.
type StatsStore interface {
	RecordRoundWin(ctx context.Context, playerID int64, username string, mode game.Mode, guessTime time.Duration) error
	RecordLeaderboardWin(ctx context.Context, playerID int64, username string) error
}

// GuessOutcome describes a correct guess back to the caller, which
// acknowledges the winner in chat.
type GuessOutcome struct {
	EntityName   string
	Round        int
	SessionScore int
}

// Controller manages at most one session per chat. A single mutex
// guards the registry and every session's state; all timer callbacks
// and guess submissions serialize through it, which keeps the
// round-lifecycle transitions race free.
type Controller struct {
	catalog   *pokedex.Catalog
	renderer  render.Renderer
	messenger game.Messenger
	scores    ScoreStore
	stats     StatsStore
	cfg       config.SessionConfig

	mu       sync.Mutex
	sessions map[int64]*Session
	rng      *rand.Rand
}

// Deps bundles the controller's collaborators.
type Deps struct {
	Catalog   *pokedex.Catalog
	Renderer  render.Renderer
	Messenger game.Messenger
	Scores    ScoreStore
	Stats     StatsStore
	Config    config.SessionConfig
}

func NewController(deps Deps) *Controller {
	return &Controller{
		catalog:   deps.Catalog,
		renderer:  deps.Renderer,
		messenger: deps.Messenger,
		scores:    deps.Scores,
		stats:     deps.Stats,
		cfg:       deps.Config,
		sessions:  make(map[int64]*Session),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// IsRunning reports whether the chat has an active session.
func (c *Controller) IsRunning(chatID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[chatID]
	return ok
}

// Start begins a new session in the chat. The first round opens after
// the configured start delay.
func (c *Controller) Start(chatID int64, mode game.Mode, generation, rounds int) error {
	if rounds < 1 || rounds > c.cfg.MaxRounds {
		return fmt.Errorf("%w: %d (1-%d allowed)", ErrInvalidRounds, rounds, c.cfg.MaxRounds)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[chatID]; ok {
		return ErrAlreadyRunning
	}

	pool, err := c.catalog.Pool(generation)
	if err != nil {
		return err
	}

	s := newSession(chatID, mode, pool, rounds)
	c.sessions[chatID] = s

	log.Info().
		Int64("chat_id", chatID).
		Str("mode", string(mode)).
		Int("generation", generation).
		Int("rounds", rounds).
		Msg("session started")

	if _, err := c.messenger.Send(chatID, introTitle(mode)+"\nGet ready..."); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send session intro")
	}

	s.timers.After("advance", c.cfg.StartDelay, func() { c.beginRound(chatID) })
	return nil
}

// ForceStop ends the chat's session immediately without a final tally.
func (c *Controller) ForceStop(chatID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[chatID]
	if !ok {
		return ErrNotRunning
	}
	s.status = StatusForceStopped
	s.timers.Stop()
	delete(c.sessions, chatID)

	log.Info().Int64("chat_id", chatID).Msg("session force-stopped")
	return nil
}

// SubmitGuess judges a text message against the open round. It returns
// (nil, false) when there is nothing to judge or the guess is wrong;
// a non-nil outcome means this player won the round.
func (c *Controller) SubmitGuess(chatID, playerID int64, username, text string) (*GuessOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[chatID]
	if !ok || s.status != StatusRoundActive || s.cur == nil {
		return nil, false
	}
	if !game.MatchGuess(text, s.cur.name) {
		return nil, false
	}

	cur := s.cur
	guessTime := time.Since(cur.openedAt)

	// First correct guess closes the window; later guesses in flight
	// see status round_grading and fall through above.
	s.status = StatusRoundGrading
	s.cur = nil
	s.timers.Cancel("timeout")
	s.timers.Cancel("hint")

	s.scores[playerID]++
	s.usernames[playerID] = username
	s.anyCorrect = true

	log.Info().
		Int64("chat_id", chatID).
		Int64("player_id", playerID).
		Int("round", s.roundIndex).
		Dur("guess_time", guessTime).
		Msg("round won")

	c.revealLocked(s, cur, fmt.Sprintf("Round %d/%d — ✅ %s got it! It was %s",
		s.roundIndex, s.roundTarget, username, cur.name))

	go func() {
		if err := c.stats.RecordRoundWin(context.Background(), playerID, username, s.mode, guessTime); err != nil {
			log.Error().Err(err).Int64("player_id", playerID).Msg("failed to record round win")
		}
	}()

	s.timers.After("advance", c.cfg.AdvanceDelay, func() { c.beginRound(chatID) })

	return &GuessOutcome{
		EntityName:   cur.name,
		Round:        s.roundIndex,
		SessionScore: s.scores[playerID],
	}, true
}

// beginRound advances the session to its next round, or finalizes it
// when the target is reached or the pool runs dry.
func (c *Controller) beginRound(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[chatID]
	if !ok || s.status.Terminal() {
		return
	}

	s.roundIndex++
	if s.roundIndex > s.roundTarget || len(s.pool) == 0 {
		s.roundIndex--
		c.finalizeLocked(s)
		return
	}

	id := c.drawLocked(s)
	name, ok := c.catalog.Name(id)
	if !ok {
		// Catalog and pool disagree; skip the round rather than stall.
		log.Error().Int("entity_id", id).Msg("drawn entity has no catalog name")
		s.status = StatusRoundGrading
		s.timers.After("advance", c.cfg.AdvanceDelay, func() { c.beginRound(chatID) })
		return
	}

	img, err := c.renderer.RoundImage(id, s.mode)
	if err != nil {
		log.Warn().Err(err).Int("entity_id", id).Msg("round render failed, falling back to full image")
		img, err = c.renderer.FullImage(id)
	}
	if err != nil {
		log.Error().Err(err).Int("entity_id", id).Msg("sprite unavailable, skipping round")
		s.status = StatusRoundGrading
		s.timers.After("advance", c.cfg.AdvanceDelay, func() { c.beginRound(chatID) })
		return
	}

	caption := fmt.Sprintf("Round %d/%d — Who's that Pokémon?", s.roundIndex, s.roundTarget)
	msg, err := c.messenger.SendPhoto(chatID, caption, img)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to post round image")
	}

	s.cur = &round{entityID: id, name: name, openedAt: time.Now(), msg: msg}
	s.status = StatusRoundActive

	roundIdx := s.roundIndex
	if s.mode.HasHint() {
		s.timers.After("hint", c.cfg.HintAfter, func() { c.postHint(chatID, roundIdx) })
	}
	s.timers.After("timeout", c.cfg.AnswerWindow, func() { c.onTimeout(chatID, roundIdx) })
}

// drawLocked removes and returns a random entity from the pool.
func (c *Controller) drawLocked(s *Session) int {
	i := c.rng.Intn(len(s.pool))
	id := s.pool[i]
	s.pool[i] = s.pool[len(s.pool)-1]
	s.pool = s.pool[:len(s.pool)-1]
	return id
}

// postHint reveals part of the name mid-round. The hint message is
// deleted after its TTL so the chat stays readable.
func (c *Controller) postHint(chatID int64, roundIdx int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[chatID]
	if !ok || s.status != StatusRoundActive || s.cur == nil || s.roundIndex != roundIdx {
		return
	}

	hint := game.GenerateHint(s.cur.name, c.rng)
	ref, err := c.messenger.Send(chatID, "❓ Hint: "+hint)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send hint")
		return
	}
	s.timers.After("hint_delete", c.cfg.HintTTL, func() {
		if err := c.messenger.Delete(ref); err != nil {
			log.Debug().Err(err).Int64("chat_id", chatID).Msg("failed to delete hint message")
		}
	})
}

// onTimeout closes a round nobody solved.
func (c *Controller) onTimeout(chatID int64, roundIdx int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[chatID]
	if !ok || s.status != StatusRoundActive || s.cur == nil || s.roundIndex != roundIdx {
		return
	}

	cur := s.cur
	s.status = StatusRoundGrading
	s.cur = nil
	s.timers.Cancel("hint")

	log.Info().
		Int64("chat_id", chatID).
		Int("round", s.roundIndex).
		Str("name", cur.name).
		Msg("round timed out")

	c.revealLocked(s, cur, fmt.Sprintf("Round %d/%d — ❌ Time's up! It was %s",
		s.roundIndex, s.roundTarget, cur.name))

	s.timers.After("advance", c.cfg.AdvanceDelay, func() { c.beginRound(chatID) })
}

// revealLocked swaps the round image for the full sprite and schedules
// its deletion after the reveal TTL.
func (c *Controller) revealLocked(s *Session, cur *round, caption string) {
	if cur.msg == nil {
		return
	}
	full, err := c.renderer.FullImage(cur.entityID)
	if err != nil {
		log.Warn().Err(err).Int("entity_id", cur.entityID).Msg("failed to render reveal image")
		return
	}
	ref, err := c.messenger.EditPhoto(cur.msg, caption, full)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", s.chatID).Msg("failed to edit round message")
		return
	}
	s.timers.After("reveal_delete", c.cfg.RevealTTL, func() {
		if err := c.messenger.Delete(ref); err != nil {
			log.Debug().Err(err).Int64("chat_id", s.chatID).Msg("failed to delete reveal message")
		}
	})
}

// finalizeLocked posts the final standings, credits co-winners when at
// least two distinct players scored, and removes the session.
func (c *Controller) finalizeLocked(s *Session) {
	s.status = StatusFinished
	s.timers.Stop()
	delete(c.sessions, s.chatID)

	if !s.anyCorrect {
		if _, err := c.messenger.Send(s.chatID, "No one got anything right!"); err != nil {
			log.Warn().Err(err).Int64("chat_id", s.chatID).Msg("failed to send empty tally")
		}
		log.Info().Int64("chat_id", s.chatID).Msg("session finished with no correct guesses")
		return
	}

	rows := s.standings()
	footer := ""

	// Single-participant sessions are practice: nothing goes to the
	// leaderboard.
	if len(s.scores) >= 2 {
		winners := s.coWinners()
		if len(winners) == 1 {
			footer = fmt.Sprintf("🏆 %s wins!", winners[0].Username)
		} else {
			footer = fmt.Sprintf("🏆 It's a tie between %d players!", len(winners))
		}

		mode := s.mode
		go func() {
			ctx := context.Background()
			for _, w := range winners {
				if err := c.scores.Credit(ctx, w.PlayerID, w.Username, mode); err != nil {
					log.Error().Err(err).Int64("player_id", w.PlayerID).Msg("failed to credit leaderboard win")
				}
				if err := c.stats.RecordLeaderboardWin(ctx, w.PlayerID, w.Username); err != nil {
					log.Error().Err(err).Int64("player_id", w.PlayerID).Msg("failed to record leaderboard win")
				}
			}
		}()
	}

	if _, err := c.messenger.Send(s.chatID, formatStandings(rows, footer)); err != nil {
		log.Warn().Err(err).Int64("chat_id", s.chatID).Msg("failed to send final standings")
	}

	log.Info().
		Int64("chat_id", s.chatID).
		Int("rounds_played", s.roundIndex).
		Int("scorers", len(s.scores)).
		Msg("session finished")
}
