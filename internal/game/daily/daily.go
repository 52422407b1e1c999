// Package daily implements the once-per-day three-Pokémon challenge:
// every player gets one timed attempt per day, a shared composite
// image, a wrong-guess budget, and a win streak that survives timeouts
// but not eliminations.
package daily

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pokemon-guess-bot/internal/config"
	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/model"
	"pokemon-guess-bot/internal/pkg/sched"
	"pokemon-guess-bot/internal/pokedex"
	"pokemon-guess-bot/internal/render"
)

var (
	ErrAlreadyPlayed = errors.New("daily challenge already played today")
	ErrAttemptActive = errors.New("daily attempt already in progress")
)

const entitiesPerDay = 3

// Store persists per-player daily challenge records. Get returns
// (nil, nil) when the player has no record yet.
type Store interface {
	Get(ctx context.Context, playerID int64) (*model.DailyRecord, error)
	Upsert(ctx context.Context, rec *model.DailyRecord) error
	ResetAll(ctx context.Context) error
	TopStreaks(ctx context.Context, limit int) ([]model.DailyRecord, error)
	TopByWins(ctx context.Context, limit int) ([]model.DailyRecord, error)
}

// StreakSink records streak high-water marks into the player stats.
// Optional; a nil sink is ignored.
type StreakSink interface {
	ObserveStreak(ctx context.Context, playerID int64, username string, streak int) error
}

// attempt is the in-memory state of one running daily attempt. It is
// bound to the chat it was started in.
type attempt struct {
	chatID   int64
	username string
	rec      *model.DailyRecord
	msg      game.MessageRef
	terminal bool
}

// Controller runs daily attempts and the scheduled reset broadcast.
type Controller struct {
	catalog   *pokedex.Catalog
	renderer  render.Renderer
	messenger game.Messenger
	store     Store
	streaks   StreakSink
	cfg       config.DailyConfig
	loc       *time.Location

	mu       sync.Mutex
	attempts map[int64]*attempt
	timers   *sched.TimerSet
	rng      *rand.Rand
}

// Deps bundles the controller's collaborators.
type Deps struct {
	Catalog   *pokedex.Catalog
	Renderer  render.Renderer
	Messenger game.Messenger
	Store     Store
	Streaks   StreakSink
	Config    config.DailyConfig
}

func NewController(deps Deps) (*Controller, error) {
	loc, err := time.LoadLocation(deps.Config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily timezone %q: %w", deps.Config.Timezone, err)
	}
	return &Controller{
		catalog:   deps.Catalog,
		renderer:  deps.Renderer,
		messenger: deps.Messenger,
		store:     deps.Store,
		streaks:   deps.Streaks,
		cfg:       deps.Config,
		loc:       loc,
		attempts:  make(map[int64]*attempt),
		timers:    sched.NewTimerSet(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// dayKey buckets time into challenge days, which roll at the reset
// hour rather than midnight.
func (c *Controller) dayKey(now time.Time) string {
	return now.In(c.loc).Add(-time.Duration(c.cfg.ResetHour) * time.Hour).Format("2006-01-02")
}

// UntilNextReset returns the time remaining to the next reset boundary.
func (c *Controller) UntilNextReset(now time.Time) time.Duration {
	local := now.In(c.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), c.cfg.ResetHour, 0, 0, 0, c.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}

// HasActiveAttempt reports whether the player is mid-attempt.
func (c *Controller) HasActiveAttempt(playerID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.attempts[playerID]
	return ok
}

// StartAttempt opens the player's attempt for today in the given chat.
// Returns ErrAlreadyPlayed when today's attempt is used up and
// ErrAttemptActive when one is still running.
func (c *Controller) StartAttempt(ctx context.Context, chatID, playerID int64, username string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.attempts[playerID]; ok {
		return ErrAttemptActive
	}

	now := time.Now()
	today := c.dayKey(now)

	rec, err := c.store.Get(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to load daily record: %w", err)
	}
	if rec != nil && rec.Day == today {
		return fmt.Errorf("%w (next challenge in %s)", ErrAlreadyPlayed,
			c.UntilNextReset(now).Round(time.Minute))
	}

	streak := 0
	totalWins := 0
	if rec != nil {
		totalWins = rec.TotalWins
		// A streak only carries over from the immediately preceding day.
		if rec.Day == c.dayKey(now.AddDate(0, 0, -1)) {
			streak = rec.Streak
		}
	}

	entities := c.drawEntitiesLocked()
	if len(entities) != entitiesPerDay {
		return fmt.Errorf("daily entity pool too small: %w", pokedex.ErrEmptyPool)
	}

	rec = &model.DailyRecord{
		PlayerID:  playerID,
		Username:  username,
		Day:       today,
		Streak:    streak,
		TotalWins: totalWins,
		Entities:  entities,
	}

	// Render before persisting so a failed render does not burn the
	// player's attempt for the day.
	img, err := c.renderer.DailyComposite(rec.Entities, nil)
	if err != nil {
		return fmt.Errorf("failed to render daily composite: %w", err)
	}

	if err := c.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to save daily record: %w", err)
	}

	a := &attempt{chatID: chatID, username: username, rec: rec}
	c.attempts[playerID] = a

	caption := c.caption(a)
	msg, err := c.messenger.SendPhoto(chatID, caption, img)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to post daily composite")
	}
	a.msg = msg

	c.timers.After(timerName(playerID), c.cfg.Window, func() { c.onTimeout(playerID) })

	log.Info().
		Int64("player_id", playerID).
		Int64("chat_id", chatID).
		Str("day", today).
		Ints32("entities", rec.Entities).
		Msg("daily attempt started")
	return nil
}

// drawEntitiesLocked picks today's three distinct entities.
func (c *Controller) drawEntitiesLocked() []int32 {
	pool, err := c.catalog.Pool(pokedex.WildcardGeneration)
	if err != nil || len(pool) < entitiesPerDay {
		// The catalog is loaded at startup; an empty pool here is a
		// programming error, not a runtime condition.
		log.Error().Err(err).Msg("daily entity pool unavailable")
		return nil
	}
	c.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	out := make([]int32, entitiesPerDay)
	for i := 0; i < entitiesPerDay; i++ {
		out[i] = int32(pool[i])
	}
	return out
}

func timerName(playerID int64) string {
	return "timeout:" + strconv.FormatInt(playerID, 10)
}

func (c *Controller) caption(a *attempt) string {
	return fmt.Sprintf("🗓 Daily Challenge — guess all three!\n%d/%d guessed, %d wrong guesses left",
		len(a.rec.Guessed), entitiesPerDay, c.cfg.WrongLimit-a.rec.WrongGuesses)
}

// HandleGuess judges a text message from the player against their open
// attempt. It reports whether the message was consumed as a guess.
func (c *Controller) HandleGuess(ctx context.Context, chatID, playerID int64, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.attempts[playerID]
	if !ok || a.terminal || a.chatID != chatID {
		return false
	}

	for _, id := range a.rec.Entities {
		if a.rec.HasGuessed(id) {
			continue
		}
		name, known := c.catalog.Name(int(id))
		if !known || !game.MatchGuess(text, name) {
			continue
		}
		c.onCorrectLocked(ctx, playerID, a, id, name)
		return true
	}

	c.onWrongLocked(ctx, playerID, a)
	return true
}

func (c *Controller) onCorrectLocked(ctx context.Context, playerID int64, a *attempt, id int32, name string) {
	a.rec.Guessed = append(a.rec.Guessed, id)

	if a.rec.AllGuessed() {
		c.finishLocked(ctx, playerID, a, resultWon)
		return
	}

	if err := c.store.Upsert(ctx, a.rec); err != nil {
		log.Error().Err(err).Int64("player_id", playerID).Msg("failed to save daily progress")
	}
	c.redrawLocked(a, c.caption(a)+fmt.Sprintf("\n✅ %s!", name))
}

func (c *Controller) onWrongLocked(ctx context.Context, playerID int64, a *attempt) {
	a.rec.WrongGuesses++
	left := c.cfg.WrongLimit - a.rec.WrongGuesses
	if left > 0 {
		if err := c.store.Upsert(ctx, a.rec); err != nil {
			log.Error().Err(err).Int64("player_id", playerID).Msg("failed to save daily progress")
		}
		if _, err := c.messenger.Send(a.chatID, fmt.Sprintf("Incorrect. %d guesses left.", left)); err != nil {
			log.Warn().Err(err).Int64("chat_id", a.chatID).Msg("failed to send wrong-guess notice")
		}
		return
	}
	c.finishLocked(ctx, playerID, a, resultEliminated)
}

func (c *Controller) onTimeout(playerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.attempts[playerID]
	if !ok || a.terminal {
		return
	}
	c.finishLocked(context.Background(), playerID, a, resultTimedOut)
}

type result int

const (
	resultWon result = iota
	resultEliminated
	resultTimedOut
)

// finishLocked closes the attempt exactly once. A win extends the
// streak; elimination resets it; a timeout loses the day but keeps the
// streak intact.
func (c *Controller) finishLocked(ctx context.Context, playerID int64, a *attempt, res result) {
	a.terminal = true
	c.timers.Cancel(timerName(playerID))
	delete(c.attempts, playerID)

	var footer string
	switch res {
	case resultWon:
		a.rec.Streak++
		a.rec.TotalWins++
		footer = fmt.Sprintf("🎉 %s cleared the daily challenge! Streak: %d", a.username, a.rec.Streak)
		if c.streaks != nil {
			streak := a.rec.Streak
			go func() {
				if err := c.streaks.ObserveStreak(context.Background(), playerID, a.username, streak); err != nil {
					log.Error().Err(err).Int64("player_id", playerID).Msg("failed to record streak high-water mark")
				}
			}()
		}
	case resultEliminated:
		a.rec.Streak = 0
		footer = fmt.Sprintf("💀 Out of guesses! It was %s. Streak reset.", c.revealNames(a.rec.Entities))
	case resultTimedOut:
		footer = fmt.Sprintf("⏰ Time's up! It was %s.", c.revealNames(a.rec.Entities))
	}

	if err := c.store.Upsert(ctx, a.rec); err != nil {
		log.Error().Err(err).Int64("player_id", playerID).Msg("failed to save daily result")
	}

	// Reveal everything regardless of outcome.
	c.redrawAsLocked(a, a.rec.Entities, footer)

	log.Info().
		Int64("player_id", playerID).
		Int("result", int(res)).
		Int("streak", a.rec.Streak).
		Msg("daily attempt finished")
}

func (c *Controller) revealNames(ids []int32) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := c.catalog.Name(int(id)); ok {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

func (c *Controller) redrawLocked(a *attempt, caption string) {
	c.redrawAsLocked(a, a.rec.Guessed, caption)
}

// redrawAsLocked re-renders the composite with the given reveal set and
// edits it into the attempt's message.
func (c *Controller) redrawAsLocked(a *attempt, revealed []int32, caption string) {
	if a.msg == nil {
		return
	}
	img, err := c.renderer.DailyComposite(a.rec.Entities, revealed)
	if err != nil {
		log.Warn().Err(err).Msg("failed to re-render daily composite")
		return
	}
	ref, err := c.messenger.EditPhoto(a.msg, caption, img)
	if err != nil {
		log.Warn().Err(err).Int64("chat_id", a.chatID).Msg("failed to edit daily composite")
		return
	}
	a.msg = ref
}

// RunScheduler broadcasts the streak top list at every reset boundary
// until the context is cancelled.
func (c *Controller) RunScheduler(ctx context.Context) {
	for {
		wait := c.UntilNextReset(time.Now())
		log.Info().Dur("wait", wait).Msg("daily reset scheduled")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := c.store.ResetAll(ctx); err != nil {
			log.Error().Err(err).Msg("failed to reset daily day state")
		}
		c.broadcastTopStreaks(ctx)
	}
}

func (c *Controller) broadcastTopStreaks(ctx context.Context) {
	if c.cfg.BroadcastChatID == 0 {
		return
	}
	top, err := c.store.TopStreaks(ctx, 10)
	if err != nil {
		log.Error().Err(err).Msg("failed to load streak top list")
		return
	}
	if len(top) == 0 {
		return
	}

	text := "🔥 Daily Challenge Streaks\n"
	for i, r := range top {
		text += fmt.Sprintf("%d. %s — %d\n", i+1, r.Username, r.Streak)
	}
	text += "\nA new daily challenge is live! /pokedaily"

	if _, err := c.messenger.Send(c.cfg.BroadcastChatID, text); err != nil {
		log.Warn().Err(err).Msg("failed to broadcast streak top list")
	}
}
