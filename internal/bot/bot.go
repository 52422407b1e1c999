// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"pokemon-guess-bot/internal/config"
	"pokemon-guess-bot/internal/game/daily"
	"pokemon-guess-bot/internal/game/session"
	"pokemon-guess-bot/internal/handler"
	"pokemon-guess-bot/internal/pkg/lock"
	"pokemon-guess-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	sessionCtrl *session.Controller
	dailyCtrl   *daily.Controller

	gameHandler        *handler.GameHandler
	dailyHandler       *handler.DailyHandler
	leaderboardHandler *handler.LeaderboardHandler
	statsHandler       *handler.StatsHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config             *config.Config
	SessionController  *session.Controller
	DailyController    *daily.Controller
	LeaderboardService *service.LeaderboardService
	StatsService       *service.StatsService
	PlayerLock         *lock.PlayerLock
}

// NewTelebot creates the raw telebot instance. It is created before the
// controllers so they can post through it.
func NewTelebot(cfg *config.Config) (*tele.Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return teleBot, nil
}

// New assembles the bot from the given dependencies.
func New(teleBot *tele.Bot, deps *Dependencies) *Bot {
	b := &Bot{
		bot:         teleBot,
		cfg:         deps.Config,
		sessionCtrl: deps.SessionController,
		dailyCtrl:   deps.DailyController,
	}

	b.gameHandler = handler.NewGameHandler(deps.SessionController, deps.DailyController)
	b.dailyHandler = handler.NewDailyHandler(deps.DailyController, deps.LeaderboardService, deps.PlayerLock)
	b.leaderboardHandler = handler.NewLeaderboardHandler(deps.LeaderboardService)
	b.statsHandler = handler.NewStatsHandler(deps.StatsService)

	b.registerMiddleware()
	b.registerHandlers()

	return b
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers and the text fan-in.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.handleStart)
	b.bot.Handle("/help", b.handleStart)

	// Session commands
	b.bot.Handle("/poke", b.gameHandler.HandlePoke)
	b.bot.Handle("/stop", b.gameHandler.HandleStop)

	// Daily challenge commands
	b.bot.Handle("/pokedaily", b.dailyHandler.HandleDaily)
	b.bot.Handle("/dailytop", b.dailyHandler.HandleDailyTop)

	// Reporting commands
	b.bot.Handle("/leaderboard", b.leaderboardHandler.HandleLeaderboard)
	b.bot.Handle("/pokestats", b.statsHandler.HandleStats)

	// Every other text message is a potential guess.
	b.bot.Handle(tele.OnText, b.gameHandler.HandleText)
}

// handleStart shows the command overview.
func (b *Bot) handleStart(c tele.Context) error {
	return c.Reply("Who's that Pokémon?\n\n" +
		"/poke [generation|all] [rounds] [mode] — start a guessing game\n" +
		"/stop — stop the running game\n" +
		"/pokedaily — play today's daily challenge\n" +
		"/dailytop — daily challenge leaders\n" +
		"/leaderboard [mode] — win leaderboard\n" +
		"/pokestats — your stats\n\n" +
		"Modes: normal, silhouette, spotlight")
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
