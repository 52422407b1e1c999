// Package session implements the multi-round "who's that Pokémon"
// session: one active session per chat, timed guess windows, hint and
// timeout handling, and the final tally with tie-aware crediting.
package session

import (
	"fmt"
	"sort"
	"time"

	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/pkg/sched"
)

// Status is the lifecycle state of a session.
type Status int

const (
	StatusStarting Status = iota
	StatusRoundActive
	StatusRoundGrading
	StatusFinished
	StatusForceStopped
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRoundActive:
		return "round_active"
	case StatusRoundGrading:
		return "round_grading"
	case StatusFinished:
		return "finished"
	case StatusForceStopped:
		return "force_stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further rounds can happen.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusForceStopped
}

// round is the ephemeral state of the currently open guess window.
type round struct {
	entityID int
	name     string
	openedAt time.Time
	msg      game.MessageRef
}

// Session is one active multi-round game in a single chat.
type Session struct {
	chatID      int64
	mode        game.Mode
	pool        []int
	roundIndex  int
	roundTarget int
	scores      map[int64]int
	usernames   map[int64]string
	anyCorrect  bool
	status      Status
	cur         *round
	timers      *sched.TimerSet
}

func newSession(chatID int64, mode game.Mode, pool []int, rounds int) *Session {
	return &Session{
		chatID:      chatID,
		mode:        mode,
		pool:        pool,
		roundTarget: rounds,
		scores:      make(map[int64]int),
		usernames:   make(map[int64]string),
		status:      StatusStarting,
		timers:      sched.NewTimerSet(),
	}
}

// standing is one row of the final scoreboard.
type standing struct {
	PlayerID int64
	Username string
	Score    int
}

// standings returns the session scores sorted descending. The sort is
// stable so equal scores keep map-insertion-independent deterministic
// order by player id.
func (s *Session) standings() []standing {
	rows := make([]standing, 0, len(s.scores))
	for id, score := range s.scores {
		rows = append(rows, standing{PlayerID: id, Username: s.usernames[id], Score: score})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return rows
}

// coWinners returns every player tied at the maximum score.
func (s *Session) coWinners() []standing {
	rows := s.standings()
	if len(rows) == 0 {
		return nil
	}
	max := rows[0].Score
	var winners []standing
	for _, r := range rows {
		if r.Score == max {
			winners = append(winners, r)
		}
	}
	return winners
}

// formatStandings renders the final scoreboard message.
func formatStandings(rows []standing, footer string) string {
	text := "⭐ Final Scores\n"
	for i, r := range rows {
		text += fmt.Sprintf("%d. %s — %d\n", i+1, r.Username, r.Score)
	}
	if footer != "" {
		text += footer
	}
	return text
}

// introTitle is the session opener per mode.
func introTitle(mode game.Mode) string {
	switch mode {
	case game.ModeSilhouette:
		return "Who's that Pokémon? (Silhouette Mode)"
	case game.ModeSpotlight:
		return "Who's that Pokémon? (Spotlight Mode)"
	default:
		return "Who's that Pokémon?"
	}
}
