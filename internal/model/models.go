// Package model defines the data models for the Pokémon guessing bot.
package model

// PlayerScore represents a player's win count in one leaderboard namespace.
// One row exists per (player, mode) pair.
type PlayerScore struct {
	PlayerID int64  `db:"player_id"`
	Username string `db:"username"`
	Mode     string `db:"mode"`
	Wins     int    `db:"wins"`
}

// PlayerStats aggregates a player's performance across all sessions.
type PlayerStats struct {
	PlayerID            int64  `db:"player_id"`
	Username            string `db:"username"`
	GamesPlayed         int    `db:"games_played"`
	GamesWon            int    `db:"games_won"`
	LeaderboardWins     int    `db:"leaderboard_wins"`
	TotalGuessTimeMs    int64  `db:"total_guess_time_ms"`
	TotalCorrectGuesses int    `db:"total_correct_guesses"`
	NormalWins          int    `db:"normal_wins"`
	SilhouetteWins      int    `db:"silhouette_wins"`
	SpotlightWins       int    `db:"spotlight_wins"`
	BestStreak          int    `db:"best_streak"`
}

// WinRate returns the percentage of recorded rounds the player won.
func (s *PlayerStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed) * 100
}

// AvgGuessTimeSeconds returns the average latency of a correct guess.
func (s *PlayerStats) AvgGuessTimeSeconds() float64 {
	if s.TotalCorrectGuesses == 0 {
		return 0
	}
	return float64(s.TotalGuessTimeMs) / 1000 / float64(s.TotalCorrectGuesses)
}

// BestMode returns the mode the player has won most often.
func (s *PlayerStats) BestMode() string {
	best, wins := "normal", s.NormalWins
	if s.SilhouetteWins > wins {
		best, wins = "silhouette", s.SilhouetteWins
	}
	if s.SpotlightWins > wins {
		best = "spotlight"
	}
	return best
}

// DailyRecord holds a player's state for the daily challenge.
// Entities/Guessed/WrongGuesses describe the current game day and are
// wiped by the scheduled reset; Streak and TotalWins persist across days.
type DailyRecord struct {
	PlayerID     int64   `db:"player_id"`
	Username     string  `db:"username"`
	Day          string  `db:"day"`
	Streak       int     `db:"streak"`
	TotalWins    int     `db:"total_wins"`
	Entities     []int32 `db:"entities"`
	Guessed      []int32 `db:"guessed"`
	WrongGuesses int     `db:"wrong_guesses"`
}

// HasGuessed reports whether the entity has already been revealed.
func (r *DailyRecord) HasGuessed(id int32) bool {
	for _, g := range r.Guessed {
		if g == id {
			return true
		}
	}
	return false
}

// AllGuessed reports whether every assigned entity has been revealed.
func (r *DailyRecord) AllGuessed() bool {
	return len(r.Entities) > 0 && len(r.Guessed) == len(r.Entities)
}

// Assigned reports whether today's entities have been drawn for this record.
func (r *DailyRecord) Assigned() bool {
	return len(r.Entities) > 0
}
