package daily

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokemon-guess-bot/internal/config"
	"pokemon-guess-bot/internal/game"
	"pokemon-guess-bot/internal/model"
	"pokemon-guess-bot/internal/pokedex"
)

type memStore struct {
	mu     sync.Mutex
	recs   map[int64]*model.DailyRecord
	resets int
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[int64]*model.DailyRecord)}
}

func clone(rec *model.DailyRecord) *model.DailyRecord {
	cp := *rec
	cp.Entities = append([]int32(nil), rec.Entities...)
	cp.Guessed = append([]int32(nil), rec.Guessed...)
	return &cp
}

func (s *memStore) Get(ctx context.Context, playerID int64) (*model.DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[playerID]
	if !ok {
		return nil, nil
	}
	return clone(rec), nil
}

func (s *memStore) Upsert(ctx context.Context, rec *model.DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.PlayerID] = clone(rec)
	return nil
}

func (s *memStore) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

func (s *memStore) TopStreaks(ctx context.Context, limit int) ([]model.DailyRecord, error) {
	return nil, nil
}

func (s *memStore) TopByWins(ctx context.Context, limit int) ([]model.DailyRecord, error) {
	return nil, nil
}

func (s *memStore) get(playerID int64) *model.DailyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs[playerID]
}

type fakeMessenger struct {
	mu    sync.Mutex
	texts []string
	edits []string
	ref   int
}

func (m *fakeMessenger) Send(chatID int64, text string) (game.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	m.ref++
	return m.ref, nil
}

func (m *fakeMessenger) SendPhoto(chatID int64, caption string, png []byte) (game.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ref++
	return m.ref, nil
}

func (m *fakeMessenger) EditPhoto(ref game.MessageRef, caption string, png []byte) (game.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, caption)
	return ref, nil
}

func (m *fakeMessenger) Delete(ref game.MessageRef) error { return nil }

func (m *fakeMessenger) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

func (m *fakeMessenger) lastEdit() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.edits) == 0 {
		return ""
	}
	return m.edits[len(m.edits)-1]
}

type fakeRenderer struct{}

func (fakeRenderer) RoundImage(id int, mode game.Mode) ([]byte, error) { return []byte{1}, nil }
func (fakeRenderer) FullImage(id int) ([]byte, error)                  { return []byte{1}, nil }
func (fakeRenderer) DailyComposite(ids, guessed []int32) ([]byte, error) {
	return []byte{1}, nil
}

func testCatalog() *pokedex.Catalog {
	return pokedex.New(map[int]string{1: "Bulbasaur", 2: "Ivysaur", 3: "Venusaur"})
}

func testConfig() config.DailyConfig {
	return config.DailyConfig{
		Window:     2 * time.Second,
		WrongLimit: 5,
		ResetHour:  8,
		Timezone:   "UTC",
	}
}

func newTestController(t *testing.T, store Store, cfg config.DailyConfig) (*Controller, *fakeMessenger) {
	t.Helper()
	msgr := &fakeMessenger{}
	ctrl, err := NewController(Deps{
		Catalog:   testCatalog(),
		Renderer:  fakeRenderer{},
		Messenger: msgr,
		Store:     store,
		Config:    cfg,
	})
	require.NoError(t, err)
	return ctrl, msgr
}

// winAttempt guesses all three entities correctly.
func winAttempt(ctx context.Context, ctrl *Controller, chatID, playerID int64) {
	for _, name := range []string{"Bulbasaur", "Ivysaur", "Venusaur"} {
		ctrl.HandleGuess(ctx, chatID, playerID, name)
	}
}

func TestDaily_WinIncrementsStreakAndWins(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ctrl, msgr := newTestController(t, store, testConfig())

	require.NoError(t, ctrl.StartAttempt(ctx, 100, 10, "ash"))
	winAttempt(ctx, ctrl, 100, 10)

	rec := store.get(10)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.Streak)
	assert.Equal(t, 1, rec.TotalWins)
	assert.True(t, rec.AllGuessed())
	assert.Contains(t, msgr.lastEdit(), "Streak: 1")

	// The attempt is spent for the rest of the day.
	err := ctrl.StartAttempt(ctx, 100, 10, "ash")
	assert.ErrorIs(t, err, ErrAlreadyPlayed)
}

func TestDaily_EliminationOnFifthWrongGuess(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ctrl, msgr := newTestController(t, store, testConfig())

	// Carry in a streak so the reset is observable.
	yesterday := ctrl.dayKey(time.Now().AddDate(0, 0, -1))
	require.NoError(t, store.Upsert(ctx, &model.DailyRecord{
		PlayerID: 10, Username: "ash", Day: yesterday, Streak: 4, TotalWins: 7,
	}))

	require.NoError(t, ctrl.StartAttempt(ctx, 100, 10, "ash"))

	for i := 0; i < 4; i++ {
		assert.True(t, ctrl.HandleGuess(ctx, 100, 10, "missingno"))
	}
	rec := store.get(10)
	assert.Equal(t, 4, rec.WrongGuesses)
	assert.Equal(t, 4, rec.Streak, "streak intact before elimination")
	assert.Contains(t, msgr.lastText(), "1 guesses left")

	// Fifth wrong guess eliminates and zeroes the streak.
	assert.True(t, ctrl.HandleGuess(ctx, 100, 10, "missingno"))
	rec = store.get(10)
	assert.Equal(t, 5, rec.WrongGuesses)
	assert.Zero(t, rec.Streak)
	assert.Equal(t, 7, rec.TotalWins)
	assert.Contains(t, msgr.lastEdit(), "Out of guesses")

	// The attempt is gone: further text is no longer consumed.
	assert.False(t, ctrl.HandleGuess(ctx, 100, 10, "bulbasaur"))
}

func TestDaily_TimeoutKeepsStreak(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	cfg := testConfig()
	cfg.Window = 20 * time.Millisecond
	ctrl, msgr := newTestController(t, store, cfg)

	yesterday := ctrl.dayKey(time.Now().AddDate(0, 0, -1))
	require.NoError(t, store.Upsert(ctx, &model.DailyRecord{
		PlayerID: 10, Username: "ash", Day: yesterday, Streak: 3, TotalWins: 5,
	}))

	require.NoError(t, ctrl.StartAttempt(ctx, 100, 10, "ash"))

	require.Eventually(t, func() bool {
		return !ctrl.HasActiveAttempt(10)
	}, 2*time.Second, time.Millisecond)

	rec := store.get(10)
	assert.Equal(t, 3, rec.Streak, "a timeout loses the day but keeps the streak")
	assert.Equal(t, 5, rec.TotalWins)
	assert.Contains(t, msgr.lastEdit(), "Time's up")

	assert.ErrorIs(t, ctrl.StartAttempt(ctx, 100, 10, "ash"), ErrAlreadyPlayed)
}

func TestDaily_StreakCarryRules(t *testing.T) {
	ctx := context.Background()

	t.Run("carries from yesterday", func(t *testing.T) {
		store := newMemStore()
		ctrl, _ := newTestController(t, store, testConfig())
		yesterday := ctrl.dayKey(time.Now().AddDate(0, 0, -1))
		require.NoError(t, store.Upsert(ctx, &model.DailyRecord{
			PlayerID: 10, Username: "ash", Day: yesterday, Streak: 2, TotalWins: 2,
		}))

		require.NoError(t, ctrl.StartAttempt(ctx, 100, 10, "ash"))
		winAttempt(ctx, ctrl, 100, 10)
		assert.Equal(t, 3, store.get(10).Streak)
	})

	t.Run("breaks after a missed day", func(t *testing.T) {
		store := newMemStore()
		ctrl, _ := newTestController(t, store, testConfig())
		twoDaysAgo := ctrl.dayKey(time.Now().AddDate(0, 0, -2))
		require.NoError(t, store.Upsert(ctx, &model.DailyRecord{
			PlayerID: 10, Username: "ash", Day: twoDaysAgo, Streak: 9, TotalWins: 9,
		}))

		require.NoError(t, ctrl.StartAttempt(ctx, 100, 10, "ash"))
		winAttempt(ctx, ctrl, 100, 10)
		rec := store.get(10)
		assert.Equal(t, 1, rec.Streak)
		assert.Equal(t, 10, rec.TotalWins, "total wins survive a broken streak")
	})
}

func TestDaily_AttemptBoundToChat(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ctrl, _ := newTestController(t, store, testConfig())

	require.NoError(t, ctrl.StartAttempt(ctx, 100, 10, "ash"))

	// Guesses in a different chat are ignored.
	assert.False(t, ctrl.HandleGuess(ctx, 200, 10, "bulbasaur"))
	assert.Empty(t, store.get(10).Guessed)

	// A second attempt cannot start anywhere while one is running.
	assert.ErrorIs(t, ctrl.StartAttempt(ctx, 200, 10, "ash"), ErrAttemptActive)
}

func TestDaily_EntitiesAreDistinct(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ctrl, _ := newTestController(t, store, testConfig())

	require.NoError(t, ctrl.StartAttempt(ctx, 100, 10, "ash"))

	rec := store.get(10)
	require.Len(t, rec.Entities, 3)
	seen := make(map[int32]bool)
	for _, id := range rec.Entities {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestDaily_UntilNextReset(t *testing.T) {
	ctrl, _ := newTestController(t, newMemStore(), testConfig())

	at := func(hour, min int) time.Time {
		return time.Date(2026, 8, 28, hour, min, 0, 0, time.UTC)
	}

	assert.Equal(t, 2*time.Hour, ctrl.UntilNextReset(at(6, 0)))
	assert.Equal(t, 24*time.Hour, ctrl.UntilNextReset(at(8, 0)))
	assert.Equal(t, 23*time.Hour, ctrl.UntilNextReset(at(9, 0)))
}

func TestDaily_DayKeyRollsAtResetHour(t *testing.T) {
	ctrl, _ := newTestController(t, newMemStore(), testConfig())

	before := time.Date(2026, 8, 28, 7, 59, 0, 0, time.UTC)
	after := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-08-27", ctrl.dayKey(before))
	assert.Equal(t, "2026-08-28", ctrl.dayKey(after))
	assert.NotEqual(t, ctrl.dayKey(before), ctrl.dayKey(after))
}
