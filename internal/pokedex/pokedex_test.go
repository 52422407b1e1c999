package pokedex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *Catalog {
	return New(map[int]string{
		1:   "Bulbasaur",
		25:  "Pikachu",
		151: "Mew",
		152: "Chikorita",
		252: "Treecko",
		494: "Victini",
		649: "Genesect",
	})
}

func TestGenerationOf(t *testing.T) {
	tests := []struct {
		name string
		id   int
		gen  int
	}{
		{"gen1 lower bound", 1, 1},
		{"gen1 upper bound", 151, 1},
		{"gen2 lower bound", 152, 2},
		{"gen3", 300, 3},
		{"gen4", 400, 4},
		{"gen5 upper bound", 649, 5},
		{"out of range", 650, 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.gen, GenerationOf(tt.id))
		})
	}
}

func TestCatalog_Pool(t *testing.T) {
	c := testCatalog()

	t.Run("single generation", func(t *testing.T) {
		pool, err := c.Pool(1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 25, 151}, pool)
	})

	t.Run("wildcard is union of all buckets", func(t *testing.T) {
		pool, err := c.Pool(WildcardGeneration)
		require.NoError(t, err)
		assert.Len(t, pool, c.Len())
	})

	t.Run("unknown generation", func(t *testing.T) {
		_, err := c.Pool(9)
		assert.ErrorIs(t, err, ErrGenerationNotFound)
	})

	t.Run("known generation with no entries", func(t *testing.T) {
		sparse := New(map[int]string{1: "Bulbasaur"})
		_, err := sparse.Pool(3)
		assert.ErrorIs(t, err, ErrEmptyPool)
	})

	t.Run("pool is a copy", func(t *testing.T) {
		pool, err := c.Pool(WildcardGeneration)
		require.NoError(t, err)
		pool[0] = -1

		again, err := c.Pool(WildcardGeneration)
		require.NoError(t, err)
		assert.NotEqual(t, -1, again[0])
	})
}

func TestCatalog_Name(t *testing.T) {
	c := testCatalog()

	name, ok := c.Name(25)
	assert.True(t, ok)
	assert.Equal(t, "Pikachu", name)

	_, ok = c.Name(9999)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pokedex.json")

	data, err := json.Marshal(map[string]string{"1": "Bulbasaur", "25": "Pikachu"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	name, ok := c.Name(1)
	assert.True(t, ok)
	assert.Equal(t, "Bulbasaur", name)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("bad id key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pokedex.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"abc": "Missingno"}`), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
