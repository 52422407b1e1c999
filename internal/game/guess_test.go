package game

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMatchGuess(t *testing.T) {
	tests := []struct {
		name  string
		guess string
		want  bool
	}{
		{"exact", "Pikachu", true},
		{"lowercase", "pikachu", true},
		{"uppercase", "PIKACHU", true},
		{"surrounding whitespace", "  pikachu \n", true},
		{"prefix only", "pika", false},
		{"extra word", "pikachu!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchGuess(tt.guess, "Pikachu"))
		})
	}
}

func TestMatchGuess_SeparatedNames(t *testing.T) {
	assert.True(t, MatchGuess("mr. mime", "Mr. Mime"))
	assert.True(t, MatchGuess("ho-oh", "Ho-Oh"))
	assert.False(t, MatchGuess("mr mime", "Mr. Mime"))
}

func TestGenerateHint(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	hint := GenerateHint("Pikachu", rng)
	cells := strings.Split(hint, " ")
	assert.Len(t, cells, len("pikachu"))

	revealed := 0
	for _, c := range cells {
		if c != string(maskRune) {
			revealed++
		}
	}
	// len/2 = 3 letters revealed for a 7-letter name.
	assert.Equal(t, 3, revealed)
}

func TestGenerateHint_ShortName(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	// Two characters is below the minimum reveal of 2, so everything shows.
	hint := GenerateHint("ab", rng)
	assert.NotContains(t, hint, string(maskRune))
}

func TestGenerateHintProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-z]([a-z .-]{0,14}[a-z])?`).Draw(t, "name")
		seed := rapid.Int64().Draw(t, "seed")
		rng := rand.New(rand.NewSource(seed))

		hint := GenerateHint(name, rng)
		cells := strings.Split(hint, " ")
		letters := []rune(strings.ToLower(name))

		if len(cells) != len(letters) {
			t.Fatalf("hint has %d cells for %d characters", len(cells), len(letters))
		}

		maskable, revealed := 0, 0
		for i, cell := range cells {
			r := letters[i]
			switch {
			case isSeparator(r):
				// Separators are always visible as-is.
				if cell != string(r) {
					t.Fatalf("separator at %d masked: %q", i, cell)
				}
			case cell == string(maskRune):
				maskable++
			default:
				// Revealed letters match the name, uppercased.
				if cell != strings.ToUpper(string(r)) {
					t.Fatalf("cell %d is %q, want %q", i, cell, strings.ToUpper(string(r)))
				}
				maskable++
				revealed++
			}
		}

		want := len(letters) / 2
		if want < 2 {
			want = 2
		}
		if want > maskable {
			want = maskable
		}
		if revealed != want {
			t.Fatalf("revealed %d letters, want %d (name %q)", revealed, want, name)
		}
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeNormal, false},
		{"normal", ModeNormal, false},
		{"sil", ModeSilhouette, false},
		{"Silhouette", ModeSilhouette, false},
		{"spot", ModeSpotlight, false},
		{"spotlight", ModeSpotlight, false},
		{"hardcore", "", true},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.in, func(t *testing.T) {
			mode, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestModeHasHint(t *testing.T) {
	assert.True(t, ModeNormal.HasHint())
	assert.True(t, ModeSilhouette.HasHint())
	assert.False(t, ModeSpotlight.HasHint())
}
