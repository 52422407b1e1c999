package game

import (
	"math/rand"
	"strings"
)

// MatchGuess reports whether a guess hits the canonical name. Matching
// is exact after trimming and case folding; anything else is simply not
// a match, never an error.
func MatchGuess(guess, name string) bool {
	return strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(name))
}

const maskRune = '⬛'

// isSeparator reports whether the character is shown unmasked in hints.
func isSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '.'
}

// GenerateHint builds a partially revealed rendering of the name:
// separators stay visible, and max(2, len/2) of the remaining characters
// are uncovered at positions chosen uniformly at random. Revealed
// letters are uppercased, masked positions become filled squares, and
// the result is space-joined for readability.
func GenerateHint(name string, rng *rand.Rand) string {
	letters := []rune(strings.ToLower(name))
	hint := make([]rune, len(letters))

	var maskable []int
	for i, r := range letters {
		if isSeparator(r) {
			hint[i] = r
		} else {
			hint[i] = maskRune
			maskable = append(maskable, i)
		}
	}

	reveal := len(letters) / 2
	if reveal < 2 {
		reveal = 2
	}
	if reveal > len(maskable) {
		reveal = len(maskable)
	}

	rng.Shuffle(len(maskable), func(i, j int) {
		maskable[i], maskable[j] = maskable[j], maskable[i]
	})
	for _, idx := range maskable[:reveal] {
		hint[idx] = []rune(strings.ToUpper(string(letters[idx])))[0]
	}

	parts := make([]string, len(hint))
	for i, r := range hint {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}
