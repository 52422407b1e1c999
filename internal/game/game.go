// Package game defines the shared primitives of the guessing games:
// reveal modes, guess judgment and hint generation, plus the messaging
// surface the controllers publish through.
package game

import (
	"errors"
	"strings"
)

// Mode identifies how the round image is initially concealed. The mode
// name doubles as the leaderboard namespace for session wins.
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeSilhouette Mode = "silhouette"
	ModeSpotlight  Mode = "spotlight"
)

// ErrUnknownMode is returned by ParseMode for unrecognised input.
var ErrUnknownMode = errors.New("unknown game mode")

// ParseMode resolves user input to a Mode, accepting short aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, nil
	case "sil", "silhouette":
		return ModeSilhouette, nil
	case "spot", "spotlight":
		return ModeSpotlight, nil
	default:
		return "", ErrUnknownMode
	}
}

// Namespace returns the leaderboard namespace for the mode.
func (m Mode) Namespace() string {
	return string(m)
}

// HasHint reports whether the mode gets a partial-name hint before the
// answer window closes. Spotlight rounds stay unhinted.
func (m Mode) HasHint() bool {
	return m == ModeNormal || m == ModeSilhouette
}

// Modes returns all reveal modes.
func Modes() []Mode {
	return []Mode{ModeNormal, ModeSilhouette, ModeSpotlight}
}

// MessageRef is an opaque handle to a published message, suitable for
// later edits or deletion. The concrete type belongs to the messenger
// implementation.
type MessageRef any

// Messenger is the messaging surface the game controllers publish
// through. Implementations must be safe for concurrent use.
type Messenger interface {
	Send(chatID int64, text string) (MessageRef, error)
	SendPhoto(chatID int64, caption string, png []byte) (MessageRef, error)
	EditPhoto(ref MessageRef, caption string, png []byte) (MessageRef, error)
	Delete(ref MessageRef) error
}
