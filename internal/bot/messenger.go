package bot

import (
	"bytes"
	"fmt"

	tele "gopkg.in/telebot.v3"

	"pokemon-guess-bot/internal/game"
)

// TeleMessenger adapts the telebot API to the game.Messenger interface
// the controllers post through.
type TeleMessenger struct {
	bot *tele.Bot
}

// NewTeleMessenger wraps a telebot instance.
func NewTeleMessenger(b *tele.Bot) *TeleMessenger {
	return &TeleMessenger{bot: b}
}

// Send posts a plain text message.
func (m *TeleMessenger) Send(chatID int64, text string) (game.MessageRef, error) {
	msg, err := m.bot.Send(tele.ChatID(chatID), text)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// SendPhoto posts a PNG with a caption.
func (m *TeleMessenger) SendPhoto(chatID int64, caption string, png []byte) (game.MessageRef, error) {
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	msg, err := m.bot.Send(tele.ChatID(chatID), photo)
	if err != nil {
		return nil, fmt.Errorf("failed to send photo: %w", err)
	}
	return msg, nil
}

// EditPhoto replaces the media and caption of a previously sent photo.
func (m *TeleMessenger) EditPhoto(ref game.MessageRef, caption string, png []byte) (game.MessageRef, error) {
	msg, ok := ref.(*tele.Message)
	if !ok {
		return nil, fmt.Errorf("message ref is %T, not a telegram message", ref)
	}
	photo := &tele.Photo{
		File:    tele.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	edited, err := m.bot.EditMedia(msg, photo)
	if err != nil {
		return nil, fmt.Errorf("failed to edit photo: %w", err)
	}
	return edited, nil
}

// Delete removes a previously sent message.
func (m *TeleMessenger) Delete(ref game.MessageRef) error {
	msg, ok := ref.(*tele.Message)
	if !ok {
		return fmt.Errorf("message ref is %T, not a telegram message", ref)
	}
	if err := m.bot.Delete(msg); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
