// internal/infra/telegram/client.go
package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter sends bot-initiated messages through gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot           *telebot.Bot
	facultyChatID int64
}

func NewTelebotAdapter(b *telebot.Bot, facultyChatID int64) *TelebotAdapter {
	return &TelebotAdapter{bot: b, facultyChatID: facultyChatID}
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Send(telebot.ChatID(chatID), text, options)
	return err
}

// NotifyFaculty posts to the faculty chat. It is a no-op when no chat is configured.
func (tba *TelebotAdapter) NotifyFaculty(ctx context.Context, text string) error {
	if tba.facultyChatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tba.SendMessage(tba.facultyChatID, text, &telebot.SendOptions{DisableWebPagePreview: true})
}
