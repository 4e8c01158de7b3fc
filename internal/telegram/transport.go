// Package telegram connects the onboarding engine to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobseeker-bot/internal/onboarding"
)

// botAPI is the subset of *tgbotapi.BotAPI the transport uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Transport sends engine replies as Telegram messages. tgbotapi calls are not cancellable,
// so ctx is only checked before each request.
type Transport struct {
	bot botAPI
}

// NewTransport wraps bot, usually a *tgbotapi.BotAPI.
func NewTransport(bot botAPI) *Transport {
	return &Transport{bot: bot}
}

// Reply sends r to chatID with its keyboard, if any.
func (t *Transport) Reply(ctx context.Context, chatID int64, r onboarding.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if markup := replyMarkup(r.Keyboard); markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// DeleteMessage removes a message from the chat. Bots can only delete recent messages.
func (t *Transport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("telegram: delete message: %w", err)
	}
	return nil
}

// ResolveDownloadLink asks Telegram for the file path and returns its download URL.
// The URL embeds the bot token and must not be logged.
func (t *Transport) ResolveDownloadLink(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	link, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("telegram: get file: %w", err)
	}
	return link, nil
}

func replyMarkup(kb *onboarding.Keyboard) any {
	switch {
	case kb == nil:
		return nil
	case kb.Remove:
		return tgbotapi.NewRemoveKeyboard(false)
	case len(kb.Rows) == 0:
		return nil
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = kb.OneTime
	markup.ResizeKeyboard = kb.Resize
	return markup
}
