package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobseeker-bot/internal/onboarding"
)

// ToMessage converts a private-chat update into an engine message.
// Updates without a message or sender (edits, callbacks, channel posts) report false.
func ToMessage(u tgbotapi.Update) (onboarding.Message, bool) {
	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil || m.From.IsBot {
		return onboarding.Message{}, false
	}
	msg := onboarding.Message{
		UserID:    m.From.ID,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Username:  m.From.UserName,
		Text:      m.Text,
	}
	if m.IsCommand() {
		msg.Command = m.Command()
	}
	switch {
	case len(m.Photo) > 0:
		variants := make([]onboarding.PhotoVariant, 0, len(m.Photo))
		for _, p := range m.Photo {
			variants = append(variants, onboarding.PhotoVariant{
				FileID:   p.FileID,
				Width:    p.Width,
				Height:   p.Height,
				FileSize: p.FileSize,
			})
		}
		msg.Attachment = &onboarding.Attachment{Kind: onboarding.AttachmentPhoto, Variants: variants}
	case m.Document != nil:
		msg.Attachment = &onboarding.Attachment{
			Kind:     onboarding.AttachmentDocument,
			FileID:   m.Document.FileID,
			MimeType: m.Document.MimeType,
		}
	}
	return msg, true
}
