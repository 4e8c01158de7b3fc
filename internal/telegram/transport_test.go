package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobseeker-bot/internal/onboarding"
)

type fakeBot struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	fileURL  string
	fileErr  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, f.sendErr
}

func (f *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	if f.fileErr != nil {
		return "", f.fileErr
	}
	return f.fileURL + fileID, nil
}

func TestTransport_ReplyWithKeyboard(t *testing.T) {
	bot := &fakeBot{}
	tr := NewTransport(bot)
	err := tr.Reply(context.Background(), 42, onboarding.Reply{
		Text:     "choose",
		Keyboard: &onboarding.Keyboard{Rows: [][]string{{"a", "b"}, {"c"}}, OneTime: true, Resize: true},
	})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", bot.sent[0])
	}
	if msg.ChatID != 42 || msg.Text != "choose" {
		t.Errorf("msg = chat %d text %q", msg.ChatID, msg.Text)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("markup %T, want ReplyKeyboardMarkup", msg.ReplyMarkup)
	}
	if len(kb.Keyboard) != 2 || len(kb.Keyboard[0]) != 2 || kb.Keyboard[1][0].Text != "c" {
		t.Errorf("keyboard = %+v", kb.Keyboard)
	}
	if !kb.OneTimeKeyboard || !kb.ResizeKeyboard {
		t.Errorf("flags one_time=%v resize=%v", kb.OneTimeKeyboard, kb.ResizeKeyboard)
	}
}

func TestTransport_ReplyMarkupVariants(t *testing.T) {
	bot := &fakeBot{}
	tr := NewTransport(bot)
	_ = tr.Reply(context.Background(), 1, onboarding.Reply{Text: "plain"})
	_ = tr.Reply(context.Background(), 1, onboarding.Reply{Text: "done", Keyboard: &onboarding.Keyboard{Remove: true}})

	if m := bot.sent[0].(tgbotapi.MessageConfig).ReplyMarkup; m != nil {
		t.Errorf("plain reply markup = %#v, want nil", m)
	}
	rm, ok := bot.sent[1].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	if !ok || !rm.RemoveKeyboard {
		t.Errorf("remove markup = %#v", bot.sent[1].(tgbotapi.MessageConfig).ReplyMarkup)
	}
}

func TestTransport_Errors(t *testing.T) {
	bot := &fakeBot{sendErr: errors.New("Forbidden: bot was blocked by the user")}
	tr := NewTransport(bot)
	if err := tr.Reply(context.Background(), 1, onboarding.Reply{Text: "x"}); err == nil {
		t.Error("Reply should surface send errors")
	}
	if err := tr.DeleteMessage(context.Background(), 1, 7); err == nil {
		t.Error("DeleteMessage should surface request errors")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := len(bot.sent)
	if err := tr.Reply(ctx, 1, onboarding.Reply{Text: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Reply(cancelled) = %v", err)
	}
	if len(bot.sent) != before {
		t.Error("cancelled context should not send")
	}
}

func TestTransport_DeleteMessage(t *testing.T) {
	bot := &fakeBot{}
	if err := NewTransport(bot).DeleteMessage(context.Background(), 9, 77); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	del, ok := bot.requests[0].(tgbotapi.DeleteMessageConfig)
	if !ok || del.ChatID != 9 || del.MessageID != 77 {
		t.Errorf("request = %#v", bot.requests[0])
	}
}

func TestTransport_ResolveDownloadLink(t *testing.T) {
	bot := &fakeBot{fileURL: "https://api.telegram.org/file/botTOKEN/photos/"}
	tr := NewTransport(bot)
	link, err := tr.ResolveDownloadLink(context.Background(), "abc")
	if err != nil || link != "https://api.telegram.org/file/botTOKEN/photos/abc" {
		t.Errorf("link = %q, %v", link, err)
	}
	bot.fileErr = errors.New("Bad Request: file is too big")
	if _, err := tr.ResolveDownloadLink(context.Background(), "abc"); err == nil {
		t.Error("want error")
	}
}
