package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"jobseeker-bot/internal/onboarding"
)

type recordingHandler struct {
	mu      sync.Mutex
	byUser  map[int64][]string
	panicOn string
}

func (h *recordingHandler) Handle(ctx context.Context, msg onboarding.Message) {
	if msg.Text == h.panicOn {
		panic("boom")
	}
	// Uneven work so cross-user interleaving actually happens.
	if msg.UserID%2 == 0 {
		time.Sleep(time.Millisecond)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byUser[msg.UserID] = append(h.byUser[msg.UserID], msg.Text)
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	h := &recordingHandler{byUser: map[int64][]string{}}
	d := NewDispatcher(h, 4, zap.NewNop())

	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), updates)
		close(done)
	}()

	const perUser = 20
	users := []int64{1, 2, 3, 4, 5, 6, -7}
	for i := 0; i < perUser; i++ {
		for _, u := range users {
			updates <- textUpdate(u, string(rune('a'+i)))
		}
	}
	close(updates)
	<-done

	for _, u := range users {
		got := h.byUser[u]
		if len(got) != perUser {
			t.Fatalf("user %d: %d messages, want %d", u, len(got), perUser)
		}
		for i, text := range got {
			if text != string(rune('a'+i)) {
				t.Fatalf("user %d: message %d = %q, out of order", u, i, text)
			}
		}
	}
}

func TestDispatcher_SurvivesPanic(t *testing.T) {
	h := &recordingHandler{byUser: map[int64][]string{}, panicOn: "explode"}
	d := NewDispatcher(h, 1, nil)
	updates := make(chan tgbotapi.Update, 3)
	updates <- textUpdate(1, "explode")
	updates <- textUpdate(1, "after")
	updates <- tgbotapi.Update{}
	close(updates)
	d.Run(context.Background(), updates)

	if got := h.byUser[1]; len(got) != 1 || got[0] != "after" {
		t.Errorf("handled = %q, want [after]", got)
	}
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	h := &recordingHandler{byUser: map[int64][]string{}}
	d := NewDispatcher(h, 2, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, make(chan tgbotapi.Update))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestShardFor(t *testing.T) {
	d := NewDispatcher(&recordingHandler{}, 3, nil)
	for _, id := range []int64{0, 1, 2, 3, -1, -5, 1 << 40} {
		s := d.shardFor(id)
		if s < 0 || s >= 3 {
			t.Errorf("shardFor(%d) = %d", id, s)
		}
		if s != d.shardFor(id) {
			t.Errorf("shardFor(%d) is not stable", id)
		}
	}
}
