package telegram

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"jobseeker-bot/internal/onboarding"
)

const defaultShardQueue = 64

// Handler processes one message. *onboarding.Engine satisfies it.
type Handler interface {
	Handle(ctx context.Context, msg onboarding.Message)
}

// Dispatcher fans updates out to a fixed set of workers. A user is always routed to the
// same worker, so one user's messages are handled in arrival order while different users
// proceed in parallel.
type Dispatcher struct {
	handler Handler
	shards  []chan onboarding.Message
	logger  *zap.Logger
}

// NewDispatcher returns a dispatcher with workers shards (at least one).
func NewDispatcher(handler Handler, workers int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	shards := make([]chan onboarding.Message, workers)
	for i := range shards {
		shards[i] = make(chan onboarding.Message, defaultShardQueue)
	}
	return &Dispatcher{handler: handler, shards: shards, logger: logger}
}

// Run consumes updates until ctx is cancelled or updates is closed, then waits for
// queued messages to finish.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	for i, shard := range d.shards {
		wg.Add(1)
		go func(i int, shard <-chan onboarding.Message) {
			defer wg.Done()
			for msg := range shard {
				d.handle(ctx, i, msg)
			}
		}(i, shard)
	}
	defer func() {
		for _, shard := range d.shards {
			close(shard)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			msg, ok := ToMessage(u)
			if !ok {
				continue
			}
			select {
			case d.shards[d.shardFor(msg.UserID)] <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (d *Dispatcher) shardFor(userID int64) int {
	n := int64(len(d.shards))
	return int(((userID % n) + n) % n)
}

// handle keeps one panicking message from killing its shard.
func (d *Dispatcher) handle(ctx context.Context, shard int, msg onboarding.Message) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatcher: handler panic",
				zap.Int("shard", shard), zap.Int64("user_id", msg.UserID), zap.Any("panic", r))
		}
	}()
	// Handling continues through shutdown so a half-applied step is not cut off.
	d.handler.Handle(context.WithoutCancel(ctx), msg)
}
