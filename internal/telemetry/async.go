package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long cmd/bot waits after the update loop stops before closing
// the OTel providers and the Kafka writer. It covers one in-flight emit.
const ShutdownDrainDuration = emitTimeout

// EmitAsync emits event in its own goroutine so a slow sink never delays a reply. The emit keeps
// ctx's values (trace span) but not its cancellation, and is bounded by emitTimeout. Failures are
// logged on the global logger. A nil emitter or event is a no-op.
func EmitAsync(emitter EventEmitter, ctx context.Context, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		emitCtx, cancel := context.WithTimeout(detached, emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			zap.L().Warn("telemetry: event dropped",
				zap.String("event_type", event.EventType),
				zap.String("user_id", event.UserID),
				zap.Error(err))
		}
	}()
}
