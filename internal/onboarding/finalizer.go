package onboarding

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"jobseeker-bot/internal/i18n"
	jobseekerdomain "jobseeker-bot/internal/jobseeker/domain"
	"jobseeker-bot/internal/session/domain"
	sessionrepo "jobseeker-bot/internal/session/repository"
	"jobseeker-bot/internal/telemetry"
)

// Finalizer writes the profile record and freezes the session.
type Finalizer struct {
	sessions  sessionrepo.Repository
	records   RecordStore
	transport Transport
	machine   *Machine
	events    telemetry.EventEmitter
	inst      *instruments
	logger    *zap.Logger
}

// Finalize inserts the profile at most once and marks the session COMPLETED. A failed insert is
// reported to the user and the signup still completes, since the account already exists.
// Only a failure to save the session is returned; the user can then resend and the insert is
// not repeated.
func (f *Finalizer) Finalize(ctx context.Context, chatID int64, s domain.Session) error {
	if s.Completed() {
		return nil
	}
	sendAll(ctx, f.transport, f.logger, chatID, []Reply{f.machine.say(s, "saving_profile", nil)})

	if s.Finalizing {
		f.logger.Info("onboarding: insert already attempted, completing session",
			zap.Int64("user_id", s.UserID), zap.String("record_id", s.RecordID))
	} else {
		s.Finalizing = true
		if err := f.sessions.Save(ctx, s); err != nil {
			return fmt.Errorf("save finalizing session: %w", err)
		}
		recordID, err := f.insert(ctx, s)
		if err != nil {
			f.logger.Error("onboarding: insert job seeker",
				zap.Int64("user_id", s.UserID), zap.Error(err))
			sendAll(ctx, f.transport, f.logger, chatID, []Reply{
				f.machine.say(s, "listing_error", i18n.Params{"error": err.Error()}),
			})
		}
		s.RecordID = recordID
	}
	recordID := s.RecordID

	t := f.machine.Completed(s, recordID)
	if err := f.sessions.Save(ctx, t.Session); err != nil {
		return fmt.Errorf("save completed session: %w", err)
	}
	sendAll(ctx, f.transport, f.logger, chatID, t.Replies)

	f.inst.signupsCompleted.Add(ctx, 1)
	ev := telemetry.NewEvent(telemetry.EventSignupCompleted, s.UserID)
	ev.IdentityID = s.IdentityID
	ev.RecordID = recordID
	ev.Language = string(s.Lang())
	ev.Region = s.Region
	telemetry.EmitAsync(f.events, ctx, ev)
	return nil
}

func (f *Finalizer) insert(ctx context.Context, s domain.Session) (string, error) {
	ctx, span := f.inst.tracer.Start(ctx, "onboarding.record.insert")
	defer span.End()
	id, err := f.records.Insert(ctx, jobseekerdomain.FromSession(s))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return "", err
	}
	return id, nil
}
