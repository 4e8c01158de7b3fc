package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"jobseeker-bot/internal/session/domain"
	"jobseeker-bot/internal/telemetry"
)

const avatarContentType = "image/jpeg"

// Intake stores the picture sent at PROFILE_PIC. Every failure degrades to keeping the
// platform file id; none of them stops the signup.
type Intake struct {
	transport  Transport
	downloader Downloader
	storage    ObjectStorage // nil: avatars are kept as file ids
	normalizer ImageNormalizer
	bucket     string
	machine    *Machine
	events     telemetry.EventEmitter
	inst       *instruments
	logger     *zap.Logger
	nowF       func() time.Time
}

// selectFile picks the file to store: the largest photo variant, or an image document.
// ok is false when the attachment is not an image.
func selectFile(att *Attachment) (fileID string, ok bool) {
	switch att.Kind {
	case AttachmentPhoto:
		best, bestArea := "", -1
		for _, v := range att.Variants {
			if area := v.Width * v.Height; v.FileID != "" && area >= bestArea {
				best, bestArea = v.FileID, area
			}
		}
		return best, best != ""
	case AttachmentDocument:
		if att.FileID == "" || !strings.HasPrefix(strings.ToLower(att.MimeType), "image/") {
			return "", false
		}
		return att.FileID, true
	}
	return "", false
}

// Accept stores the attachment and sets the session's image reference. accepted is false when
// the attachment is not an image; the user has then been asked for a picture again.
func (in *Intake) Accept(ctx context.Context, chatID int64, s domain.Session, att *Attachment) (domain.Session, bool) {
	fileID, ok := selectFile(att)
	if !ok {
		in.send(ctx, chatID, in.machine.PhotoRejected(s))
		return s, false
	}
	in.send(ctx, chatID, in.machine.say(s, "uploading_photo", nil))

	ref, err := in.store(ctx, s.UserID, fileID)
	switch {
	case err == nil:
		s.ProfileImage = &ref
		return s, true
	case isStorageFailure(err):
		in.send(ctx, chatID, in.machine.say(s, "photo_saved_bot", nil))
	}
	in.fallback(ctx, s, err)
	s.ProfileImage = &fileID
	return s, true
}

type storageError struct{ err error }

func (e *storageError) Error() string { return "upload avatar: " + e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

func isStorageFailure(err error) bool {
	var serr *storageError
	return errors.As(err, &serr)
}

// errStorageDisabled keeps the file id without telling the user anything went wrong.
var errStorageDisabled = errors.New("object storage not configured")

func (in *Intake) store(ctx context.Context, userID int64, fileID string) (string, error) {
	if in.storage == nil {
		return "", errStorageDisabled
	}
	ctx, span := in.inst.tracer.Start(ctx, "onboarding.avatar.store")
	defer span.End()

	url, err := in.transport.ResolveDownloadLink(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("resolve download link: %w", err)
	}
	data, err := in.downloader.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch avatar: %w", err)
	}
	if in.normalizer != nil {
		if data, err = in.normalizer.Normalize(data); err != nil {
			return "", fmt.Errorf("normalize avatar: %w", err)
		}
	}
	name := fmt.Sprintf("%d_%d.jpg", userID, in.nowF().UnixMilli())
	span.SetAttributes(attribute.String("storage.object", name), attribute.Int("storage.size", len(data)))
	if err := in.storage.Upload(ctx, in.bucket, name, data, avatarContentType, true); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return "", &storageError{err: err}
	}
	return in.storage.PublicURL(in.bucket, name), nil
}

func (in *Intake) fallback(ctx context.Context, s domain.Session, err error) {
	if errors.Is(err, errStorageDisabled) {
		return
	}
	in.logger.Warn("onboarding: avatar kept as file id",
		zap.Int64("user_id", s.UserID), zap.Error(err))
	in.inst.avatarFallbacks.Add(ctx, 1)
	ev := telemetry.NewEvent(telemetry.EventAvatarFallback, s.UserID)
	ev.Detail = err.Error()
	telemetry.EmitAsync(in.events, ctx, ev)
}

func (in *Intake) send(ctx context.Context, chatID int64, replies ...Reply) {
	sendAll(ctx, in.transport, in.logger, chatID, replies)
}
