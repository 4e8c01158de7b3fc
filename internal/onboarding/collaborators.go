package onboarding

import (
	"context"

	jobseekerdomain "jobseeker-bot/internal/jobseeker/domain"
)

// Transport is the chat platform as seen by the engine.
type Transport interface {
	Reply(ctx context.Context, chatID int64, reply Reply) error
	// DeleteMessage is best-effort; the engine logs and ignores its error.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// ResolveDownloadLink returns a short-lived URL for a platform file id.
	ResolveDownloadLink(ctx context.Context, fileID string) (string, error)
}

// Downloader fetches attachment content from a download link.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// IdentityProvider creates the user's account. It returns identitydomain.ErrEmailAlreadyRegistered
// for a taken address and *identitydomain.ProviderError for anything else.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string, preConfirmed bool) (id string, err error)
}

// ObjectStorage stores uploaded avatars.
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, name string, data []byte, contentType string, overwrite bool) error
	PublicURL(bucket, name string) string
}

// RecordStore persists the finalized profile and returns its id.
type RecordStore interface {
	Insert(ctx context.Context, profile jobseekerdomain.Profile) (id string, err error)
}

// ImageNormalizer re-encodes an uploaded picture before storage.
type ImageNormalizer interface {
	Normalize(data []byte) ([]byte, error)
}

// AttachmentKind distinguishes compressed photos from files sent as documents.
type AttachmentKind int

const (
	AttachmentPhoto AttachmentKind = iota + 1
	AttachmentDocument
)

// PhotoVariant is one resolution of a photo as offered by the platform.
type PhotoVariant struct {
	FileID   string
	Width    int
	Height   int
	FileSize int
}

// Attachment is a photo or document carried by a message.
type Attachment struct {
	Kind     AttachmentKind
	FileID   string // documents only
	MimeType string // documents only
	Variants []PhotoVariant
}

// Message is one inbound chat event, already stripped of platform types.
type Message struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Username  string
	// Command is the bot command without the slash ("start"), empty for plain text.
	Command    string
	Text       string
	Attachment *Attachment
}

// Reply is one outbound message. A nil Keyboard leaves the current keyboard as is.
type Reply struct {
	Text     string
	Keyboard *Keyboard
}
