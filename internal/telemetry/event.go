package telemetry

import (
	"strconv"
	"time"
)

// Event types.
const (
	EventIdentityCreated = "identity.created"
	EventAvatarFallback  = "avatar.fallback"
	EventSignupCompleted = "signup.completed"
)

// Source tags every event produced by the bot.
const Source = "jobseeker-bot"

// Event is one onboarding lifecycle event. It is serialized as JSON for Kafka and
// mapped to attributes for OTel logs. It never carries the email or password.
type Event struct {
	EventType  string    `json:"eventType"`
	Source     string    `json:"source"`
	UserID     string    `json:"userId"`
	IdentityID string    `json:"identityId,omitempty"`
	RecordID   string    `json:"recordId,omitempty"`
	Language   string    `json:"language,omitempty"`
	Region     string    `json:"region,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewEvent returns an event of eventType for a chat user, stamped now.
func NewEvent(eventType string, userID int64) *Event {
	return &Event{
		EventType: eventType,
		Source:    Source,
		UserID:    strconv.FormatInt(userID, 10),
		CreatedAt: time.Now().UTC(),
	}
}
