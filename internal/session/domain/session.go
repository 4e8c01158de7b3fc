package domain

import "time"

// Step is a position in the fixed onboarding sequence.
type Step string

const (
	StepLanguage        Step = "LANGUAGE"
	StepEmail           Step = "EMAIL"
	StepPassword        Step = "PASSWORD"
	StepConfirmPassword Step = "CONFIRM_PASSWORD"
	StepName            Step = "NAME"
	StepJobTitle        Step = "JOB_TITLE"
	StepPhone           Step = "PHONE"
	StepRegion          Step = "REGION"
	StepLocation        Step = "LOCATION"
	StepBio             Step = "BIO"
	StepExperience      Step = "EXPERIENCE"
	StepSocialMedia     Step = "SOCIAL_MEDIA"
	StepProfilePic      Step = "PROFILE_PIC"
	StepCompleted       Step = "COMPLETED"
)

// Steps lists every step in order; StepCompleted is terminal.
var Steps = []Step{
	StepLanguage,
	StepEmail,
	StepPassword,
	StepConfirmPassword,
	StepName,
	StepJobTitle,
	StepPhone,
	StepRegion,
	StepLocation,
	StepBio,
	StepExperience,
	StepSocialMedia,
	StepProfilePic,
	StepCompleted,
}

// Valid reports whether s is a member of Steps.
func (s Step) Valid() bool {
	for _, step := range Steps {
		if s == step {
			return true
		}
	}
	return false
}

// Language is the conversation language chosen at StepLanguage.
type Language string

const (
	LanguageRussian Language = "ru"
	LanguageUzbek   Language = "uz"
)

// DefaultLanguage is used until the user picks one.
const DefaultLanguage = LanguageRussian

// Session is one user's onboarding progress and collected answers.
// It is a value: stores hand out copies and callers save a replacement.
type Session struct {
	UserID   int64    `json:"user_id"`
	Step     Step     `json:"step"`
	Language Language `json:"language,omitempty"`
	// Username is the chat platform handle captured at /start, if the user has one.
	Username string `json:"username,omitempty"`

	Email string `json:"email,omitempty"`
	// Password lives only between StepPassword and a successful identity creation.
	Password        string  `json:"password,omitempty"`
	FullName        string  `json:"full_name,omitempty"`
	JobTitle        string  `json:"job_title,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Region          string  `json:"region,omitempty"`
	Location        string  `json:"location,omitempty"`
	City            string  `json:"city"`
	Bio             string  `json:"bio,omitempty"`
	YearsExperience string  `json:"years_experience,omitempty"`
	SocialMedia     string  `json:"social_media,omitempty"`
	ProfileImage    *string `json:"profile_image"` // public URL, platform file id, or nil when skipped
	IdentityID      string  `json:"identity_id,omitempty"`
	// Finalizing is set and saved before the profile insert so a retry never inserts twice.
	Finalizing bool   `json:"finalizing,omitempty"`
	RecordID   string `json:"record_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lang returns the session language or DefaultLanguage when unset.
func (s Session) Lang() Language {
	if s.Language == "" {
		return DefaultLanguage
	}
	return s.Language
}

// Started reports whether the user has run /start.
func (s Session) Started() bool {
	return s.Step != ""
}

// Completed reports whether the session is frozen after finalization.
func (s Session) Completed() bool {
	return s.Step == StepCompleted
}

// New returns a fresh session at the first step.
func New(userID int64, now time.Time) Session {
	return Session{
		UserID:    userID,
		Step:      StepLanguage,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
