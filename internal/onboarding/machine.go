// Package onboarding drives a job seeker through the signup conversation.
//
// Machine holds one pure handler per step: given the session and the answer it returns the
// next session, the replies and at most one Effect. Engine loads and saves sessions, talks to
// the chat transport and runs the effects (identity creation, avatar intake, finalization).
package onboarding

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"jobseeker-bot/internal/i18n"
	identitydomain "jobseeker-bot/internal/identity/domain"
	"jobseeker-bot/internal/region"
	"jobseeker-bot/internal/session/domain"
)

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Effect is the side effect a transition asks the engine to run after saving.
type Effect int

const (
	EffectNone Effect = iota
	// EffectCreateIdentity creates the account from Session.Email and Session.Password.
	EffectCreateIdentity
	// EffectFinalize persists the profile and completes the session.
	EffectFinalize
)

func (e Effect) String() string {
	switch e {
	case EffectCreateIdentity:
		return "create_identity"
	case EffectFinalize:
		return "finalize"
	default:
		return "none"
	}
}

// Transition is the outcome of one step.
type Transition struct {
	Session domain.Session
	Replies []Reply
	// DeleteInput asks for the user's message to be removed from the chat (passwords).
	DeleteInput bool
	Effect      Effect
}

type stepHandler func(m *Machine, s domain.Session, text string) Transition

// Machine is safe for concurrent use; it holds only immutable catalogs.
type Machine struct {
	texts    *i18n.Catalog
	regions  *region.Catalog
	skip     map[string]bool
	handlers map[domain.Step]stepHandler
}

// NewMachine returns a machine rendering prompts from texts and region menus from regions.
func NewMachine(texts *i18n.Catalog, regions *region.Catalog) *Machine {
	m := &Machine{
		texts:   texts,
		regions: regions,
		skip:    map[string]bool{},
		handlers: map[domain.Step]stepHandler{
			domain.StepLanguage:        (*Machine).language,
			domain.StepEmail:           (*Machine).email,
			domain.StepPassword:        (*Machine).password,
			domain.StepConfirmPassword: (*Machine).confirmPassword,
			domain.StepName:            (*Machine).name,
			domain.StepJobTitle:        (*Machine).jobTitle,
			domain.StepPhone:           (*Machine).phone,
			domain.StepRegion:          (*Machine).region,
			domain.StepLocation:        (*Machine).location,
			domain.StepBio:             (*Machine).bio,
			domain.StepExperience:      (*Machine).experience,
			domain.StepSocialMedia:     (*Machine).socialMedia,
			domain.StepProfilePic:      (*Machine).profilePic,
			domain.StepCompleted:       (*Machine).completed,
		},
	}
	for _, label := range texts.Variants("btn_skip") {
		m.skip[label] = true
	}
	return m
}

// Step handles a text answer for the session's current step.
func (m *Machine) Step(s domain.Session, text string) Transition {
	h, ok := m.handlers[s.Step]
	if !ok {
		// Unknown or blank step: the user has to start over.
		return m.hold(s, m.StartRequired())
	}
	return h(m, s, text)
}

// Start is the transition for /start on a fresh session.
func (m *Machine) Start(s domain.Session) Transition {
	return Transition{
		Session: s,
		Replies: []Reply{{Text: m.base("choose_language"), Keyboard: LanguageKeyboard()}},
	}
}

// WelcomeBack answers /start from a user who already finished.
func (m *Machine) WelcomeBack(s domain.Session) Transition {
	return m.hold(s, m.say(s, "welcome_back", i18n.Params{"name": s.FullName}))
}

// StartRequired is the reply to input from a user without a session.
func (m *Machine) StartRequired() Reply {
	return Reply{Text: m.base("start_required")}
}

// UnexpectedError is the generic failure notice in the session language.
func (m *Machine) UnexpectedError(s domain.Session) Reply {
	return m.say(s, "unexpected_error", nil)
}

// IdentityCreated continues CONFIRM_PASSWORD after the account exists: the password is dropped here.
func (m *Machine) IdentityCreated(s domain.Session, identityID string) Transition {
	s.IdentityID = identityID
	s.Password = ""
	s.Step = domain.StepName
	return Transition{Session: s, Replies: []Reply{m.say(s, "account_created", nil)}}
}

// IdentityFailed halts at CONFIRM_PASSWORD. The session, password included, is left as is.
func (m *Machine) IdentityFailed(s domain.Session, err error) Transition {
	if errors.Is(err, identitydomain.ErrEmailAlreadyRegistered) {
		return m.hold(s, m.say(s, "email_registered", nil))
	}
	return m.hold(s, m.say(s, "account_error", i18n.Params{"error": providerMessage(err)}))
}

// Completed freezes the session and confirms with the record id, or the identity id without one.
func (m *Machine) Completed(s domain.Session, recordID string) Transition {
	s.Step = domain.StepCompleted
	id := recordID
	if id == "" {
		id = s.IdentityID
	}
	return Transition{
		Session: s,
		Replies: []Reply{m.sayWith(s, "profile_completed", i18n.Params{"id": id}, RemoveKeyboard())},
	}
}

// IsSkip reports whether text is the skip button in any language or a typed "skip".
func (m *Machine) IsSkip(text string) bool {
	if m.skip[text] {
		return true
	}
	return strings.EqualFold(text, "skip") || strings.EqualFold(text, "/skip")
}

func (m *Machine) language(s domain.Session, text string) Transition {
	switch text {
	case LabelUzbek:
		s.Language = domain.LanguageUzbek
	case LabelRussian:
		s.Language = domain.LanguageRussian
	default:
		return m.hold(s, Reply{Text: m.base("use_buttons"), Keyboard: LanguageKeyboard()})
	}
	return m.advance(s, domain.StepEmail, m.sayWith(s, "welcome_initial", nil, RemoveKeyboard()))
}

func (m *Machine) email(s domain.Session, text string) Transition {
	if !emailPattern.MatchString(text) {
		return m.hold(s, m.say(s, "email_invalid", nil))
	}
	s.Email = strings.ToLower(text)
	return m.advance(s, domain.StepPassword, m.say(s, "email_accepted", nil))
}

func (m *Machine) password(s domain.Session, text string) Transition {
	var t Transition
	if utf8.RuneCountInString(text) < MinPasswordLength {
		t = m.hold(s, m.say(s, "password_short", nil))
	} else {
		s.Password = text
		t = m.advance(s, domain.StepConfirmPassword, m.say(s, "confirm_password", nil))
	}
	t.DeleteInput = true
	return t
}

func (m *Machine) confirmPassword(s domain.Session, text string) Transition {
	if text != s.Password {
		t := m.hold(s, m.say(s, "password_mismatch", nil))
		t.DeleteInput = true
		return t
	}
	if s.IdentityID != "" {
		// The account was created but the step change was not saved.
		t := m.IdentityCreated(s, s.IdentityID)
		t.DeleteInput = true
		return t
	}
	return Transition{
		Session:     s,
		Replies:     []Reply{m.say(s, "creating_account", nil)},
		DeleteInput: true,
		Effect:      EffectCreateIdentity,
	}
}

func (m *Machine) name(s domain.Session, text string) Transition {
	if text == "" {
		return m.hold(s)
	}
	s.FullName = text
	return m.advance(s, domain.StepJobTitle, m.say(s, "job_title_prompt", nil))
}

func (m *Machine) jobTitle(s domain.Session, text string) Transition {
	if text == "" {
		return m.hold(s)
	}
	s.JobTitle = text
	return m.advance(s, domain.StepPhone, m.say(s, "phone_prompt", nil))
}

func (m *Machine) phone(s domain.Session, text string) Transition {
	if text == "" {
		return m.hold(s)
	}
	s.Phone = text
	return m.advance(s, domain.StepRegion, m.regionPrompt(s, ""))
}

func (m *Machine) region(s domain.Session, text string) Transition {
	key, ok := m.regions.Resolve(text)
	if !ok {
		return m.hold(s, m.regionPrompt(s, m.say(s, "region_hint", nil).Text))
	}
	s.Region = key
	s.City = ""
	return m.advance(s, domain.StepLocation, m.sayWith(s, "location_prompt", nil, RemoveKeyboard()))
}

func (m *Machine) location(s domain.Session, text string) Transition {
	if text == "" {
		return m.hold(s)
	}
	s.Location = text
	return m.advance(s, domain.StepBio, m.say(s, "bio_prompt", nil))
}

func (m *Machine) bio(s domain.Session, text string) Transition {
	if text == "" {
		return m.hold(s)
	}
	s.Bio = text
	return m.advance(s, domain.StepExperience, m.say(s, "experience_prompt", nil))
}

func (m *Machine) experience(s domain.Session, text string) Transition {
	if text == "" {
		return m.hold(s)
	}
	s.YearsExperience = text
	return m.advance(s, domain.StepSocialMedia, m.sayWith(s, "social_media_prompt", nil, m.skipKeyboard(s)))
}

func (m *Machine) socialMedia(s domain.Session, text string) Transition {
	if text == "" {
		return m.hold(s)
	}
	if !m.IsSkip(text) {
		s.SocialMedia = text
	}
	return m.advance(s, domain.StepProfilePic, m.sayWith(s, "profile_pic_prompt", nil, m.skipKeyboard(s)))
}

func (m *Machine) profilePic(s domain.Session, text string) Transition {
	if !m.IsSkip(text) {
		return m.hold(s, m.say(s, "photo_error", nil))
	}
	s.ProfileImage = nil
	return Transition{Session: s, Effect: EffectFinalize}
}

func (m *Machine) completed(s domain.Session, _ string) Transition {
	return m.hold(s, m.say(s, "already_set_up", nil))
}

// PhotoRejected is the reply for stray text or a non-image file at PROFILE_PIC.
func (m *Machine) PhotoRejected(s domain.Session) Reply {
	return m.say(s, "photo_error", nil)
}

func (m *Machine) regionPrompt(s domain.Session, hint string) Reply {
	text := m.say(s, "region_prompt", nil).Text
	if hint != "" {
		text += "\n\n" + hint
	}
	return Reply{Text: text, Keyboard: RegionKeyboard(m.regions, string(s.Lang()))}
}

func (m *Machine) skipKeyboard(s domain.Session) *Keyboard {
	return SkipKeyboard(m.say(s, "btn_skip", nil).Text)
}

func (m *Machine) advance(s domain.Session, next domain.Step, replies ...Reply) Transition {
	s.Step = next
	return Transition{Session: s, Replies: replies}
}

func (m *Machine) hold(s domain.Session, replies ...Reply) Transition {
	return Transition{Session: s, Replies: replies}
}

func (m *Machine) say(s domain.Session, key string, params i18n.Params) Reply {
	return Reply{Text: m.texts.Text(string(s.Lang()), key, params)}
}

func (m *Machine) sayWith(s domain.Session, key string, params i18n.Params, kb *Keyboard) Reply {
	r := m.say(s, key, params)
	r.Keyboard = kb
	return r
}

func (m *Machine) base(key string) string {
	return m.texts.Text(i18n.BaseLocale, key, nil)
}

// providerMessage extracts the user-facing part of an identity failure.
func providerMessage(err error) string {
	var perr *identitydomain.ProviderError
	if errors.As(err, &perr) {
		return perr.Error()
	}
	return err.Error()
}
