package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"jobseeker-bot/internal/i18n"
	"jobseeker-bot/internal/region"
	"jobseeker-bot/internal/session/domain"
	sessionrepo "jobseeker-bot/internal/session/repository"
	"jobseeker-bot/internal/telemetry"
)

// CommandStart (re)starts the conversation.
const CommandStart = "start"

// Deps are the engine's collaborators. Storage, Normalizer, Events and Logger are optional.
type Deps struct {
	Sessions   sessionrepo.Repository
	Transport  Transport
	Downloader Downloader
	Identity   IdentityProvider
	Storage    ObjectStorage
	Bucket     string
	Normalizer ImageNormalizer
	Records    RecordStore
	Events     telemetry.EventEmitter
	Texts      *i18n.Catalog
	Regions    *region.Catalog
	Logger     *zap.Logger
}

// Engine handles inbound messages. Messages of one user must be handed to Handle one at a time;
// different users may be handled concurrently.
type Engine struct {
	sessions  sessionrepo.Repository
	transport Transport
	identity  IdentityProvider
	machine   *Machine
	intake    *Intake
	finalizer *Finalizer
	events    telemetry.EventEmitter
	inst      *instruments
	logger    *zap.Logger

	// unsaved holds identities created for a user whose follow-up save failed, keyed by user id.
	// A retried confirmation reuses the entry instead of creating the account again.
	unsaved sync.Map
}

type createdIdentity struct {
	email string
	id    string
}

// NewEngine validates deps and builds the engine.
func NewEngine(d Deps) (*Engine, error) {
	switch {
	case d.Sessions == nil:
		return nil, errors.New("onboarding: session repository is required")
	case d.Transport == nil:
		return nil, errors.New("onboarding: transport is required")
	case d.Identity == nil:
		return nil, errors.New("onboarding: identity provider is required")
	case d.Records == nil:
		return nil, errors.New("onboarding: record store is required")
	case d.Texts == nil || d.Regions == nil:
		return nil, errors.New("onboarding: text and region catalogs are required")
	case d.Storage != nil && (d.Downloader == nil || d.Bucket == ""):
		return nil, errors.New("onboarding: storage needs a downloader and a bucket")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	inst, err := newInstruments()
	if err != nil {
		return nil, fmt.Errorf("onboarding: instruments: %w", err)
	}
	machine := NewMachine(d.Texts, d.Regions)
	return &Engine{
		sessions:  d.Sessions,
		transport: d.Transport,
		identity:  d.Identity,
		machine:   machine,
		intake: &Intake{
			transport:  d.Transport,
			downloader: d.Downloader,
			storage:    d.Storage,
			normalizer: d.Normalizer,
			bucket:     d.Bucket,
			machine:    machine,
			events:     d.Events,
			inst:       inst,
			logger:     logger,
			nowF:       time.Now,
		},
		finalizer: &Finalizer{
			sessions:  d.Sessions,
			records:   d.Records,
			transport: d.Transport,
			machine:   machine,
			events:    d.Events,
			inst:      inst,
			logger:    logger,
		},
		events: d.Events,
		inst:   inst,
		logger: logger,
	}, nil
}

// Handle processes one message to completion. Failures are logged and answered with a
// generic notice; the session keeps its last saved state so the user can resend.
func (e *Engine) Handle(ctx context.Context, msg Message) {
	if err := e.handle(ctx, msg); err != nil {
		s, _, _ := e.sessions.Get(ctx, msg.UserID)
		e.logger.Error("onboarding: handle message",
			zap.Int64("user_id", msg.UserID), zap.String("step", string(s.Step)), zap.Error(err))
		e.send(ctx, msg.ChatID, e.machine.UnexpectedError(s))
	}
}

func (e *Engine) handle(ctx context.Context, msg Message) error {
	if msg.Command == CommandStart {
		return e.start(ctx, msg)
	}
	s, found, err := e.sessions.Get(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if msg.Attachment != nil {
		if !found || s.Step != domain.StepProfilePic {
			return nil
		}
		withImage, ok := e.intake.Accept(ctx, msg.ChatID, s, msg.Attachment)
		if !ok {
			return nil
		}
		return e.finalizer.Finalize(ctx, msg.ChatID, withImage)
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		// Stickers, voice notes and blank text carry no answer.
		return nil
	}
	if !found || !s.Started() || !s.Step.Valid() {
		e.send(ctx, msg.ChatID, e.machine.StartRequired())
		return nil
	}
	if s.Step == domain.StepConfirmPassword && s.IdentityID == "" {
		if v, ok := e.unsaved.Load(s.UserID); ok && v.(createdIdentity).email == s.Email {
			s.IdentityID = v.(createdIdentity).id
		}
	}
	return e.apply(ctx, msg, s, e.machine.Step(s, text))
}

func (e *Engine) start(ctx context.Context, msg Message) error {
	s, found, err := e.sessions.Get(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if found && s.Completed() {
		e.send(ctx, msg.ChatID, e.machine.WelcomeBack(s).Replies...)
		return nil
	}
	e.unsaved.Delete(msg.UserID)
	s, err = e.sessions.Init(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	if msg.Username != "" {
		s, err = e.sessions.Update(ctx, msg.UserID, func(s *domain.Session) { s.Username = msg.Username })
		if err != nil {
			return fmt.Errorf("save username: %w", err)
		}
	}
	e.send(ctx, msg.ChatID, e.machine.Start(s).Replies...)
	return nil
}

// apply saves the transition, delivers its replies and runs its effect.
func (e *Engine) apply(ctx context.Context, msg Message, before domain.Session, t Transition) error {
	if t.DeleteInput {
		if err := e.transport.DeleteMessage(ctx, msg.ChatID, msg.MessageID); err != nil {
			e.logger.Debug("onboarding: delete input", zap.Int64("user_id", msg.UserID), zap.Error(err))
		}
	}
	if t.Session != before {
		if err := e.sessions.Save(ctx, t.Session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if t.Session.IdentityID != "" {
			e.unsaved.Delete(t.Session.UserID)
		}
		if t.Session.Step != before.Step {
			e.inst.stepsAdvanced.Add(ctx, 1, metric.WithAttributes(attribute.String("step", string(t.Session.Step))))
		}
	}
	e.send(ctx, msg.ChatID, t.Replies...)

	switch t.Effect {
	case EffectCreateIdentity:
		return e.apply(ctx, msg, t.Session, e.createIdentity(ctx, t.Session))
	case EffectFinalize:
		return e.finalizer.Finalize(ctx, msg.ChatID, t.Session)
	}
	return nil
}

func (e *Engine) createIdentity(ctx context.Context, s domain.Session) Transition {
	ctx, span := e.inst.tracer.Start(ctx, "onboarding.identity.create")
	defer span.End()
	id, err := e.identity.CreateIdentity(ctx, s.Email, s.Password, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create identity failed")
		e.logger.Warn("onboarding: create identity",
			zap.Int64("user_id", s.UserID), zap.Error(err))
		return e.machine.IdentityFailed(s, err)
	}
	span.SetAttributes(attribute.String("identity.id", id))
	e.unsaved.Store(s.UserID, createdIdentity{email: s.Email, id: id})
	ev := telemetry.NewEvent(telemetry.EventIdentityCreated, s.UserID)
	ev.IdentityID = id
	ev.Language = string(s.Lang())
	telemetry.EmitAsync(e.events, ctx, ev)
	return e.machine.IdentityCreated(s, id)
}

func (e *Engine) send(ctx context.Context, chatID int64, replies ...Reply) {
	sendAll(ctx, e.transport, e.logger, chatID, replies)
}

// sendAll delivers replies in order. A failed reply is logged; the state change behind it stands.
func sendAll(ctx context.Context, t Transport, logger *zap.Logger, chatID int64, replies []Reply) {
	for _, r := range replies {
		if err := t.Reply(ctx, chatID, r); err != nil {
			logger.Warn("onboarding: send reply", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}
