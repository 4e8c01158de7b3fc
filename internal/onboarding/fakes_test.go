package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"jobseeker-bot/internal/i18n"
	jobseekerdomain "jobseeker-bot/internal/jobseeker/domain"
	"jobseeker-bot/internal/region"
	"jobseeker-bot/internal/session/domain"
	sessionrepo "jobseeker-bot/internal/session/repository"
)

const (
	testUserID int64 = 1001
	testChatID int64 = 5001
)

var (
	testTexts   = i18n.MustLoadEmbedded()
	testRegions = region.MustLoadEmbedded()
)

type sentReply struct {
	chatID int64
	reply  Reply
}

type fakeTransport struct {
	mu         sync.Mutex
	sent       []sentReply
	deleted    []int
	deleteErr  error
	replyErr   error
	resolveErr error
	resolved   []string
}

func (f *fakeTransport) Reply(ctx context.Context, chatID int64, r Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentReply{chatID: chatID, reply: r})
	return f.replyErr
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return f.deleteErr
}

func (f *fakeTransport) ResolveDownloadLink(ctx context.Context, fileID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, fileID)
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return "https://files.test/" + fileID, nil
}

func (f *fakeTransport) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.reply.Text)
	}
	return out
}

func (f *fakeTransport) last() Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return Reply{}
	}
	return f.sent[len(f.sent)-1].reply
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.deleted = nil
}

type fakeDownloader struct {
	data  []byte
	err   error
	calls []string
}

func (f *fakeDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type identityCall struct {
	email, password string
	preConfirmed    bool
}

type fakeIdentity struct {
	calls []identityCall
	id    string
	err   error
}

func (f *fakeIdentity) CreateIdentity(ctx context.Context, email, password string, preConfirmed bool) (string, error) {
	f.calls = append(f.calls, identityCall{email, password, preConfirmed})
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type upload struct {
	bucket, name, contentType string
	data                      []byte
	overwrite                 bool
}

type fakeStorage struct {
	uploads []upload
	err     error
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, name string, data []byte, contentType string, overwrite bool) error {
	f.uploads = append(f.uploads, upload{bucket, name, contentType, data, overwrite})
	return f.err
}

func (f *fakeStorage) PublicURL(bucket, name string) string {
	return "https://cdn.test/" + bucket + "/" + name
}

type fakeRecords struct {
	inserts []jobseekerdomain.Profile
	id      string
	err     error
}

func (f *fakeRecords) Insert(ctx context.Context, p jobseekerdomain.Profile) (string, error) {
	f.inserts = append(f.inserts, p)
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type fakeNormalizer struct{ err error }

func (f fakeNormalizer) Normalize(data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("jpeg:"), data...), nil
}

// failingStore wraps a MemoryStore and fails Save on demand. With saveErr set, the next
// okSaves saves still succeed.
type failingStore struct {
	*sessionrepo.MemoryStore
	saveErr error
	okSaves int
}

func (f *failingStore) Save(ctx context.Context, s domain.Session) error {
	if f.saveErr != nil {
		if f.okSaves == 0 {
			return f.saveErr
		}
		f.okSaves--
	}
	return f.MemoryStore.Save(ctx, s)
}

type harness struct {
	t          *testing.T
	engine     *Engine
	sessions   *failingStore
	transport  *fakeTransport
	downloader *fakeDownloader
	identity   *fakeIdentity
	storage    *fakeStorage
	records    *fakeRecords
	nextMsgID  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:          t,
		sessions:   &failingStore{MemoryStore: sessionrepo.NewMemoryStore(0)},
		transport:  &fakeTransport{},
		downloader: &fakeDownloader{data: []byte("raw-image")},
		identity:   &fakeIdentity{id: "identity-uuid-1"},
		storage:    &fakeStorage{},
		records:    &fakeRecords{id: "42"},
	}
	eng, err := NewEngine(Deps{
		Sessions:   h.sessions,
		Transport:  h.transport,
		Downloader: h.downloader,
		Identity:   h.identity,
		Storage:    h.storage,
		Bucket:     "avatars",
		Records:    h.records,
		Texts:      testTexts,
		Regions:    testRegions,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	eng.intake.nowF = func() time.Time { return time.UnixMilli(1700000000123) }
	h.engine = eng
	return h
}

func (h *harness) message() Message {
	h.nextMsgID++
	return Message{UserID: testUserID, ChatID: testChatID, MessageID: h.nextMsgID, Username: "jane"}
}

func (h *harness) command(name string) {
	msg := h.message()
	msg.Command = name
	msg.Text = "/" + name
	h.engine.Handle(context.Background(), msg)
}

func (h *harness) say(texts ...string) {
	for _, text := range texts {
		msg := h.message()
		msg.Text = text
		h.engine.Handle(context.Background(), msg)
	}
}

func (h *harness) attach(att *Attachment) {
	msg := h.message()
	msg.Attachment = att
	h.engine.Handle(context.Background(), msg)
}

func (h *harness) session() domain.Session {
	h.t.Helper()
	s, found, err := h.sessions.Get(context.Background(), testUserID)
	if err != nil || !found {
		h.t.Fatalf("session: found=%v err=%v", found, err)
	}
	return s
}

// advanceTo runs /start and answers every step up to (not including) target.
func (h *harness) advanceTo(target domain.Step) {
	h.t.Helper()
	h.command(CommandStart)
	answers := []struct {
		step   domain.Step
		answer string
	}{
		{domain.StepLanguage, LabelRussian},
		{domain.StepEmail, "User@Example.com"},
		{domain.StepPassword, "password1"},
		{domain.StepConfirmPassword, "password1"},
		{domain.StepName, "Jane Doe"},
		{domain.StepJobTitle, "Plumber"},
		{domain.StepPhone, "+1234567890"},
		{domain.StepRegion, "Ташкент"},
		{domain.StepLocation, "Tashkent st. 5"},
		{domain.StepBio, "Friendly plumber"},
		{domain.StepExperience, "5"},
		{domain.StepSocialMedia, "skip"},
	}
	for _, a := range answers {
		if a.step == target {
			break
		}
		h.say(a.answer)
	}
	if got := h.session().Step; got != target {
		h.t.Fatalf("advanceTo(%s) stopped at %s", target, got)
	}
	h.transport.reset()
}

func ru(key string, params i18n.Params) string {
	return testTexts.Text("ru", key, params)
}

var errBoom = errors.New("boom")
