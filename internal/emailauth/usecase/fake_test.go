package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/clock"
	"github.com/shandysiswandi/emailcode/internal/pkg/config"
	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
	"github.com/shandysiswandi/emailcode/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/jwt"
	"github.com/shandysiswandi/emailcode/internal/pkg/validator"
)

const testConfig = `
app:
  base_url: https://id.example.com/
modules:
  emailauth:
    locale: en
    session_ttl_minutes: 30
    lock_ttl_seconds: 10
    success_url: https://app.example.com/welcome
    restart_url: https://id.example.com/realms/acme/login
`

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeDB struct {
	mu     sync.Mutex
	realms map[string]entity.Realm
	users  map[string]entity.User
	events []entity.LoginEvent
}

func (f *fakeDB) GetRealmByName(_ context.Context, name string) (*entity.Realm, error) {
	r, ok := f.realms[name]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &r, nil
}

func (f *fakeDB) GetUserByID(_ context.Context, realmID, userID string) (*entity.User, error) {
	u, ok := f.users[userID]
	if !ok || u.RealmID != realmID {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (f *fakeDB) CreateLoginEvent(_ context.Context, ev entity.LoginEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type fakeSessions struct {
	m map[string]entity.AuthSession
}

func (f *fakeSessions) Create(_ context.Context, sess entity.AuthSession, _ time.Duration) error {
	sess.Notes = sess.Notes.Clone()
	f.m[sess.ID] = sess
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*entity.AuthSession, error) {
	sess, ok := f.m[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	sess.Notes = sess.Notes.Clone()
	return &sess, nil
}

func (f *fakeSessions) Save(_ context.Context, sess entity.AuthSession) error {
	if _, ok := f.m[sess.ID]; !ok {
		return goerror.ErrNotFound
	}
	sess.Notes = sess.Notes.Clone()
	f.m[sess.ID] = sess
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	delete(f.m, id)
	return nil
}

type fakeMail struct {
	sent []entity.CodeEmail
	err  error
}

func (f *fakeMail) SendCode(_ context.Context, msg entity.CodeEmail) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeMQ struct {
	mu     sync.Mutex
	events []entity.LoginEvent
}

func (f *fakeMQ) PublishLoginEvent(_ context.Context, ev entity.LoginEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type fakeRenderer struct {
	forms []entity.CodeForm
}

func (f *fakeRenderer) RenderCodeForm(_ context.Context, form entity.CodeForm) ([]byte, error) {
	f.forms = append(f.forms, form)
	return []byte("form:" + form.ExecutionID), nil
}

func (f *fakeRenderer) last() entity.CodeForm {
	return f.forms[len(f.forms)-1]
}

type fakeLocker struct {
	busy map[string]bool
}

func (f *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	if f.busy[key] {
		return nil, goerror.ErrLocked
	}
	return func(context.Context) error { return nil }, nil
}

type seqCode struct{ codes []int }

func (s *seqCode) Generate() (int, error) {
	if len(s.codes) == 0 {
		return 0, errors.New("no more codes")
	}
	c := s.codes[0]
	s.codes = s.codes[1:]
	return c, nil
}

type seqString struct {
	prefix string
	n      int
}

func (s *seqString) Generate() string {
	s.n++
	return s.prefix + strconv.Itoa(s.n)
}

type seqNumber struct{ n int64 }

func (s *seqNumber) Generate() int64 {
	s.n++
	return s.n
}

type fakeJWT struct{}

func (fakeJWT) Generate(sessionID, realm string) (string, error) {
	return "token-" + realm + "-" + sessionID, nil
}

func (fakeJWT) Verify(string) (jwt.Claims, error) {
	return jwt.Claims{}, jwt.ErrInvalidToken
}

type harness struct {
	uc       *Usecase
	db       *fakeDB
	sessions *fakeSessions
	mail     *fakeMail
	mq       *fakeMQ
	render   *fakeRenderer
	locker   *fakeLocker
	g        *goroutine.Manager
}

func newHarness(t *testing.T, codes ...int) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)
	v, err := validator.NewV10()
	require.NoError(t, err)

	h := &harness{
		db: &fakeDB{
			realms: map[string]entity.Realm{
				"acme": {ID: "r-1", Name: "acme", DisplayName: "Acme Corp"},
			},
			users: map[string]entity.User{
				"u-1": {ID: "u-1", RealmID: "r-1", Username: "alice", Email: "alice@example.com"},
				"u-2": {ID: "u-2", RealmID: "r-1", Username: "bob"},
			},
		},
		sessions: &fakeSessions{m: map[string]entity.AuthSession{}},
		mail:     &fakeMail{},
		mq:       &fakeMQ{},
		render:   &fakeRenderer{},
		locker:   &fakeLocker{busy: map[string]bool{}},
		g:        goroutine.NewManager(16),
	}

	h.uc = New(Dependency{
		RepoDB:        h.db,
		RepoSession:   h.sessions,
		RepoMail:      h.mail,
		RepoMessaging: h.mq,
		Renderer:      h.render,
		Locker:        h.locker,
		Code:          &seqCode{codes: codes},
		Validator:     v,
		Config:        cfg,
		UID:           &seqNumber{},
		UUID:          &seqString{prefix: "k"},
		OID:           &seqString{prefix: "ex"},
		Clock:         clock.Fixed(testNow),
		JWT:           fakeJWT{},
		Instrument:    instrument.NewNoop(),
		Goroutine:     h.g,
	})

	return h
}

// attempt builds an attempt for alice (or bob when noEmail) with notes.
func (h *harness) attempt(notes entity.Notes, noEmail bool) *entity.Attempt {
	user := h.db.users["u-1"]
	if noEmail {
		user = h.db.users["u-2"]
	}
	if notes == nil {
		notes = entity.Notes{}
	}
	return &entity.Attempt{
		SessionID:   "s-1",
		ExecutionID: "ex-1",
		ResumeURL:   "https://id.example.com/realms/acme/login-actions/email-code?execution=ex-1",
		Realm:       h.db.realms["acme"],
		User:        user,
		Notes:       notes,
		IP:          "203.0.113.7",
	}
}

// events waits for background event writes and returns them. Writes run
// concurrently, so order is not guaranteed.
func (h *harness) events(t *testing.T) []entity.LoginEvent {
	t.Helper()
	require.NoError(t, h.g.Wait())
	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	h.mq.mu.Lock()
	defer h.mq.mu.Unlock()
	require.ElementsMatch(t, h.db.events, h.mq.events)
	return h.db.events
}

// seedSession stores a pending session for alice and returns a context
// carrying its claims.
func (h *harness) seedSession(notes entity.Notes) context.Context {
	if notes == nil {
		notes = entity.Notes{}
	}
	h.sessions.m["s-1"] = entity.AuthSession{
		ID:          "s-1",
		RealmID:     "r-1",
		RealmName:   "acme",
		UserID:      "u-1",
		ExecutionID: "ex-1",
		Status:      entity.SessionStatusPending,
		Notes:       notes,
		CreatedAt:   testNow,
		ExpiresAt:   testNow.Add(30 * time.Minute),
	}
	return jwt.SetAuth(context.Background(), jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "s-1"},
		Realm:            "acme",
	})
}
