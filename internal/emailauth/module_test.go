package emailauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shandysiswandi/emailcode/internal/emailauth"
	"github.com/shandysiswandi/emailcode/internal/pkg/clock"
	"github.com/shandysiswandi/emailcode/internal/pkg/config"
	"github.com/shandysiswandi/emailcode/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/jwt"
	"github.com/shandysiswandi/emailcode/internal/pkg/mail"
	"github.com/shandysiswandi/emailcode/internal/pkg/messaging"
	"github.com/shandysiswandi/emailcode/internal/pkg/router"
	"github.com/shandysiswandi/emailcode/internal/pkg/uid"
	"github.com/shandysiswandi/emailcode/internal/pkg/validator"
)

const moduleConfig = `
app:
  base_url: http://id.test
modules:
  emailauth:
    auto_migrate: true
    session_ttl_minutes: 30
    lock_ttl_seconds: 10
    success_url: http://app.test/welcome
    restart_url: http://app.test/login
    handoff_api_key: internal-secret
    event_destination: emailauth.login_events
    locale: en
    cookie:
      name: EMAILCODE_SESSION
`

type outbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) Close() error { return nil }

func (o *outbox) last(t *testing.T) mail.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.msgs)
	return o.msgs[len(o.msgs)-1]
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

var (
	codeRe = regexp.MustCompile(`login code is (\d+)\.`)
	linkRe = regexp.MustCompile(`http://id\.test/\S+`)
)

type server struct {
	srv   *httptest.Server
	mails *outbox
	gm    *goroutine.Manager
}

func newServer(t *testing.T) *server {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("emailcode"),
		tcpostgres.WithUsername("emailcode"),
		tcpostgres.WithPassword("emailcode"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte(moduleConfig))
	require.NoError(t, err)

	v, err := validator.NewV10()
	require.NoError(t, err)
	snow, err := uid.NewSnowflake(1)
	require.NoError(t, err)
	oid, err := uid.NewObjectID()
	require.NoError(t, err)

	clk := clock.New()
	uuid := uid.NewUUID()
	ins := instrument.NewNoop()

	token, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("module-test-secret-", 4)),
		Issuer: "emailcode",
		TTL:    30 * time.Minute,
		Clock:  clk,
		UUID:   uuid,
	})
	require.NoError(t, err)

	r := router.NewRouter(router.Config{Config: cfg, UUID: uuid, Instrument: ins})
	gm := goroutine.NewManager(10)
	mails := &outbox{}

	require.NoError(t, emailauth.New(emailauth.Dependency{
		Ctx:        ctx,
		DBConn:     pool,
		CacheConn:  rdb,
		Goroutine:  gm,
		Router:     r,
		Messaging:  messaging.Discard{},
		Mail:       mails,
		Config:     cfg,
		Instrument: ins,
		UID:        snow,
		UUID:       uuid,
		OID:        oid,
		Clock:      clk,
		Validator:  v,
		JWT:        token,
	}))

	_, err = pool.Exec(ctx, `
		INSERT INTO realms (id, name, display_name) VALUES ('r-1', 'acme', 'Acme Corp');
		INSERT INTO users (id, realm_id, username, email) VALUES ('u-1', 'r-1', 'alice', 'alice@example.com');
	`)
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &server{srv: srv, mails: mails, gm: gm}
}

func (s *server) client() *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// handoff starts an auth session for alice and returns its cookie.
func (s *server) handoff(t *testing.T) *http.Cookie {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/v1/realms/acme/auth-sessions",
		strings.NewReader(`{"user_id":"u-1"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Key", "internal-secret")

	resp, err := s.client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "EMAILCODE_SESSION" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (s *server) do(t *testing.T, method, target string, form url.Values, c *http.Cookie) *http.Response {
	t.Helper()

	var req *http.Request
	var err error
	if form != nil {
		req, err = http.NewRequest(method, target, strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req, err = http.NewRequest(method, target, nil)
		require.NoError(t, err)
	}
	req.AddCookie(c)

	resp, err := s.client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestModule_EmailCodeFlow(t *testing.T) {
	s := newServer(t)
	stepURL := s.srv.URL + "/realms/acme/login-actions/email-code"

	t.Run("typed code", func(t *testing.T) {
		// Arrange
		c := s.handoff(t)
		resp := s.do(t, http.MethodGet, stepURL, nil, c)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		msg := s.mails.last(t)
		assert.Equal(t, []string{"alice@example.com"}, msg.To)
		assert.Equal(t, "Acme Corp login code", msg.Subject)
		m := codeRe.FindStringSubmatch(msg.TextBody)
		require.Len(t, m, 2)

		link, err := url.Parse(linkRe.FindString(msg.TextBody))
		require.NoError(t, err)
		execution := link.Query().Get("execution")
		require.NotEmpty(t, execution)
		action := stepURL + "?execution=" + url.QueryEscape(execution)

		// Act: wrong code first, then the mailed one
		wrong := s.do(t, http.MethodPost, action, url.Values{"emailCode": {"abc"}, "login": {""}}, c)
		ok := s.do(t, http.MethodPost, action, url.Values{"emailCode": {m[1]}, "login": {""}}, c)

		// Assert
		assert.Equal(t, http.StatusOK, wrong.StatusCode)
		assert.Equal(t, http.StatusFound, ok.StatusCode)
		assert.Equal(t, "http://app.test/welcome", ok.Header.Get("Location"))
	})

	t.Run("link key", func(t *testing.T) {
		// Arrange
		c := s.handoff(t)
		s.do(t, http.MethodGet, stepURL, nil, c)
		link := linkRe.FindString(s.mails.last(t).TextBody)
		require.Contains(t, link, "key=")

		// Act
		resp := s.do(t, http.MethodGet, strings.Replace(link, "http://id.test", s.srv.URL, 1), nil, c)

		// Assert
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "http://app.test/welcome", resp.Header.Get("Location"))
	})

	t.Run("resend then cancel", func(t *testing.T) {
		// Arrange
		c := s.handoff(t)
		s.do(t, http.MethodGet, stepURL, nil, c)
		before := s.mails.count()
		link, err := url.Parse(linkRe.FindString(s.mails.last(t).TextBody))
		require.NoError(t, err)
		action := stepURL + "?execution=" + url.QueryEscape(link.Query().Get("execution"))

		// Act
		resent := s.do(t, http.MethodPost, action, url.Values{"resend": {""}}, c)
		canceled := s.do(t, http.MethodPost, action, url.Values{"cancel": {""}}, c)
		after := s.do(t, http.MethodGet, stepURL, nil, c)

		// Assert
		assert.Equal(t, http.StatusOK, resent.StatusCode)
		assert.Equal(t, before+1, s.mails.count())
		assert.Equal(t, http.StatusFound, canceled.StatusCode)
		assert.Equal(t, "http://app.test/login", canceled.Header.Get("Location"))
		assert.Equal(t, http.StatusUnauthorized, after.StatusCode)
	})

	require.NoError(t, s.gm.Wait())
}

func TestModule_HandoffRejectsWrongKey(t *testing.T) {
	s := newServer(t)

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/v1/realms/acme/auth-sessions",
		strings.NewReader(`{"user_id":"u-1"}`))
	require.NoError(t, err)
	req.Header.Set("X-Internal-Key", "nope")

	resp, err := s.client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, s.mails.count())
}
