package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/clock"
	"github.com/shandysiswandi/emailcode/internal/pkg/config"
	"github.com/shandysiswandi/emailcode/internal/pkg/goroutine"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/jwt"
	"github.com/shandysiswandi/emailcode/internal/pkg/locker"
	"github.com/shandysiswandi/emailcode/internal/pkg/uid"
	"github.com/shandysiswandi/emailcode/internal/pkg/validator"
)

type repoDB interface {
	GetRealmByName(ctx context.Context, name string) (*entity.Realm, error)
	GetUserByID(ctx context.Context, realmID, userID string) (*entity.User, error)

	CreateLoginEvent(ctx context.Context, ev entity.LoginEvent) error
}

type repoSession interface {
	Create(ctx context.Context, sess entity.AuthSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*entity.AuthSession, error)
	Save(ctx context.Context, sess entity.AuthSession) error
	Delete(ctx context.Context, id string) error
}

type repoMail interface {
	SendCode(ctx context.Context, msg entity.CodeEmail) error
}

type repoMessaging interface {
	PublishLoginEvent(ctx context.Context, ev entity.LoginEvent) error
}

type renderer interface {
	RenderCodeForm(ctx context.Context, form entity.CodeForm) ([]byte, error)
}

type codeGenerator interface {
	Generate() (int, error)
}

type Usecase struct {
	repoDB        repoDB
	repoSession   repoSession
	repoMail      repoMail
	repoMessaging repoMessaging
	renderer      renderer
	locker        locker.Locker
	code          codeGenerator
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	uuid          uid.StringID
	oid           uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	codeIssued   metric.Int64Counter
	codeVerified metric.Int64Counter
	codeRejected metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoSession   repoSession
	RepoMail      repoMail
	RepoMessaging repoMessaging
	Renderer      renderer
	Locker        locker.Locker
	// Code defaults to a crypto/rand generator.
	Code       codeGenerator
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	UUID       uid.StringID
	OID        uid.StringID
	Clock      clock.Clocker
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoSession:   dep.RepoSession,
		repoMail:      dep.RepoMail,
		repoMessaging: dep.RepoMessaging,
		renderer:      dep.Renderer,
		locker:        dep.Locker,
		code:          dep.Code,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		uuid:          dep.UUID,
		oid:           dep.OID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
	if s.code == nil {
		s.code = RandomCode{}
	}

	meter := s.ins.Meter("emailauth.usecase")
	var err error
	if s.codeIssued, err = meter.Int64Counter("emailauth.code.issued",
		metric.WithDescription("Email codes issued")); err != nil {
		slog.Error("failed to create code issued counter", "error", err)
	}
	if s.codeVerified, err = meter.Int64Counter("emailauth.code.verified",
		metric.WithDescription("Successful email code or link verifications")); err != nil {
		slog.Error("failed to create code verified counter", "error", err)
	}
	if s.codeRejected, err = meter.Int64Counter("emailauth.code.rejected",
		metric.WithDescription("Rejected email codes and link keys")); err != nil {
		slog.Error("failed to create code rejected counter", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("emailauth.usecase").Start(ctx, name)
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, opts ...metric.AddOption) {
	if c != nil {
		c.Add(ctx, 1, opts...)
	}
}

// recordEvent writes the event to the audit table and the event stream in
// the background. Failures are logged and never reach the user.
func (s *Usecase) recordEvent(ctx context.Context, att *entity.Attempt, typ entity.EventType, errCode string, details map[string]string) {
	ev := entity.LoginEvent{
		ID:        s.uid.Generate(),
		Type:      typ,
		Error:     errCode,
		RealmID:   att.Realm.ID,
		UserID:    att.User.ID,
		SessionID: att.SessionID,
		IP:        att.IP,
		Details:   details,
		Time:      s.clock.Now(),
	}

	s.goroutine.Go(ctx, func(ctx context.Context) error {
		var errs error
		if err := s.repoDB.CreateLoginEvent(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to repo create login event", "event_id", ev.ID, "type", ev.Type, "error", err)
			errs = errors.Join(errs, err)
		}
		if err := s.repoMessaging.PublishLoginEvent(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish login event", "event_id", ev.ID, "type", ev.Type, "error", err)
			errs = errors.Join(errs, err)
		}
		return errs
	})
}
