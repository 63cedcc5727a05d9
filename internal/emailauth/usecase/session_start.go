package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
)

type StartSessionInput struct {
	Realm  string `validate:"required,slug"`
	UserID string `validate:"required,max=64"`
}

type StartSessionOutput struct {
	SessionID string
	Token     string
	ResumeURL string
	ExpiresAt time.Time
}

// StartSession opens an auth session for a user already identified by an
// earlier login step. The returned token goes in the session cookie and the
// browser is sent to ResumeURL.
func (s *Usecase) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	ctx, span := s.startSpan(ctx, "StartSession")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	realm, err := s.repoDB.GetRealmByName(ctx, in.Realm)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "realm not found for auth session", "realm", in.Realm)
		return nil, goerror.NewBusiness("Realm not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get realm by name", "realm", in.Realm, "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, realm.ID, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found for auth session", "realm_id", realm.ID, "user_id", in.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.cfg.GetMinute("modules.emailauth.session_ttl_minutes")
	now := s.clock.Now()
	sess := entity.AuthSession{
		ID:          s.uuid.Generate(),
		RealmID:     realm.ID,
		RealmName:   realm.Name,
		UserID:      user.ID,
		ExecutionID: s.oid.Generate(),
		Status:      entity.SessionStatusPending,
		Notes:       entity.Notes{},
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}

	if err := s.repoSession.Create(ctx, sess, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to repo create auth session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	token, err := s.jwt.Generate(sess.ID, realm.Name)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "session_id", sess.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "auth session started", "session_id", sess.ID, "user_id", user.ID)

	return &StartSessionOutput{
		SessionID: sess.ID,
		Token:     token,
		ResumeURL: s.resumeURL(realm.Name, sess.ExecutionID),
		ExpiresAt: sess.ExpiresAt,
	}, nil
}
