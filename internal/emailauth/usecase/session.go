package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
	"github.com/shandysiswandi/emailcode/internal/pkg/jwt"
)

// StepOutput is what the browser gets back: a page, or a redirect. When
// EndSession is set the session cookie must be cleared.
type StepOutput struct {
	Page        []byte
	RedirectURL string
	EndSession  bool
}

type stepFunc func(ctx context.Context, att *entity.Attempt) (entity.StepResult, error)

// runStep loads the caller's session under its lock, runs fn on the
// attempt and persists the outcome.
func (s *Usecase) runStep(ctx context.Context, realmName, ip string, fn stepFunc) (*StepOutput, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication session required", goerror.CodeUnauthorized)
	}
	sessionID := clm.SessionID()

	release, err := s.locker.Lock(ctx, "emailauth:"+sessionID, s.cfg.GetSecond("modules.emailauth.lock_ttl_seconds"))
	if errors.Is(err, goerror.ErrLocked) {
		slog.WarnContext(ctx, "auth session is busy", "session_id", sessionID)
		return nil, goerror.NewBusiness("Another request for this login is in progress", goerror.CodeLocked)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to lock auth session", "session_id", sessionID, "error", err)
		return nil, goerror.NewServer(err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.WarnContext(ctx, "failed to release auth session lock", "session_id", sessionID, "error", err)
		}
	}()

	sess, err := s.repoSession.Get(ctx, sessionID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "auth session not found", "session_id", sessionID)
		return nil, goerror.NewBusiness("Authentication session expired", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get auth session", "session_id", sessionID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if sess.RealmName != realmName {
		slog.WarnContext(ctx, "auth session used on another realm", "session_id", sessionID, "realm", realmName)
		return nil, goerror.NewBusiness("Authentication session belongs to another realm", goerror.CodeUnauthorized)
	}

	if sess.Status == entity.SessionStatusAuthenticated {
		return &StepOutput{RedirectURL: s.cfg.GetString("modules.emailauth.success_url")}, nil
	}

	att, err := s.loadAttempt(ctx, sess, ip)
	if err != nil {
		return nil, err
	}

	res, err := fn(ctx, att)
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case entity.StepSuccess:
		sess.Notes = att.Notes
		sess.Status = entity.SessionStatusAuthenticated
		if err := s.repoSession.Save(ctx, *sess); err != nil {
			slog.ErrorContext(ctx, "failed to repo save auth session", "session_id", sessionID, "error", err)
			return nil, goerror.NewServer(err)
		}
		slog.InfoContext(ctx, "email code step completed", "session_id", sessionID, "user_id", sess.UserID)
		return &StepOutput{RedirectURL: s.cfg.GetString("modules.emailauth.success_url")}, nil

	case entity.StepAbort:
		if err := s.repoSession.Delete(ctx, sessionID); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete auth session", "session_id", sessionID, "error", err)
			return nil, goerror.NewServer(err)
		}
		slog.InfoContext(ctx, "email code step cancelled", "session_id", sessionID, "user_id", sess.UserID)
		return &StepOutput{RedirectURL: s.cfg.GetString("modules.emailauth.restart_url"), EndSession: true}, nil

	default:
		sess.Notes = att.Notes
		if err := s.repoSession.Save(ctx, *sess); err != nil {
			slog.ErrorContext(ctx, "failed to repo save auth session", "session_id", sessionID, "error", err)
			return nil, goerror.NewServer(err)
		}
		return &StepOutput{Page: res.Page}, nil
	}
}

func (s *Usecase) loadAttempt(ctx context.Context, sess *entity.AuthSession, ip string) (*entity.Attempt, error) {
	realm, err := s.repoDB.GetRealmByName(ctx, sess.RealmName)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "realm of auth session no longer exists", "realm", sess.RealmName)
		return nil, goerror.NewBusiness("Realm not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get realm by name", "realm", sess.RealmName, "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, realm.ID, sess.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user of auth session no longer exists", "realm_id", realm.ID, "user_id", sess.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeForbidden)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", sess.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	notes := sess.Notes.Clone()
	return &entity.Attempt{
		SessionID:   sess.ID,
		ExecutionID: sess.ExecutionID,
		ResumeURL:   s.resumeURL(realm.Name, sess.ExecutionID),
		Realm:       *realm,
		User:        *user,
		Notes:       notes,
		IP:          ip,
	}, nil
}

func (s *Usecase) resumeURL(realm, execution string) string {
	base := strings.TrimRight(s.cfg.GetString("app.base_url"), "/")
	q := url.Values{"execution": {execution}}
	return base + "/realms/" + url.PathEscape(realm) + "/login-actions/email-code?" + q.Encode()
}
