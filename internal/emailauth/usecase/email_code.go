package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/goerror"
)

// issueCodeIfAbsent creates the code and link key pair, mails it and stores
// it on the attempt. It does nothing while a code is live. The mail is sent
// before the notes are written; a delivery failure is logged and the pair is
// stored anyway so the user can ask for a resend.
func (s *Usecase) issueCodeIfAbsent(ctx context.Context, att *entity.Attempt) error {
	if _, ok := att.Notes.Get(entity.NoteEmailCode); ok {
		return nil
	}

	if att.User.Email == "" {
		slog.WarnContext(ctx, "user has no email address for email code",
			"realm_id", att.Realm.ID, "username", att.User.Username)
		s.recordEvent(ctx, att, entity.EventLoginError, entity.ErrorInvalidUser, nil)
		return goerror.NewBusiness("Account has no email address", goerror.CodeForbidden)
	}

	n, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate email code", "error", err)
		return goerror.NewServer(err)
	}
	code := strconv.Itoa(n)
	urlKey := s.uuid.Generate()

	link, err := withQuery(att.ResumeURL, "key", urlKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build email code link", "resume_url", att.ResumeURL, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoMail.SendCode(ctx, entity.CodeEmail{
		Realm:    att.Realm,
		Username: att.User.Username,
		To:       att.User.Email,
		Code:     code,
		KeyURL:   link,
		Locale:   s.cfg.GetString("modules.emailauth.locale"),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send email code",
			"realm_id", att.Realm.ID, "username", att.User.Username, "error", err)
		s.recordEvent(ctx, att, entity.EventLoginError, entity.ErrorEmailSendFailed, nil)
	} else {
		s.recordEvent(ctx, att, entity.EventCodeSent, "", nil)
	}
	s.count(ctx, s.codeIssued)

	att.Notes.Set(entity.NoteEmailCode, code)
	att.Notes.Set(entity.NoteURLKey, urlKey)

	return nil
}

// challenge is the only path that renders the code form.
func (s *Usecase) challenge(ctx context.Context, att *entity.Attempt, msg *entity.FormMessage) (entity.StepResult, error) {
	if err := s.issueCodeIfAbsent(ctx, att); err != nil {
		return entity.StepResult{}, err
	}

	page, err := s.renderer.RenderCodeForm(ctx, entity.CodeForm{
		Realm:       att.Realm,
		Username:    att.User.Username,
		ExecutionID: att.ExecutionID,
		ActionURL:   att.ResumeURL,
		Error:       msg,
		Locale:      s.cfg.GetString("modules.emailauth.locale"),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email code form", "session_id", att.SessionID, "error", err)
		return entity.StepResult{}, goerror.NewServer(err)
	}

	return entity.StepResult{Status: entity.StepChallenge, Page: page}, nil
}

func resetNotes(n entity.Notes) {
	n.Remove(entity.NoteEmailCode)
	n.Remove(entity.NoteURLKey)
}

func withQuery(raw, key, value string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
