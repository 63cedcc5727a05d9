package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
)

type ActionInput struct {
	Realm string
	// Execution is the execution id the form was rendered for.
	Execution string
	Form      url.Values
	IP        string
}

// Action handles a submitted code form: resend, cancel or a typed code.
func (s *Usecase) Action(ctx context.Context, in ActionInput) (*StepOutput, error) {
	ctx, span := s.startSpan(ctx, "Action")
	defer span.End()

	return s.runStep(ctx, in.Realm, in.IP, func(ctx context.Context, att *entity.Attempt) (entity.StepResult, error) {
		if in.Execution != att.ExecutionID {
			slog.WarnContext(ctx, "email code form posted for another execution",
				"session_id", att.SessionID, "execution", in.Execution)
			return s.challenge(ctx, att, nil)
		}
		return s.action(ctx, att, in.Form)
	})
}

func (s *Usecase) action(ctx context.Context, att *entity.Attempt, form url.Values) (entity.StepResult, error) {
	if lo.HasKey(form, entity.FormResend) {
		resetNotes(att.Notes)
		return s.challenge(ctx, att, nil)
	}

	if lo.HasKey(form, entity.FormCancel) {
		resetNotes(att.Notes)
		s.recordEvent(ctx, att, entity.EventCodeCanceled, "", nil)
		return entity.StepResult{Status: entity.StepAbort}, nil
	}

	if !codeMatches(att.Notes, form.Get(entity.FormEmailCode)) {
		slog.WarnContext(ctx, "invalid email code submitted", "session_id", att.SessionID, "user_id", att.User.ID)
		s.count(ctx, s.codeRejected, metric.WithAttributes(attribute.String("reason", "code")))
		s.recordEvent(ctx, att, entity.EventLoginError, entity.ErrorInvalidUserCredentials, map[string]string{"method": "code"})
		return s.challenge(ctx, att, &entity.FormMessage{Key: entity.MessageInvalidAccessCode})
	}

	resetNotes(att.Notes)
	s.count(ctx, s.codeVerified, metric.WithAttributes(attribute.String("path", "code")))
	s.recordEvent(ctx, att, entity.EventLogin, "", map[string]string{"method": "code"})
	return entity.StepResult{Status: entity.StepSuccess}, nil
}

// codeMatches compares numerically, so "0042" matches a stored "42". A
// missing stored code or an unparsable input never matches.
func codeMatches(notes entity.Notes, submitted string) bool {
	stored, ok := notes.Get(entity.NoteEmailCode)
	if !ok {
		return false
	}
	want, err := strconv.Atoi(stored)
	if err != nil {
		return false
	}
	got, err := strconv.Atoi(strings.TrimSpace(submitted))
	if err != nil {
		return false
	}
	return got == want
}
