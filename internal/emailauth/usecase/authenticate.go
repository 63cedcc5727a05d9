package usecase

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
)

type AuthenticateInput struct {
	Realm string
	// Key is the link key from the query string. HasKey is true when the
	// parameter was present, even with an empty value.
	Key    string
	HasKey bool
	IP     string
}

// Authenticate handles the first entry into the step and clicks on the
// emailed link.
func (s *Usecase) Authenticate(ctx context.Context, in AuthenticateInput) (*StepOutput, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	return s.runStep(ctx, in.Realm, in.IP, func(ctx context.Context, att *entity.Attempt) (entity.StepResult, error) {
		return s.authenticate(ctx, att, in.Key, in.HasKey)
	})
}

// authenticate consumes the stored link key whenever a key is presented,
// matching or not, so each link works at most once.
func (s *Usecase) authenticate(ctx context.Context, att *entity.Attempt, key string, hasKey bool) (entity.StepResult, error) {
	if hasKey {
		stored, ok := att.Notes.Get(entity.NoteURLKey)
		att.Notes.Remove(entity.NoteURLKey)

		if ok && key == stored {
			resetNotes(att.Notes)
			s.count(ctx, s.codeVerified, metric.WithAttributes(attribute.String("path", "link")))
			s.recordEvent(ctx, att, entity.EventLogin, "", map[string]string{"method": "link"})
			return entity.StepResult{Status: entity.StepSuccess}, nil
		}

		slog.WarnContext(ctx, "invalid email code link key", "session_id", att.SessionID, "user_id", att.User.ID)
		s.count(ctx, s.codeRejected, metric.WithAttributes(attribute.String("reason", "link_key")))
		s.recordEvent(ctx, att, entity.EventLoginError, entity.ErrorInvalidUserCredentials, map[string]string{"method": "link"})
	}

	return s.challenge(ctx, att, nil)
}
