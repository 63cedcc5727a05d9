package email

import (
	"context"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/emailauth/outbound/theme"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/mail"
)

type templates interface {
	RenderCodeEmail(ctx context.Context, msg entity.CodeEmail) (theme.RenderedEmail, error)
}

type Mail struct {
	client mail.Mail
	tpl    templates
	ins    instrument.Instrumentation
}

func New(client mail.Mail, tpl templates, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, tpl: tpl, ins: ins}
}

// SendCode renders the code email and hands it to the transport.
func (m *Mail) SendCode(ctx context.Context, msg entity.CodeEmail) error {
	ctx, span := m.ins.Tracer("emailauth.outbound.email").Start(ctx, "SendCode")
	defer span.End()

	rendered, err := m.tpl.RenderCodeEmail(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{msg.To},
		Subject:  rendered.Subject,
		HTMLBody: rendered.HTML,
		TextBody: rendered.Text,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
