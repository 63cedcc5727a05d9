package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/emailauth/outbound/theme"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/mail"
)

type captureMail struct {
	sent []mail.Message
	err  error
}

func (c *captureMail) Send(_ context.Context, msg mail.Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

func (*captureMail) Close() error { return nil }

func TestMail_SendCode(t *testing.T) {
	// Arrange
	th, err := theme.New(instrument.NewNoop(), "en")
	require.NoError(t, err)
	transport := &captureMail{}
	m := New(transport, th, instrument.NewNoop())

	// Act
	err = m.SendCode(context.Background(), entity.CodeEmail{
		Realm:    entity.Realm{Name: "acme", DisplayName: "Acme Corp"},
		Username: "alice",
		To:       "alice@example.com",
		Code:     "4821",
		KeyURL:   "https://id.example.com/x?key=k1",
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, msg.To)
	assert.Equal(t, "Acme Corp login code", msg.Subject)
	assert.Contains(t, msg.TextBody, "4821")
	assert.Contains(t, msg.HTMLBody, "4821")
}

func TestMail_SendCode_TransportError(t *testing.T) {
	th, err := theme.New(instrument.NewNoop(), "en")
	require.NoError(t, err)
	errSMTP := errors.New("dial tcp: connection refused")
	m := New(&captureMail{err: errSMTP}, th, instrument.NewNoop())

	err = m.SendCode(context.Background(), entity.CodeEmail{To: "alice@example.com"})

	assert.ErrorIs(t, err, errSMTP)
}
