package mail

import (
	"context"
	"crypto/tls"
	"errors"

	"gopkg.in/gomail.v2"
)

var (
	// ErrSMTPHostPortRequired is returned when Host or Port are missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipients is returned when To, Cc and Bcc are all empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when neither Message.From nor the default sender is set.
	ErrSMTPNoSender = errors.New("no sender provided")
	// ErrSMTPNoBody is returned when both bodies are empty.
	ErrSMTPNoBody = errors.New("no body provided")
)

// SMTPConfig configures the gomail dialer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the sender used when Message.From is empty.
	From string
	// SSL forces implicit TLS (port 465). Otherwise STARTTLS is used when offered.
	SSL bool
	// InsecureSkipVerify disables certificate checks; only for local mail catchers.
	InsecureSkipVerify bool
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTP sends mail through gomail, opening one connection per message.
type SMTP struct {
	dialer      sender
	defaultFrom string
}

func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.SSL
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: true} //nolint:gosec // opt-in for dev mail catchers
	}

	return &SMTP{dialer: d, defaultFrom: cfg.From}, nil
}

// Send builds a multipart/alternative message when both bodies are set.
// gomail has no context support, so ctx is only checked before dialing.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := buildMessage(msg, s.defaultFrom)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.dialer.DialAndSend(m)
}

func (s *SMTP) Close() error {
	return nil
}

func buildMessage(msg Message, defaultFrom string) (*gomail.Message, error) {
	if len(msg.To)+len(msg.Cc)+len(msg.Bcc) == 0 {
		return nil, ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = defaultFrom
	}
	if from == "" {
		return nil, ErrSMTPNoSender
	}

	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", from)
	if len(msg.To) > 0 {
		m.SetHeader("To", msg.To...)
	}
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	case msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
	default:
		return nil, ErrSMTPNoBody
	}

	return m, nil
}
