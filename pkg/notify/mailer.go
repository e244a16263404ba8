package notify

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/wneessen/go-mail"
)

// DefaultSMTPPort is the STARTTLS submission port.
const DefaultSMTPPort = 587

// SMTPConfig holds the mail server settings. From defaults to Username.
type SMTPConfig struct {
	Host     string `validate:"required,hostname|ip"`
	Port     int    `validate:"required,min=1,max=65535"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	From     string `validate:"omitempty,email"`
}

// Message is a plain-text mail with optional file attachments.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []string
}

// Sender delivers built messages. *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Mailer struct {
	From   string
	Sender Sender
	Logger types.Logger
}

// NewMailer validates cfg and prepares an SMTP client that upgrades with
// STARTTLS and authenticates with PLAIN.
func NewMailer(cfg SMTPConfig, logger types.Logger) (*Mailer, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("creating SMTP client for %s: %w", cfg.Host, err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{From: from, Sender: client, Logger: logger}, nil
}

// Build turns msg into a go-mail message. Attachments that do not exist are
// skipped with a warning.
func (m *Mailer) Build(msg Message) (*mail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("message has no recipients")
	}

	out := mail.NewMsg()
	if err := out.From(m.From); err != nil {
		return nil, fmt.Errorf("setting sender %q: %w", m.From, err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("setting recipients: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, path := range msg.Attachments {
		if _, err := os.Stat(path); err != nil {
			m.Logger.Warn().Str("path", path).Err(err).Msg("Skipping missing attachment")
			continue
		}
		out.AttachFile(path)
	}
	return out, nil
}

// Send builds and delivers msg.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	out, err := m.Build(msg)
	if err != nil {
		return err
	}
	if err := m.Sender.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("sending %q: %w", msg.Subject, err)
	}
	m.Logger.Info().Interface("recipients", msg.To).Int("attachments", len(out.GetAttachments())).Msg("Email sent")
	return nil
}
