// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Email is a single outbound message. HTMLBody is optional.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email. Features depend on this rather than on Mailer so
// tests can substitute a mock.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// Config holds SMTP relay settings. An empty User disables SMTP AUTH.
type Config struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Mailer sends email through an SMTP relay.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
	log    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		log:    logger,
	}
}

// Send delivers e. It fails fast if ctx is already done; the SMTP
// exchange itself is not interruptible.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.message(e)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Warn("smtp send failed",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
			zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}
	m.log.Debug("mail sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}

func (m *Mailer) message(e Email) (*gomail.Message, error) {
	if _, err := mail.ParseAddress(e.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", e.To, err)
	}
	if e.TextBody == "" && e.HTMLBody == "" {
		return nil, errors.New("email has no body")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", e.To)
	msg.SetHeader("Subject", e.Subject)
	switch {
	case e.TextBody != "" && e.HTMLBody != "":
		msg.SetBody("text/plain", e.TextBody)
		msg.AddAlternative("text/html", e.HTMLBody)
	case e.HTMLBody != "":
		msg.SetBody("text/html", e.HTMLBody)
	default:
		msg.SetBody("text/plain", e.TextBody)
	}
	return msg, nil
}
