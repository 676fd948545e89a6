package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/skybiz/skybiz/shared"
	"gopkg.in/gomail.v2"
)

// Sender delivers a plain text email.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(config shared.MailConfig) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)}
}

func (s *SMTPSender) Send(ctx context.Context, from, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("SMTPSender.Send: %v", err)
	}

	return nil
}

var ErrNotConfigured = errors.New("mail is not configured")

// UnconfiguredSender fails every send. Used outside dev mode when no SMTP host is set.
type UnconfiguredSender struct{}

func (UnconfiguredSender) Send(ctx context.Context, from, to, subject, body string) error {
	return ErrNotConfigured
}

// LogSender only logs outgoing mail. Used in dev mode when no SMTP host is set.
type LogSender struct {
	Logf func(template string, args ...interface{})
}

func (s LogSender) Send(ctx context.Context, from, to, subject, body string) error {
	s.Logf("Mail from %v to %v: %q\n%v", from, to, subject, body)
	return nil
}
