package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends notification email over SMTP.
type SMTPMailer struct {
	cfg    Config
	dialer sender
}

var _ portssvc.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer. From defaults to the username.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPMailer) buildMessage(email domain.Email) *gomail.Message {
	m := gomail.NewMessage()
	if s.cfg.FromName != "" {
		m.SetHeader("From", m.FormatAddress(s.cfg.From, s.cfg.FromName))
	} else {
		m.SetHeader("From", s.cfg.From)
	}
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTML)
	return m
}

// Send delivers email. The SMTP exchange itself is not cancellable.
func (s *SMTPMailer) Send(ctx context.Context, email domain.Email) error {
	if email.To == "" {
		return errors.New("email recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.buildMessage(email)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email.To, err)
	}
	return nil
}
