// internal/invite/email.go
// Email delivery providers for invites

package invite

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers a single email notification.
type EmailSender interface {
	SendEmail(ctx context.Context, notification *EmailNotification) error
}

// SMTPEmailSender implements email delivery using SMTP
type SMTPEmailSender struct {
	from     string
	fromName string
	dialer   *gomail.Dialer
}

// NewSMTPEmailSender creates a new SMTP email sender
func NewSMTPEmailSender(host string, port int, username, password, from, fromName string) (EmailSender, error) {
	if host == "" || username == "" || password == "" || from == "" {
		return nil, fmt.Errorf("incomplete SMTP configuration")
	}

	dialer := gomail.NewDialer(host, port, username, password)
	dialer.TLSConfig = &tls.Config{InsecureSkipVerify: false}

	return &SMTPEmailSender{
		from:     from,
		fromName: fromName,
		dialer:   dialer,
	}, nil
}

// SendEmail sends a single email
func (s *SMTPEmailSender) SendEmail(ctx context.Context, notification *EmailNotification) error {
	m := gomail.NewMessage()

	m.SetHeader("From", m.FormatAddress(s.from, s.fromName))
	m.SetHeader("To", notification.To)
	m.SetHeader("Subject", notification.Subject)

	if notification.HTML != "" {
		m.SetBody("text/html", notification.HTML)
		if notification.Body != "" {
			m.AddAlternative("text/plain", notification.Body)
		}
	} else {
		m.SetBody("text/plain", notification.Body)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("Failed to send email to %s: %v", notification.To, err)
		return err
	}

	return nil
}

// SendGridEmailSender implements email delivery using SendGrid
type SendGridEmailSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendGridEmailSender creates a new SendGrid email sender
func NewSendGridEmailSender(apiKey, from, fromName string) (EmailSender, error) {
	if apiKey == "" || from == "" {
		return nil, fmt.Errorf("incomplete SendGrid configuration")
	}

	return &SendGridEmailSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}, nil
}

// SendEmail sends a single email via SendGrid
func (s *SendGridEmailSender) SendEmail(ctx context.Context, notification *EmailNotification) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", notification.To)
	message := mail.NewSingleEmail(from, notification.Subject, to, notification.Body, notification.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	return nil
}

// MockEmailSender records emails instead of sending them
type MockEmailSender struct {
	SentEmails []*EmailNotification
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{SentEmails: make([]*EmailNotification, 0)}
}

func (m *MockEmailSender) SendEmail(ctx context.Context, notification *EmailNotification) error {
	m.SentEmails = append(m.SentEmails, notification)
	log.Printf("Mock: Sending email to %s: %s", notification.To, notification.Subject)
	return nil
}
