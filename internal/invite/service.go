// internal/invite/service.go

package invite

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

const defaultInviteMessage = "I found this quiet space for meaningful connections. Thought you might appreciate it too."

// Service sends invitation emails on behalf of existing members.
type Service interface {
	SendInvite(ctx context.Context, req *SendInviteRequest) error
}

type service struct {
	sender EmailSender
	appURL string
}

func NewService(sender EmailSender, appURL string) Service {
	return &service{sender: sender, appURL: appURL}
}

func (s *service) SendInvite(ctx context.Context, req *SendInviteRequest) error {
	message := req.PersonalMessage
	if message == "" {
		message = defaultInviteMessage
	}

	fromName := req.SenderName
	if fromName == "" {
		fromName = "A friend"
	}

	html, err := renderInviteEmail(message, s.appURL)
	if err != nil {
		return fmt.Errorf("render invite email: %w", err)
	}

	notification := &EmailNotification{
		To:      req.RecipientEmail,
		Subject: fmt.Sprintf("%s invited you to a special community", fromName),
		Body:    message,
		HTML:    html,
	}

	return s.sender.SendEmail(ctx, notification)
}

var inviteTemplate = template.Must(template.New("invite").Parse(`
<div style="font-family: system-ui, -apple-system, sans-serif; max-width: 600px; margin: 0 auto; padding: 40px 20px;">
  <h1 style="color: #2d3748; font-size: 24px; margin-bottom: 20px;">You've been invited</h1>
  <p style="color: #4a5568; font-size: 16px; line-height: 1.6; margin-bottom: 20px;">
    {{.Message}}
  </p>
  <p style="color: #4a5568; font-size: 16px; line-height: 1.6; margin-bottom: 30px;">
    Join a community built on authentic connections, meaningful conversations, and genuine relationships.
  </p>
  <a href="{{.AppURL}}"
     style="display: inline-block; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 14px 28px; text-decoration: none; border-radius: 8px; font-weight: 600;">
    Begin Your Journey
  </a>
  <p style="color: #718096; font-size: 14px; margin-top: 40px;">
    This is a quiet space where connections matter more than swipes.
  </p>
</div>
`))

func renderInviteEmail(message, appURL string) (string, error) {
	var buf bytes.Buffer
	err := inviteTemplate.Execute(&buf, map[string]string{
		"Message": message,
		"AppURL":  appURL,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
