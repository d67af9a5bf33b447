package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/fatihgnc/taskman-api/internal/config"
)

// SendGridMailer implements Mailer using the SendGrid v3 API. The API key
// comes from configuration at construction; it is never logged.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer creates a Mailer backed by SendGrid.
func NewSendGridMailer(cfg config.EmailConfig) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

// Ensure SendGridMailer implements Mailer.
var _ Mailer = (*SendGridMailer)(nil)

// SendWelcome implements Mailer.SendWelcome.
func (m *SendGridMailer) SendWelcome(ctx context.Context, email, name string) error {
	subject := "Thanks for joining in!"
	body := fmt.Sprintf(
		"Welcome to the app, %s. Let me know how you get along with the app.", name)
	return m.send(ctx, email, name, subject, body)
}

// SendCancellation implements Mailer.SendCancellation.
func (m *SendGridMailer) SendCancellation(ctx context.Context, email, name string) error {
	subject := "Sorry to see you go!"
	body := fmt.Sprintf("We hope to meet you again, %s...", name)
	return m.send(ctx, email, name, subject, body)
}

func (m *SendGridMailer) send(ctx context.Context, email, name, subject, body string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(name, email), body, body)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send rejected with status %d", resp.StatusCode)
	}
	return nil
}
