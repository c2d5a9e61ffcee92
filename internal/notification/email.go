// internal/notification/email.go

package notification

import (
    "context"
    "fmt"
    "log"
    "sync"

    "github.com/sendgrid/sendgrid-go"
    "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers emails
type EmailSender interface {
    SendEmail(ctx context.Context, msg *EmailMessage) error
}

// NewEmailSender picks the sender for the configured provider
func NewEmailSender(provider, apiKey, from string) (EmailSender, error) {
    switch provider {
    case "sendgrid":
        if apiKey == "" {
            return nil, fmt.Errorf("sendgrid api key is required")
        }
        return NewSendGridEmailSender(apiKey, from, ""), nil
    case "mock", "":
        return NewMockEmailSender(), nil
    default:
        return nil, fmt.Errorf("unknown email provider: %s", provider)
    }
}

// SendGridEmailSender sends through the SendGrid v3 mail API
type SendGridEmailSender struct {
    client *sendgrid.Client
    from   string
}

// NewSendGridEmailSender creates a SendGrid sender. An empty host uses
// the public API.
func NewSendGridEmailSender(apiKey, from, host string) *SendGridEmailSender {
    request := sendgrid.GetRequest(apiKey, "/v3/mail/send", host)
    return &SendGridEmailSender{
        client: &sendgrid.Client{Request: request},
        from:   from,
    }
}

func (s *SendGridEmailSender) SendEmail(ctx context.Context, msg *EmailMessage) error {
    from := mail.NewEmail("Hyking", s.from)
    to := mail.NewEmail(msg.ToName, msg.To)
    message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

    response, err := s.client.SendWithContext(ctx, message)
    if err != nil {
        return fmt.Errorf("failed to send email via SendGrid: %w", err)
    }
    if response.StatusCode >= 400 {
        return fmt.Errorf("SendGrid returned error status: %d", response.StatusCode)
    }
    return nil
}

// MockEmailSender records emails instead of sending them
type MockEmailSender struct {
    mu   sync.Mutex
    sent []EmailMessage
}

func NewMockEmailSender() *MockEmailSender {
    return &MockEmailSender{}
}

func (m *MockEmailSender) SendEmail(ctx context.Context, msg *EmailMessage) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.sent = append(m.sent, *msg)
    log.Printf("📧 Mock: email to %s: %s", msg.To, msg.Subject)
    return nil
}

// Sent returns a copy of the recorded emails
func (m *MockEmailSender) Sent() []EmailMessage {
    m.mu.Lock()
    defer m.mu.Unlock()
    return append([]EmailMessage(nil), m.sent...)
}
