// internal/notification/sms.go

package notification

import (
    "context"
    "fmt"
    "log"
    "sync"

    "github.com/twilio/twilio-go"
    twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers text messages
type SMSSender interface {
    SendSMS(ctx context.Context, msg *SMSMessage) error
}

// NewSMSSender picks the sender for the configured provider
func NewSMSSender(provider, accountSID, authToken, from string) (SMSSender, error) {
    switch provider {
    case "twilio":
        if accountSID == "" || authToken == "" || from == "" {
            return nil, fmt.Errorf("incomplete Twilio configuration")
        }
        return NewTwilioSMSSender(accountSID, authToken, from), nil
    case "mock", "":
        return NewMockSMSSender(), nil
    default:
        return nil, fmt.Errorf("unknown SMS provider: %s", provider)
    }
}

// TwilioSMSSender sends through the Twilio messages API
type TwilioSMSSender struct {
    client *twilio.RestClient
    from   string
}

func NewTwilioSMSSender(accountSID, authToken, from string) *TwilioSMSSender {
    client := twilio.NewRestClientWithParams(twilio.ClientParams{
        Username: accountSID,
        Password: authToken,
    })
    return &TwilioSMSSender{client: client, from: from}
}

// SendSMS sends one message. The Twilio client has no context support, so
// ctx is only checked before the call.
func (s *TwilioSMSSender) SendSMS(ctx context.Context, msg *SMSMessage) error {
    if err := ctx.Err(); err != nil {
        return err
    }

    params := &twilioApi.CreateMessageParams{}
    params.SetTo(msg.To)
    params.SetFrom(s.from)
    params.SetBody(msg.Body)

    resp, err := s.client.Api.CreateMessage(params)
    if err != nil {
        return fmt.Errorf("failed to send SMS via Twilio: %w", err)
    }
    if resp.Sid != nil {
        log.Printf("📱 SMS to %s queued with SID %s", msg.To, *resp.Sid)
    }
    return nil
}

// MockSMSSender records messages instead of sending them
type MockSMSSender struct {
    mu   sync.Mutex
    sent []SMSMessage
}

func NewMockSMSSender() *MockSMSSender {
    return &MockSMSSender{}
}

func (m *MockSMSSender) SendSMS(ctx context.Context, msg *SMSMessage) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.sent = append(m.sent, *msg)
    log.Printf("📱 Mock: SMS to %s: %s", msg.To, msg.Body)
    return nil
}

// Sent returns a copy of the recorded messages
func (m *MockSMSSender) Sent() []SMSMessage {
    m.mu.Lock()
    defer m.mu.Unlock()
    return append([]SMSMessage(nil), m.sent...)
}
