package notification

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hyking/hyking-backend/internal/profile"
)

type staticContacts struct {
    contacts []profile.Contact
    err      error
}

func (s *staticContacts) GetContacts(ctx context.Context, ids []string) ([]profile.Contact, error) {
    return s.contacts, s.err
}

type failingEmail struct{}

func (failingEmail) SendEmail(ctx context.Context, msg *EmailMessage) error {
    return errors.New("smtp down")
}

func str(s string) *string { return &s }

func people() *staticContacts {
    return &staticContacts{contacts: []profile.Contact{
        {ProfileID: "b", DisplayName: str("Bea"), Email: str("bea@example.com")},
        {ProfileID: "a", DisplayName: str("Ana"), Email: str("ana@example.com"), Phone: str("+491701234567")},
        {ProfileID: "c", Email: str("c@example.com")},
    }}
}

func TestMatchCreatedNotifiesBothParties(t *testing.T) {
    email, sms := NewMockEmailSender(), NewMockSMSSender()
    n := NewNotifier(people(), email, sms, Options{EmailEnabled: true, SMSEnabled: true, AppURL: "https://hyking.app/"})

    require.NoError(t, n.MatchCreated(context.Background(), "a", "b"))

    sent := email.Sent()
    require.Len(t, sent, 2)
    assert.Equal(t, "ana@example.com", sent[0].To)
    assert.Contains(t, sent[0].PlainText, "You and Bea liked each other")
    assert.Contains(t, sent[0].HTML, `href="https://hyking.app/matches"`)
    assert.Equal(t, "bea@example.com", sent[1].To)
    assert.Contains(t, sent[1].PlainText, "You and Ana liked each other")

    texts := sms.Sent()
    require.Len(t, texts, 1, "only Ana has a phone number")
    assert.Equal(t, "+491701234567", texts[0].To)
}

func TestGroupProposedListsOtherMembers(t *testing.T) {
    email := NewMockEmailSender()
    n := NewNotifier(people(), email, NewMockSMSSender(), Options{EmailEnabled: true, AppURL: "https://hyking.app"})

    require.NoError(t, n.GroupProposed(context.Background(), "g1", "Ridge Walk", []string{"a", "b", "c", "ghost"}))

    sent := email.Sent()
    require.Len(t, sent, 3)
    assert.Equal(t, "ana@example.com", sent[0].To)
    assert.Contains(t, sent[0].PlainText, "a group for Ridge Walk")
    assert.Contains(t, sent[0].PlainText, "Members: Bea, a fellow hiker")
    assert.Contains(t, sent[0].HTML, "https://hyking.app/groups/g1")
    assert.Contains(t, sent[2].PlainText, "Hi a fellow hiker")
}

func TestNotifierDisabledChannels(t *testing.T) {
    email, sms := NewMockEmailSender(), NewMockSMSSender()
    contacts := &staticContacts{err: errors.New("should not be called")}
    n := NewNotifier(contacts, email, sms, Options{})

    assert.NoError(t, n.MatchCreated(context.Background(), "a", "b"))
    assert.NoError(t, n.GroupProposed(context.Background(), "g1", "x", []string{"a"}))
    assert.Empty(t, email.Sent())
    assert.Empty(t, sms.Sent())
}

func TestNotifierReportsFailuresAndKeepsGoing(t *testing.T) {
    sms := NewMockSMSSender()
    n := NewNotifier(people(), failingEmail{}, sms, Options{EmailEnabled: true, SMSEnabled: true})

    err := n.MatchCreated(context.Background(), "a", "b")

    assert.Error(t, err)
    assert.Len(t, sms.Sent(), 1)
}

func TestNotifierContactLookupFailure(t *testing.T) {
    n := NewNotifier(&staticContacts{err: errors.New("db down")}, NewMockEmailSender(), nil, Options{EmailEnabled: true, SMSEnabled: true})

    assert.ErrorContains(t, n.MatchCreated(context.Background(), "a", "b"), "failed to load contacts")
}

func TestSenderFactories(t *testing.T) {
    _, err := NewEmailSender("sendgrid", "", "from@example.com")
    assert.Error(t, err)
    _, err = NewEmailSender("carrier-pigeon", "", "")
    assert.Error(t, err)
    email, err := NewEmailSender("mock", "", "")
    require.NoError(t, err)
    assert.IsType(t, &MockEmailSender{}, email)

    _, err = NewSMSSender("twilio", "sid", "", "+1")
    assert.Error(t, err)
    sms, err := NewSMSSender("twilio", "sid", "token", "+1")
    require.NoError(t, err)
    assert.IsType(t, &TwilioSMSSender{}, sms)
}

func TestSendGridEmailSender(t *testing.T) {
    var body map[string]interface{}
    var authHeader string
    server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        authHeader = r.Header.Get("Authorization")
        raw, _ := io.ReadAll(r.Body)
        _ = json.Unmarshal(raw, &body)
        if r.URL.Path != "/v3/mail/send" {
            w.WriteHeader(http.StatusNotFound)
            return
        }
        w.WriteHeader(http.StatusAccepted)
    }))
    defer server.Close()

    sender := NewSendGridEmailSender("sg-key", "noreply@hyking.app", server.URL)
    err := sender.SendEmail(context.Background(), &EmailMessage{
        To: "ana@example.com", ToName: "Ana", Subject: "It's a match!", PlainText: "hi", HTML: "<p>hi</p>",
    })

    require.NoError(t, err)
    assert.Equal(t, "Bearer sg-key", authHeader)
    assert.Equal(t, "It's a match!", body["subject"])
    from := body["from"].(map[string]interface{})
    assert.Equal(t, "noreply@hyking.app", from["email"])
}

func TestSendGridEmailSenderErrorStatus(t *testing.T) {
    server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
    }))
    defer server.Close()

    sender := NewSendGridEmailSender("bad", "noreply@hyking.app", server.URL)
    err := sender.SendEmail(context.Background(), &EmailMessage{To: "x@example.com", Subject: "s", PlainText: "p"})

    assert.Error(t, err)
}
