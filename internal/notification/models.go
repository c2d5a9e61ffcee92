// internal/notification/models.go

package notification

// Kind names the event a notification is about
type Kind string

const (
    KindMatchCreated  Kind = "match_created"
    KindGroupProposed Kind = "group_proposed"
)

// Channel is the delivery route
type Channel string

const (
    ChannelEmail Channel = "email"
    ChannelSMS   Channel = "sms"
)

// EmailMessage is one outgoing email
type EmailMessage struct {
    To        string
    ToName    string
    Subject   string
    PlainText string
    HTML      string
}

// SMSMessage is one outgoing text message
type SMSMessage struct {
    To   string
    Body string
}

// Recipient is a profile's resolved contact data
type Recipient struct {
    ProfileID string
    Name      string
    Email     string
    Phone     string
}
