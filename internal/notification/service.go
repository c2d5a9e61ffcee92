// internal/notification/service.go

package notification

import (
    "context"
    "errors"
    "fmt"
    "log"
    "strings"

    "github.com/hyking/hyking-backend/internal/profile"
)

const anonymousName = "a fellow hiker"

// ContactLookup resolves contact data for profiles
type ContactLookup interface {
    GetContacts(ctx context.Context, ids []string) ([]profile.Contact, error)
}

// Options switch channels on and off
type Options struct {
    EmailEnabled bool
    SMSEnabled   bool
    AppURL       string
}

// Notifier tells people about new matches and group proposals. Delivery
// failures are logged and returned for the caller to log; they never undo
// the event itself.
type Notifier struct {
    contacts ContactLookup
    email    EmailSender
    sms      SMSSender
    opts     Options
}

// NewNotifier creates a notifier. A nil sender disables its channel.
func NewNotifier(contacts ContactLookup, email EmailSender, sms SMSSender, opts Options) *Notifier {
    if email == nil {
        opts.EmailEnabled = false
    }
    if sms == nil {
        opts.SMSEnabled = false
    }
    opts.AppURL = strings.TrimRight(opts.AppURL, "/")
    return &Notifier{contacts: contacts, email: email, sms: sms, opts: opts}
}

func (n *Notifier) enabled() bool {
    return n.opts.EmailEnabled || n.opts.SMSEnabled
}

// MatchCreated notifies both parties of a new match
func (n *Notifier) MatchCreated(ctx context.Context, user1ID, user2ID string) error {
    if !n.enabled() {
        return nil
    }

    recipients, err := n.recipients(ctx, []string{user1ID, user2ID})
    if err != nil {
        return err
    }

    var errs []error
    for _, r := range recipients {
        other := anonymousName
        for _, o := range recipients {
            if o.ProfileID != r.ProfileID {
                other = o.Name
            }
        }
        errs = append(errs, n.deliver(ctx, matchContent(other, n.opts.AppURL+"/matches"), r))
    }
    return errors.Join(errs...)
}

// GroupProposed invites every member of a freshly formed group
func (n *Notifier) GroupProposed(ctx context.Context, groupMatchID, title string, members []string) error {
    if !n.enabled() {
        return nil
    }

    recipients, err := n.recipients(ctx, members)
    if err != nil {
        return err
    }

    link := n.opts.AppURL + "/groups/" + groupMatchID
    var errs []error
    for _, r := range recipients {
        var others []string
        for _, o := range recipients {
            if o.ProfileID != r.ProfileID {
                others = append(others, o.Name)
            }
        }
        errs = append(errs, n.deliver(ctx, groupContent(title, others, link), r))
    }
    return errors.Join(errs...)
}

// recipients keeps the order of ids and skips unknown profiles
func (n *Notifier) recipients(ctx context.Context, ids []string) ([]Recipient, error) {
    contacts, err := n.contacts.GetContacts(ctx, ids)
    if err != nil {
        return nil, fmt.Errorf("failed to load contacts: %w", err)
    }

    byID := make(map[string]profile.Contact, len(contacts))
    for _, c := range contacts {
        byID[c.ProfileID] = c
    }

    recipients := make([]Recipient, 0, len(ids))
    for _, id := range ids {
        c, ok := byID[id]
        if !ok {
            log.Printf("⚠️ No contact data for profile %s", id)
            continue
        }
        recipients = append(recipients, Recipient{
            ProfileID: id,
            Name:      valueOr(c.DisplayName, anonymousName),
            Email:     valueOr(c.Email, ""),
            Phone:     valueOr(c.Phone, ""),
        })
    }
    return recipients, nil
}

func (n *Notifier) deliver(ctx context.Context, c content, to Recipient) error {
    var errs []error

    if n.opts.EmailEnabled && to.Email != "" {
        msg, err := c.Email(to)
        if err == nil {
            err = n.email.SendEmail(ctx, msg)
        }
        RecordDelivery(ChannelEmail, c.Kind, err)
        if err != nil {
            log.Printf("❌ Failed to email %s about %s: %v", to.ProfileID, c.Kind, err)
            errs = append(errs, err)
        }
    }

    if n.opts.SMSEnabled && to.Phone != "" {
        err := n.sms.SendSMS(ctx, c.SMS(to))
        RecordDelivery(ChannelSMS, c.Kind, err)
        if err != nil {
            log.Printf("❌ Failed to text %s about %s: %v", to.ProfileID, c.Kind, err)
            errs = append(errs, err)
        }
    }

    return errors.Join(errs...)
}

func valueOr(s *string, fallback string) string {
    if s == nil || strings.TrimSpace(*s) == "" {
        return fallback
    }
    return *s
}
