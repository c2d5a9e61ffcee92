// internal/notification/templates.go

package notification

import (
    "bytes"
    "fmt"
    "html/template"
    "strings"
)

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #2f6b3a; color: white; padding: 24px; text-align: center; border-radius: 10px 10px 0 0;">
        <h1>{{.Title}}</h1>
    </div>
    <div style="padding: 24px; border: 1px solid #e0e0e0; border-radius: 0 0 10px 10px;">
        <p>Hi {{.Name}},</p>
        <p>{{.Body}}</p>
        {{if .Members}}<ul>{{range .Members}}<li>{{.}}</li>{{end}}</ul>{{end}}
        <p><a href="{{.Link}}">Open Hyking</a></p>
    </div>
</body>
</html>`

var emailTemplate = template.Must(template.New("email").Parse(emailLayout))

// content is what one notification says, independent of the channel
type content struct {
    Kind    Kind
    Title   string
    Body    string
    Members []string
    Link    string
}

func matchContent(other, link string) content {
    return content{
        Kind:  KindMatchCreated,
        Title: "It's a match! 🥾",
        Body:  fmt.Sprintf("You and %s liked each other. Say hi and plan a hike together.", other),
        Link:  link,
    }
}

func groupContent(title string, members []string, link string) content {
    return content{
        Kind:    KindGroupProposed,
        Title:   "A hiking group is waiting for you ⛰️",
        Body:    fmt.Sprintf("We put together a group for %s. Accept the invitation to join the group chat.", title),
        Members: members,
        Link:    link,
    }
}

// Email renders the message for one recipient
func (c content) Email(to Recipient) (*EmailMessage, error) {
    var html bytes.Buffer
    err := emailTemplate.Execute(&html, map[string]interface{}{
        "Title":   c.Title,
        "Name":    to.Name,
        "Body":    c.Body,
        "Members": c.Members,
        "Link":    c.Link,
    })
    if err != nil {
        return nil, fmt.Errorf("failed to render email: %w", err)
    }

    plain := fmt.Sprintf("Hi %s,\n\n%s\n", to.Name, c.Body)
    if len(c.Members) > 0 {
        plain += "\nMembers: " + strings.Join(c.Members, ", ") + "\n"
    }
    plain += "\n" + c.Link

    return &EmailMessage{
        To:        to.Email,
        ToName:    to.Name,
        Subject:   c.Title,
        PlainText: plain,
        HTML:      html.String(),
    }, nil
}

// SMS renders the short text version
func (c content) SMS(to Recipient) *SMSMessage {
    return &SMSMessage{
        To:   to.Phone,
        Body: fmt.Sprintf("Hyking: %s %s", c.Body, c.Link),
    }
}
