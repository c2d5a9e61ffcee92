// internal/assistant/service.go

package assistant

import (
    "context"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/hyking/hyking-backend/internal/activity"
    "github.com/hyking/hyking-backend/internal/common/errs"
    "github.com/hyking/hyking-backend/internal/messaging"
)

var ErrEmptyQuestion = fmt.Errorf("%w: question is empty", errs.ErrInvalidArgument)

const (
    historySize = 10
    catalogSize = 500
)

const chatPrompt = `You are a friendly assistant in a hiking app where people find hiking partners.
Answer casually and helpfully in a few sentences.

Conversation so far:
%s
User: %s
Assistant:`

// Chat is the part of messaging the assistant posts through
type Chat interface {
    SendMessage(ctx context.Context, roomID, senderID string, req *messaging.SendMessageRequest) (*messaging.Message, error)
    SendAssistantMessage(ctx context.Context, roomID, content string, metadata interface{}) (*messaging.Message, error)
    GetMessages(ctx context.Context, roomID, profileID string, limit int, before *time.Time) ([]*messaging.Message, error)
}

// Catalog lists the hikes that can be recommended
type Catalog interface {
    ListOpen(ctx context.Context, limit int) ([]*activity.Activity, error)
}

type Service interface {
    Ask(ctx context.Context, roomID, profileID, text string) (*AskResponse, error)
}

type service struct {
    chat    Chat
    catalog Catalog
    llm     LLM
}

// NewService creates the assistant. llm may be nil, in which case only the
// keyword rules and canned replies are used.
func NewService(chat Chat, catalog Catalog, llm LLM) Service {
    return &service{chat: chat, catalog: catalog, llm: llm}
}

// Ask stores the question in the room, then answers it as the assistant
func (s *service) Ask(ctx context.Context, roomID, profileID, text string) (*AskResponse, error) {
    text = strings.TrimSpace(text)
    if text == "" {
        return nil, ErrEmptyQuestion
    }

    history := s.history(ctx, roomID, profileID)

    question, err := s.chat.SendMessage(ctx, roomID, profileID, &messaging.SendMessageRequest{Content: text})
    if err != nil {
        return nil, err
    }

    intent := ClassifyIntent(ctx, s.llm, text)
    RecordRequest(intent)

    var reply *messaging.Message
    if intent == IntentHikeRecommendation {
        reply, err = s.recommend(ctx, roomID, text)
    } else {
        reply, err = s.converse(ctx, roomID, history, text)
    }
    if err != nil {
        return nil, err
    }

    return &AskResponse{Intent: intent, Question: question, Reply: reply}, nil
}

func (s *service) recommend(ctx context.Context, roomID, text string) (*messaging.Message, error) {
    filters := ExtractFilters(ctx, s.llm, text)

    activities, err := s.catalog.ListOpen(ctx, catalogSize)
    if err != nil {
        return nil, fmt.Errorf("%w: failed to load hikes: %v", errs.ErrInternal, err)
    }

    hikes := Recommend(filters, activities, TopHikes)
    if len(hikes) == 0 {
        return s.chat.SendAssistantMessage(ctx, roomID,
            "No hikes matched your wishes. Try a different region or difficulty.",
            RecommendationMetadata{Hikes: []Recommendation{}, Filters: filters})
    }

    return s.chat.SendAssistantMessage(ctx, roomID, describeHikes(hikes),
        RecommendationMetadata{Hikes: hikes, Filters: filters})
}

func (s *service) converse(ctx context.Context, roomID string, history []*messaging.Message, text string) (*messaging.Message, error) {
    answer := ""
    if s.llm != nil {
        generated, err := s.llm.Generate(ctx, fmt.Sprintf(chatPrompt, formatHistory(history), text))
        if err != nil {
            log.Printf("⚠️ Assistant reply unavailable: %v", err)
        } else {
            answer = generated
        }
    }
    if answer == "" {
        answer = fallbackReply
    }

    return s.chat.SendAssistantMessage(ctx, roomID, answer, nil)
}

// history returns recent messages oldest first. It is best effort.
func (s *service) history(ctx context.Context, roomID, profileID string) []*messaging.Message {
    if s.llm == nil {
        return nil
    }
    messages, err := s.chat.GetMessages(ctx, roomID, profileID, historySize, nil)
    if err != nil {
        return nil
    }
    for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
        messages[i], messages[j] = messages[j], messages[i]
    }
    return messages
}

const fallbackReply = "I can't chat right now, but I can still find hikes. " +
    "Ask me something like \"recommend an easy hike in the Alps\"."

func formatHistory(messages []*messaging.Message) string {
    if len(messages) == 0 {
        return "(no earlier messages)"
    }
    var sb strings.Builder
    for _, m := range messages {
        role := "User"
        if m.IsAI {
            role = "Assistant"
        }
        fmt.Fprintf(&sb, "%s: %s\n", role, m.Content)
    }
    return strings.TrimRight(sb.String(), "\n")
}

func describeHikes(hikes []Recommendation) string {
    var sb strings.Builder
    sb.WriteString("Here are some hikes you might like:")
    for i, h := range hikes {
        fmt.Fprintf(&sb, "\n%d. %s", i+1, h.Title)
        if h.Region != "" {
            fmt.Fprintf(&sb, " (%s)", h.Region)
        }
    }
    return sb.String()
}
