// internal/messaging/service.go

package messaging

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/hyking/hyking-backend/internal/common/errs"
    "github.com/hyking/hyking-backend/internal/matching"
)

var (
    ErrRoomNotFound    = fmt.Errorf("chat room %w", errs.ErrNotFound)
    ErrNotParticipant  = fmt.Errorf("%w: not a participant in this chat", errs.ErrPermissionDenied)
    ErrEmptyMessage    = fmt.Errorf("%w: message content is empty", errs.ErrInvalidArgument)
    ErrInvalidMetadata = fmt.Errorf("%w: metadata must be a JSON object", errs.ErrInvalidArgument)
    ErrMatchInactive   = fmt.Errorf("%w: match is no longer active", errs.ErrConflict)
)

const (
    defaultPageSize = 50
    maxPageSize     = 200
)

// MatchReader resolves a match for one of its parties
type MatchReader interface {
    GetMatch(ctx context.Context, matchID, userID string) (*matching.Match, error)
}

// Publisher delivers events to connected clients. Delivery is best effort.
type Publisher interface {
    Publish(ctx context.Context, event Event) error
}

type Service interface {
    EnsureMatchRoom(ctx context.Context, matchID, profileID string) (*ChatRoom, error)
    EnsureParticipant(ctx context.Context, roomID, profileID string) error

    SendMessage(ctx context.Context, roomID, senderID string, req *SendMessageRequest) (*Message, error)
    SendAssistantMessage(ctx context.Context, roomID, content string, metadata interface{}) (*Message, error)

    ListRooms(ctx context.Context, profileID string) ([]*ChatRoom, error)
    GetMessages(ctx context.Context, roomID, profileID string, limit int, before *time.Time) ([]*Message, error)
    IsParticipant(ctx context.Context, roomID, profileID string) (bool, error)
    ParticipantIDs(ctx context.Context, roomID string) ([]string, error)
}

type service struct {
    repo        Repository
    matches     MatchReader
    publisher   Publisher
    assistantID string
}

func NewService(repo Repository, matches MatchReader, publisher Publisher, assistantID string) Service {
    return &service{
        repo:        repo,
        matches:     matches,
        publisher:   publisher,
        assistantID: assistantID,
    }
}

// EnsureMatchRoom returns the match's 1:1 room, creating it and both
// participants on first use
func (s *service) EnsureMatchRoom(ctx context.Context, matchID, profileID string) (*ChatRoom, error) {
    match, err := s.matches.GetMatch(ctx, matchID, profileID)
    if err != nil {
        return nil, err
    }
    if !match.IsActive {
        return nil, ErrMatchInactive
    }

    var roomID string
    err = s.repo.WithTx(ctx, func(repo Repository) error {
        id, err := repo.UpsertMatchRoom(ctx, match.ID)
        if err != nil {
            return err
        }
        roomID = id

        for _, p := range []string{match.User1ID, match.User2ID} {
            if err := repo.UpsertParticipant(ctx, roomID, p); err != nil {
                return err
            }
        }
        return nil
    })
    if err != nil {
        return nil, err
    }

    return s.repo.GetRoom(ctx, roomID)
}

func (s *service) EnsureParticipant(ctx context.Context, roomID, profileID string) error {
    if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
        return err
    }
    return s.repo.UpsertParticipant(ctx, roomID, profileID)
}

func (s *service) SendMessage(ctx context.Context, roomID, senderID string, req *SendMessageRequest) (*Message, error) {
    content := strings.TrimSpace(req.Content)
    if content == "" {
        return nil, ErrEmptyMessage
    }
    if len(req.Metadata) > 0 && !isJSONObject(req.Metadata) {
        return nil, ErrInvalidMetadata
    }

    ok, err := s.repo.IsParticipant(ctx, roomID, senderID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrNotParticipant
    }

    return s.send(ctx, &Message{
        ChatRoomID: roomID,
        SenderID:   senderID,
        Content:    content,
        Metadata:   req.Metadata,
    })
}

// SendAssistantMessage posts as the assistant profile with is_ai set
func (s *service) SendAssistantMessage(ctx context.Context, roomID, content string, metadata interface{}) (*Message, error) {
    var raw json.RawMessage
    if metadata != nil {
        data, err := json.Marshal(metadata)
        if err != nil {
            return nil, fmt.Errorf("failed to encode metadata: %w", err)
        }
        raw = data
    }

    return s.send(ctx, &Message{
        ChatRoomID: roomID,
        SenderID:   s.assistantID,
        Content:    content,
        IsAI:       true,
        Metadata:   raw,
    })
}

// send stores the message and bumps the room in one transaction, then
// publishes it
func (s *service) send(ctx context.Context, message *Message) (*Message, error) {
    message.ID = uuid.New().String()

    err := s.repo.WithTx(ctx, func(repo Repository) error {
        if err := repo.InsertMessage(ctx, message); err != nil {
            return err
        }
        return repo.TouchRoom(ctx, message.ChatRoomID, message.CreatedAt)
    })
    if err != nil {
        return nil, err
    }
    RecordMessage(message.IsAI)

    sender, err := s.repo.GetSender(ctx, message.SenderID)
    if err != nil {
        log.Printf("Failed to load sender %s: %v", message.SenderID, err)
        sender = &Sender{ID: message.SenderID}
    }
    message.Sender = sender

    if s.publisher != nil {
        if err := s.publisher.Publish(ctx, NewMessageEvent(message)); err != nil {
            log.Printf("Failed to publish message %s: %v", message.ID, err)
        }
    }

    return message, nil
}

func (s *service) ListRooms(ctx context.Context, profileID string) ([]*ChatRoom, error) {
    return s.repo.ListRooms(ctx, profileID)
}

func (s *service) GetMessages(ctx context.Context, roomID, profileID string, limit int, before *time.Time) ([]*Message, error) {
    ok, err := s.repo.IsParticipant(ctx, roomID, profileID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrNotParticipant
    }

    if limit <= 0 {
        limit = defaultPageSize
    }
    if limit > maxPageSize {
        limit = maxPageSize
    }
    return s.repo.ListMessages(ctx, roomID, limit, before)
}

func (s *service) IsParticipant(ctx context.Context, roomID, profileID string) (bool, error) {
    return s.repo.IsParticipant(ctx, roomID, profileID)
}

func (s *service) ParticipantIDs(ctx context.Context, roomID string) ([]string, error) {
    return s.repo.ParticipantIDs(ctx, roomID)
}

func isJSONObject(raw json.RawMessage) bool {
    var obj map[string]interface{}
    return json.Unmarshal(raw, &obj) == nil && obj != nil
}
