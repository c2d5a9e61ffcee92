// internal/messaging/models.go

package messaging

import (
    "encoding/json"
    "time"
)

// ChatRoom is either a 1:1 room owned by a match or a group room owned by a
// group match
type ChatRoom struct {
    ID            string     `json:"id" db:"id"`
    Name          *string    `json:"name,omitempty" db:"name"`
    IsGroup       bool       `json:"is_group" db:"is_group"`
    MatchID       *string    `json:"match_id,omitempty" db:"match_id"`
    LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
    CreatedAt     time.Time  `json:"created_at" db:"created_at"`

    // Joined fields
    Participants []Participant `json:"participants,omitempty"`
}

// Participant links a profile to a chat room
type Participant struct {
    ID          string    `json:"id" db:"id"`
    ChatRoomID  string    `json:"chat_room_id" db:"chat_room_id"`
    ProfileID   string    `json:"profile_id" db:"profile_id"`
    CreatedAt   time.Time `json:"created_at" db:"created_at"`
    DisplayName *string   `json:"display_name,omitempty" db:"display_name"`
    ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
}

// Message is one chat message. Assistant messages carry is_ai and structured
// metadata such as recommended hikes.
type Message struct {
    ID         string          `json:"id" db:"id"`
    ChatRoomID string          `json:"chat_room_id" db:"chat_room_id"`
    SenderID   string          `json:"sender_id" db:"sender_id"`
    Content    string          `json:"content" db:"content"`
    IsAI       bool            `json:"is_ai" db:"is_ai"`
    Metadata   json.RawMessage `json:"metadata,omitempty" db:"metadata"`
    CreatedAt  time.Time       `json:"created_at" db:"created_at"`

    Sender *Sender `json:"sender,omitempty"`
}

// Sender is the public part of the author's profile
type Sender struct {
    ID          string  `json:"id" db:"id"`
    DisplayName *string `json:"displayName,omitempty" db:"display_name"`
    ImageURL    *string `json:"imageUrl,omitempty" db:"image_url"`
}

const EventNewMessage = "new_message"

// Event is the envelope published on the broadcast channel
type Event struct {
    Event   string         `json:"event"`
    Payload MessagePayload `json:"payload"`
}

// MessagePayload is the wire form of a new message
type MessagePayload struct {
    ID         string          `json:"id"`
    Content    string          `json:"content"`
    ChatRoomID string          `json:"chatRoomId"`
    SenderID   string          `json:"senderId"`
    Sender     *Sender         `json:"sender,omitempty"`
    CreatedAt  time.Time       `json:"createdAt"`
    IsAI       bool            `json:"isAI"`
    Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// NewMessageEvent wraps a stored message for broadcasting
func NewMessageEvent(m *Message) Event {
    return Event{
        Event: EventNewMessage,
        Payload: MessagePayload{
            ID:         m.ID,
            Content:    m.Content,
            ChatRoomID: m.ChatRoomID,
            SenderID:   m.SenderID,
            Sender:     m.Sender,
            CreatedAt:  m.CreatedAt,
            IsAI:       m.IsAI,
            Metadata:   m.Metadata,
        },
    }
}

// WSMessage is a frame sent by a websocket client
type WSMessage struct {
    Type string          `json:"type"`
    Data json.RawMessage `json:"data"`
}

const WSTypeMessage = "message"

// WSOutgoingMessage is the data of a client "message" frame
type WSOutgoingMessage struct {
    ChatRoomID string `json:"chatRoomId"`
    Content    string `json:"content"`
}
