// internal/messaging/dto.go

package messaging

import "encoding/json"

// SendMessageRequest is the body of POST /chats/{roomId}/messages
type SendMessageRequest struct {
    Content  string          `json:"content" validate:"required,max=4000"`
    Metadata json.RawMessage `json:"metadata,omitempty"`
}
