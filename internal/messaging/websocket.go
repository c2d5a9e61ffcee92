// internal/messaging/websocket.go

package messaging

import (
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "sync"
    "time"

    "github.com/gorilla/websocket"
)

var (
    errRateLimited    = errors.New("too many messages, slow down")
    errMalformedFrame = errors.New("malformed frame")
)

// Upgrader for WebSocket connections
var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    CheckOrigin: func(r *http.Request) bool {
        // Mobile clients send no Origin; the bearer token is the gate
        return true
    },
}

// WSError represents a WebSocket error message
type WSError struct {
    Code    string `json:"code"`
    Message string `json:"message"`
}

// WSResponse wraps a direct answer to a client frame
type WSResponse struct {
    Type      string          `json:"type"`
    Success   bool            `json:"success"`
    Data      json.RawMessage `json:"data,omitempty"`
    Error     *WSError        `json:"error,omitempty"`
    Timestamp time.Time       `json:"timestamp"`
}

// CreateWSResponse creates a WebSocket response
func CreateWSResponse(msgType string, data interface{}, err error) WSResponse {
    response := WSResponse{
        Type:      msgType,
        Success:   err == nil,
        Timestamp: time.Now(),
    }

    if err != nil {
        response.Error = &WSError{
            Code:    "ERROR",
            Message: err.Error(),
        }
    } else if data != nil {
        response.Data = mustMarshal(data)
    }

    return response
}

func mustMarshal(v interface{}) json.RawMessage {
    data, err := json.Marshal(v)
    if err != nil {
        log.Printf("Failed to marshal data: %v", err)
        return json.RawMessage(`{}`)
    }
    return data
}

// RateLimiter is a sliding window limiter keyed by profile
type RateLimiter struct {
    mu       sync.Mutex
    requests map[string][]time.Time
    limit    int
    window   time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
    return &RateLimiter{
        requests: make(map[string][]time.Time),
        limit:    limit,
        window:   window,
    }
}

// Allow checks if a request is allowed
func (r *RateLimiter) Allow(key string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()

    now := time.Now()
    valid := r.requests[key][:0]
    for _, t := range r.requests[key] {
        if now.Sub(t) < r.window {
            valid = append(valid, t)
        }
    }

    if len(valid) >= r.limit {
        r.requests[key] = valid
        return false
    }

    r.requests[key] = append(valid, now)
    return true
}

// Cleanup removes keys without recent requests
func (r *RateLimiter) Cleanup() {
    r.mu.Lock()
    defer r.mu.Unlock()

    now := time.Now()
    for key, requests := range r.requests {
        if len(requests) == 0 || now.Sub(requests[len(requests)-1]) >= r.window {
            delete(r.requests, key)
        }
    }
}
