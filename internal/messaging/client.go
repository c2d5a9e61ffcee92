// internal/messaging/client.go

package messaging

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    "github.com/gorilla/websocket"
)

const (
    // Time allowed to write a message to the peer
    writeWait = 10 * time.Second

    // Time allowed to read the next pong message from the peer
    pongWait = 60 * time.Second

    // Send pings to peer with this period
    pingPeriod = (pongWait * 9) / 10

    // Maximum message size allowed from peer
    maxMessageSize = 16 * 1024

    // Outbound frames buffered per client
    sendBuffer = 256
)

// Client is one websocket connection of a profile
type Client struct {
    hub       *Hub
    conn      *websocket.Conn
    send      chan []byte
    profileID string
    service   Service
    limiter   *RateLimiter

    mu     sync.Mutex
    closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, profileID string, service Service, limiter *RateLimiter) *Client {
    return &Client{
        hub:       hub,
        conn:      conn,
        send:      make(chan []byte, sendBuffer),
        profileID: profileID,
        service:   service,
        limiter:   limiter,
    }
}

func (c *Client) Start() {
    go c.writePump()
    go c.readPump()
}

// Close stops the write pump, which closes the connection
func (c *Client) Close() {
    c.mu.Lock()
    defer c.mu.Unlock()
    if !c.closed {
        c.closed = true
        close(c.send)
    }
}

// enqueue queues a frame without blocking. It returns false when the buffer
// is full.
func (c *Client) enqueue(data []byte) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.closed {
        return true
    }
    select {
    case c.send <- data:
        return true
    default:
        return false
    }
}

func (c *Client) readPump() {
    defer func() {
        c.hub.Unregister(c)
        c.conn.Close()
    }()

    c.conn.SetReadLimit(maxMessageSize)
    c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        c.conn.SetReadDeadline(time.Now().Add(pongWait))
        return nil
    })

    for {
        _, message, err := c.conn.ReadMessage()
        if err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
                log.Printf("WebSocket error: %v", err)
            }
            break
        }

        c.processMessage(message)
    }
}

func (c *Client) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        c.conn.Close()
    }()

    for {
        select {
        case message, ok := <-c.send:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }

            if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
                return
            }

        case <-ticker.C:
            c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}

// processMessage handles a frame sent by the client. Sent messages come back
// through the broadcast like any other message; only errors are answered
// directly.
func (c *Client) processMessage(data []byte) {
    if c.limiter != nil && !c.limiter.Allow(c.profileID) {
        c.reply(CreateWSResponse("error", nil, errRateLimited))
        return
    }

    var msg WSMessage
    if err := json.Unmarshal(data, &msg); err != nil {
        c.reply(CreateWSResponse("error", nil, errMalformedFrame))
        return
    }

    switch msg.Type {
    case WSTypeMessage:
        var out WSOutgoingMessage
        if err := json.Unmarshal(msg.Data, &out); err != nil {
            c.reply(CreateWSResponse(WSTypeMessage, nil, errMalformedFrame))
            return
        }

        ctx, cancel := context.WithTimeout(context.Background(), writeWait)
        defer cancel()
        if _, err := c.service.SendMessage(ctx, out.ChatRoomID, c.profileID, &SendMessageRequest{Content: out.Content}); err != nil {
            c.reply(CreateWSResponse(WSTypeMessage, nil, err))
        }

    default:
        log.Printf("Unknown websocket frame type: %s", msg.Type)
    }
}

func (c *Client) reply(response WSResponse) {
    data, err := json.Marshal(response)
    if err != nil {
        return
    }
    c.enqueue(data)
}
