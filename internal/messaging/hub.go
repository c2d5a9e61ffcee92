// internal/messaging/hub.go

package messaging

import (
    "context"
    "errors"
    "log"
    "sync"
)

var errHubBusy = errors.New("hub broadcast queue is full")

// ParticipantLister resolves who should receive a room's events
type ParticipantLister interface {
    ParticipantIDs(ctx context.Context, roomID string) ([]string, error)
}

// Hub maintains active websocket connections. All client bookkeeping and
// fan-out happens on the Run goroutine.
type Hub struct {
    // Registered clients, one per profile
    clients    map[string]*Client
    clientsMux sync.RWMutex

    broadcast  chan Event
    register   chan *Client
    unregister chan *Client
    done       chan struct{}

    participants ParticipantLister
}

func NewHub(participants ParticipantLister) *Hub {
    return &Hub{
        clients:      make(map[string]*Client),
        broadcast:    make(chan Event, 256),
        register:     make(chan *Client),
        unregister:   make(chan *Client),
        done:         make(chan struct{}),
        participants: participants,
    }
}

// Run processes registrations and events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
    defer h.cleanup()

    for {
        select {
        case client := <-h.register:
            h.registerClient(client)

        case client := <-h.unregister:
            h.unregisterClient(client)

        case event := <-h.broadcast:
            h.deliver(ctx, event)

        case <-ctx.Done():
            return
        }
    }
}

// Publish queues an event for the clients connected to this instance
func (h *Hub) Publish(ctx context.Context, event Event) error {
    select {
    case h.broadcast <- event:
        return nil
    case <-ctx.Done():
        return ctx.Err()
    default:
        return errHubBusy
    }
}

func (h *Hub) registerClient(client *Client) {
    h.clientsMux.Lock()
    defer h.clientsMux.Unlock()

    // Replace an older connection of the same profile
    if old, exists := h.clients[client.profileID]; exists && old != client {
        old.Close()
    } else if !exists {
        activeConnections.Inc()
    }
    h.clients[client.profileID] = client

    log.Printf("Profile %s connected. Total clients: %d", client.profileID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
    h.clientsMux.Lock()
    defer h.clientsMux.Unlock()

    if current, exists := h.clients[client.profileID]; exists && current == client {
        delete(h.clients, client.profileID)
        activeConnections.Dec()
        log.Printf("Profile %s disconnected. Total clients: %d", client.profileID, len(h.clients))
    }
    client.Close()
}

// deliver sends the event to every connected participant of its room
func (h *Hub) deliver(ctx context.Context, event Event) {
    recipients, err := h.participants.ParticipantIDs(ctx, event.Payload.ChatRoomID)
    if err != nil {
        log.Printf("Failed to resolve participants of %s: %v", event.Payload.ChatRoomID, err)
        return
    }

    data, err := encodeEvent(event)
    if err != nil {
        log.Printf("Error marshalling event: %v", err)
        return
    }

    for _, profileID := range recipients {
        h.clientsMux.RLock()
        client, ok := h.clients[profileID]
        h.clientsMux.RUnlock()
        if !ok {
            continue
        }

        if !client.enqueue(data) {
            // Slow consumer, drop the connection
            h.unregisterClient(client)
        }
    }
}

// Register hands a connected client to the hub
func (h *Hub) Register(client *Client) bool {
    select {
    case h.register <- client:
        return true
    case <-h.done:
        return false
    }
}

// Unregister removes a client, it is a no-op once the hub stopped
func (h *Hub) Unregister(client *Client) {
    select {
    case h.unregister <- client:
    case <-h.done:
    }
}

func (h *Hub) cleanup() {
    close(h.done)

    h.clientsMux.Lock()
    defer h.clientsMux.Unlock()

    for id, client := range h.clients {
        client.Close()
        delete(h.clients, id)
        activeConnections.Dec()
    }
}

// IsOnline reports whether the profile has a live connection here
func (h *Hub) IsOnline(profileID string) bool {
    h.clientsMux.RLock()
    defer h.clientsMux.RUnlock()

    _, exists := h.clients[profileID]
    return exists
}

func (h *Hub) ActiveConnections() int {
    h.clientsMux.RLock()
    defer h.clientsMux.RUnlock()
    return len(h.clients)
}
