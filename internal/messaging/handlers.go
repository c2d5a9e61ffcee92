// internal/messaging/handlers.go

package messaging

import (
    "context"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

type Handler struct {
    service Service
    hub     *Hub
    limiter *RateLimiter
}

func NewHandler(service Service, hub *Hub) *Handler {
    return &Handler{
        service: service,
        hub:     hub,
        limiter: NewRateLimiter(20, 10*time.Second),
    }
}

// HandleWebSocket upgrades the connection and registers it with the hub
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
    profileID := auth.MustUserID(r)

    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        log.Printf("WebSocket upgrade failed for %s: %v", profileID, err)
        return
    }

    client := NewClient(h.hub, conn, profileID, h.service, h.limiter)
    if !h.hub.Register(client) {
        conn.Close()
        return
    }
    client.Start()
}

// RunMaintenance prunes rate limiter state until ctx is done
func (h *Handler) RunMaintenance(ctx context.Context) {
    ticker := time.NewTicker(time.Minute)
    defer ticker.Stop()

    for {
        select {
        case <-ticker.C:
            h.limiter.Cleanup()
        case <-ctx.Done():
            return
        }
    }
}

// ListRooms returns the caller's chats, most recent first
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
    rooms, err := h.service.ListRooms(r.Context(), auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get chats")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, rooms)
}

func (h *Handler) EnsureMatchRoom(w http.ResponseWriter, r *http.Request) {
    room, err := h.service.EnsureMatchRoom(r.Context(), mux.Vars(r)["matchId"], auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to open chat")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, room)
}

// GetMessages pages backwards with ?limit= and ?before=<RFC3339>
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
    limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

    var before *time.Time
    if raw := r.URL.Query().Get("before"); raw != "" {
        t, err := time.Parse(time.RFC3339Nano, raw)
        if err != nil {
            utils.RespondWithError(w, http.StatusBadRequest, "Invalid before timestamp")
            return
        }
        before = &t
    }

    messages, err := h.service.GetMessages(r.Context(), mux.Vars(r)["roomId"], auth.MustUserID(r), limit, before)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get messages")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, messages)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
    var req SendMessageRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    message, err := h.service.SendMessage(r.Context(), mux.Vars(r)["roomId"], auth.MustUserID(r), &req)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to send message")
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, message)
}
