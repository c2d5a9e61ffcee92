// internal/assistant/routes.go

package assistant

import (
    "net/http"

    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
)

// RegisterRoutes registers the assistant endpoint next to the chat routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    router.Handle("/api/v1/chats/{roomId}/assistant",
        authMiddleware.Authenticate(http.HandlerFunc(handler.Ask))).Methods("POST")
}
