// internal/messaging/routes.go

package messaging

import (
    "net/http"

    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
)

// RegisterRoutes registers the chat routes and the websocket endpoint
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    router.Handle("/ws", authMiddleware.Authenticate(http.HandlerFunc(handler.HandleWebSocket))).Methods("GET")

    api := router.PathPrefix("/api/v1/chats").Subrouter()
    api.Use(authMiddleware.Authenticate)

    api.HandleFunc("", handler.ListRooms).Methods("GET")
    api.HandleFunc("/match/{matchId}", handler.EnsureMatchRoom).Methods("POST")
    api.HandleFunc("/{roomId}/messages", handler.GetMessages).Methods("GET")
    api.HandleFunc("/{roomId}/messages", handler.SendMessage).Methods("POST")
}
