// internal/music/routes.go

package music

import (
    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    router.HandleFunc("/api/v1/spotify/callback", handler.Callback).Methods("GET")

    api := router.PathPrefix("/api/v1/spotify").Subrouter()
    api.Use(authMiddleware.Authenticate)
    api.HandleFunc("/authorize", handler.Authorize).Methods("GET")
}
