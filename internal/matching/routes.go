// internal/matching/routes.go

package matching

import (
    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    users := router.PathPrefix("/api/v1/users").Subrouter()
    users.Use(authMiddleware.Authenticate)

    // Profile swipes
    users.HandleFunc("/swipes", handler.Swipe).Methods("POST")
    users.HandleFunc("/likes/received", handler.LikesReceived).Methods("GET")
    users.HandleFunc("/likes/sent", handler.LikesSent).Methods("GET")

    // Matches
    matches := router.PathPrefix("/api/v1/matches").Subrouter()
    matches.Use(authMiddleware.Authenticate)

    matches.HandleFunc("", handler.GetMatches).Methods("GET")
    matches.HandleFunc("/{id}", handler.GetMatch).Methods("GET")
    matches.HandleFunc("/{id}/unmatch", handler.Unmatch).Methods("POST")

    // Activity swipes
    activities := router.PathPrefix("/api/v1/activities").Subrouter()
    activities.Use(authMiddleware.Authenticate)

    activities.HandleFunc("/swipes", handler.ActivitySwipe).Methods("POST")
    activities.HandleFunc("/swipes", handler.ListActivitySwipes).Methods("GET")
}
