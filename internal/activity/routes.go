// internal/activity/routes.go

package activity

import (
    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/activities").Subrouter()
    api.Use(authMiddleware.Authenticate)

    api.HandleFunc("/feed", handler.GetFeed).Methods("GET")
    api.HandleFunc("/{id:[0-9]+}", handler.GetActivity).Methods("GET")
}
