// internal/profile/routes.go

package profile

import (
    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
)

// RegisterRoutes registers all profile routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    me := router.PathPrefix("/api/v1/profile").Subrouter()
    me.Use(authMiddleware.Authenticate)

    me.HandleFunc("", handler.GetMyProfile).Methods("GET")
    me.HandleFunc("", handler.UpdateMyProfile).Methods("PUT")
    me.HandleFunc("/onboarding", handler.SubmitOnboardingStep).Methods("POST")
    me.HandleFunc("/interests", handler.SetInterests).Methods("PUT")
    me.HandleFunc("/skills", handler.SetSkills).Methods("PUT")
    me.HandleFunc("/artists", handler.ImportArtists).Methods("POST")
    me.HandleFunc("/artists/{spotifyId}", handler.SetArtistVisibility).Methods("PUT")
    me.HandleFunc("/image", handler.UploadImage).Methods("POST")
    me.HandleFunc("/catalog", handler.GetCatalog).Methods("GET")

    users := router.PathPrefix("/api/v1/users").Subrouter()
    users.Use(authMiddleware.Authenticate)

    users.HandleFunc("/recommendations", handler.GetRecommendations).Methods("GET")
    users.HandleFunc("/{id:[0-9a-fA-F-]{36}}", handler.GetPublicProfile).Methods("GET")
}
