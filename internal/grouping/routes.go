// internal/grouping/routes.go

package grouping

import (
    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
)

// AdminRoles may trigger group formation
var AdminRoles = []string{"admin", "service_role"}

// RegisterRoutes registers all group match routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
    api := router.PathPrefix("/api/v1/groupmatches").Subrouter()
    api.Use(authMiddleware.Authenticate)

    api.HandleFunc("", handler.ListMine).Methods("GET")
    api.HandleFunc("", handler.Create).Methods("POST")
    api.HandleFunc("/open", handler.ListOpen).Methods("GET")
    api.HandleFunc("/{id}", handler.Get).Methods("GET")
    api.HandleFunc("/{id}/accept", handler.Accept).Methods("POST")
    api.HandleFunc("/{id}/decline", handler.Decline).Methods("POST")
    api.HandleFunc("/{id}/hike", handler.ChangeHike).Methods("PUT")

    admin := router.PathPrefix("/api/v1/admin/groups").Subrouter()
    admin.Use(authMiddleware.Authenticate)
    admin.Use(authMiddleware.RequireRole(AdminRoles...))

    admin.HandleFunc("/run", handler.RunFormation).Methods("POST")
}
