// internal/music/handlers.go

package music

import (
    "net/http"

    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

type Handler struct {
    service Service
}

func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

// Authorize returns the Spotify consent URL for the caller
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
    url, err := h.service.AuthURL(r.Context(), auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to start Spotify authorization")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Callback is hit by the browser redirect from Spotify, so it carries no
// bearer token; the state identifies the profile
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
    query := r.URL.Query()
    if query.Get("error") != "" {
        utils.RespondWithServiceError(w, ErrAccessDenied, "Spotify authorization failed")
        return
    }

    profile, err := h.service.HandleCallback(r.Context(), query.Get("state"), query.Get("code"))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to connect Spotify")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}
