// internal/activity/handlers.go

package activity

import (
    "net/http"
    "strconv"

    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

type Handler struct {
    service      Service
    feedPageSize int
}

func NewHandler(service Service, feedPageSize int) *Handler {
    return &Handler{service: service, feedPageSize: feedPageSize}
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
    id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid activity ID")
        return
    }

    activity, err := h.service.GetActivity(r.Context(), id)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get activity")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, activity)
}

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
    limit := h.feedPageSize
    if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
        limit = l
    }

    activities, err := h.service.Feed(r.Context(), auth.MustUserID(r), limit)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get activities")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
        "activities": activities,
        "count":      len(activities),
    })
}
