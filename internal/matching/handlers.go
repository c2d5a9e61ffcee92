// internal/matching/handlers.go

package matching

import (
    "net/http"

    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

type Handler struct {
    service Service
}

func NewHandler(service Service) *Handler {
    return &Handler{service: service}
}

func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
    var req SwipeRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    result, err := h.service.RecordSwipe(r.Context(), auth.MustUserID(r), req.ReceiverID, Action(req.Action))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to record swipe")
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *Handler) ActivitySwipe(w http.ResponseWriter, r *http.Request) {
    var req ActivitySwipeRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    swipe, err := h.service.RecordActivitySwipe(r.Context(), auth.MustUserID(r), req.ActivityID, Action(req.Action))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to record activity swipe")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, swipe)
}

func (h *Handler) ListActivitySwipes(w http.ResponseWriter, r *http.Request) {
    swipes, err := h.service.ListActivitySwipes(r.Context(), auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get activity swipes")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, swipes)
}

func (h *Handler) LikesReceived(w http.ResponseWriter, r *http.Request) {
    likes, err := h.service.GetLikesReceived(r.Context(), auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get likes")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, likes)
}

func (h *Handler) LikesSent(w http.ResponseWriter, r *http.Request) {
    likes, err := h.service.GetLikesSent(r.Context(), auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get likes")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, likes)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
    matches, err := h.service.GetMatches(r.Context(), auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get matches")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, matches)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
    match, err := h.service.GetMatch(r.Context(), mux.Vars(r)["id"], auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get match")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, match)
}

func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
    if err := h.service.Unmatch(r.Context(), mux.Vars(r)["id"], auth.MustUserID(r)); err != nil {
        utils.RespondWithServiceError(w, err, "Failed to unmatch")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]string{
        "message": "Unmatched successfully",
    })
}
