// internal/grouping/handlers.go

package grouping

import (
    "net/http"
    "strconv"

    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

// Handler handles HTTP requests for group matches
type Handler struct {
    service Service
    runner  *Runner
}

// NewHandler creates a new grouping handler
func NewHandler(service Service, runner *Runner) *Handler {
    return &Handler{service: service, runner: runner}
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
    groups, err := h.service.ListGroupMatches(r.Context(), auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get group matches")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, groups)
}

// ListOpen is the "All Groups" view late joiners pick from
func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
    limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

    groups, err := h.service.ListOpenGroupMatches(r.Context(), limit)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get group matches")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, groups)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
    var req CreateGroupRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    group, err := h.service.CreateGroupForHike(r.Context(), auth.MustUserID(r), req.ActivityID)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to create group")
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, group)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
    group, err := h.service.GetGroupMatch(r.Context(), mux.Vars(r)["id"])
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get group match")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
    group, err := h.service.AcceptGroupMatch(r.Context(), mux.Vars(r)["id"], auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to accept group match")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
    group, err := h.service.DeclineGroupMatch(r.Context(), mux.Vars(r)["id"], auth.MustUserID(r))
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to decline group match")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, group)
}

func (h *Handler) ChangeHike(w http.ResponseWriter, r *http.Request) {
    var req ChangeHikeRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    group, err := h.service.ChangeHike(r.Context(), mux.Vars(r)["id"], auth.MustUserID(r), req.ActivityID)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to change hike")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, group)
}

// RunFormation triggers a formation pass and waits for its summary
func (h *Handler) RunFormation(w http.ResponseWriter, r *http.Request) {
    summary, err := h.runner.Run(r.Context())
    if err != nil {
        utils.RespondWithServiceError(w, err, "Group formation failed")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, summary)
}
