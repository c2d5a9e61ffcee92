// internal/assistant/handlers.go

package assistant

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

// Ask posts the caller's question to the room and the assistant's answer after it
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
    var req AskRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    resp, err := h.service.Ask(r.Context(), mux.Vars(r)["roomId"], auth.MustUserID(r), req.Content)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to ask assistant")
        return
    }

    utils.RespondWithJSON(w, http.StatusCreated, resp)
}
