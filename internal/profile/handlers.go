// internal/profile/handlers.go

package profile

import (
    "encoding/json"
    "net/http"
    "strconv"

    "github.com/gorilla/mux"

    "github.com/hyking/hyking-backend/internal/auth"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

// Handler handles HTTP requests for profiles
type Handler struct {
    service      Service
    feedPageSize int
}

// NewHandler creates a new profile handler
func NewHandler(service Service, feedPageSize int) *Handler {
    return &Handler{service: service, feedPageSize: feedPageSize}
}

// GetMyProfile returns the caller's profile, creating it on first access
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
    userID := auth.MustUserID(r)
    email, _ := auth.GetEmailFromContext(r.Context())

    profile, err := h.service.EnsureProfile(r.Context(), userID, email)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get profile")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

// UpdateMyProfile applies a partial update
func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
    var req UpdateProfileRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    profile, err := h.service.UpdateProfile(r.Context(), auth.MustUserID(r), &req)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to update profile")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

// SubmitOnboardingStep handles one wizard step
func (h *Handler) SubmitOnboardingStep(w http.ResponseWriter, r *http.Request) {
    var req OnboardingStepRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    step, err := DecodeStep(req.Kind, req.Payload)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Invalid onboarding step")
        return
    }

    profile, err := h.service.SubmitStep(r.Context(), auth.MustUserID(r), step)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to save onboarding step")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetInterests(w http.ResponseWriter, r *http.Request) {
    var req SetInterestsRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    profile, err := h.service.SetInterests(r.Context(), auth.MustUserID(r), req.InterestIDs)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to update interests")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetSkills(w http.ResponseWriter, r *http.Request) {
    var req SetSkillsRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    profile, err := h.service.SetSkills(r.Context(), auth.MustUserID(r), req.Skills)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to update skills")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) ImportArtists(w http.ResponseWriter, r *http.Request) {
    var req ImportArtistsRequest
    if err := utils.DecodeAndValidate(r, &req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, err.Error())
        return
    }

    profile, err := h.service.ImportArtists(r.Context(), auth.MustUserID(r), req.Artists)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to import artists")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetArtistVisibility(w http.ResponseWriter, r *http.Request) {
    spotifyID := mux.Vars(r)["spotifyId"]

    var req ArtistVisibilityRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
        return
    }

    if err := h.service.SetArtistHidden(r.Context(), auth.MustUserID(r), spotifyID, req.Hidden); err != nil {
        utils.RespondWithServiceError(w, err, "Failed to update artist")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
        "spotify_id": spotifyID,
        "hidden":     req.Hidden,
    })
}

// UploadImage handles multipart image upload under the "image" field
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
    r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
    if err := r.ParseMultipartForm(MaxImageSize); err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "File too large or invalid form")
        return
    }

    file, _, err := r.FormFile("image")
    if err != nil {
        utils.RespondWithError(w, http.StatusBadRequest, "Image file is required")
        return
    }
    defer file.Close()

    profile, err := h.service.UploadImage(r.Context(), auth.MustUserID(r), file)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to upload image")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
    catalog, err := h.service.Catalog(r.Context())
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to load catalog")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, catalog)
}

// GetPublicProfile returns another user's profile without contact data
func (h *Handler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
    profile, err := h.service.GetPublicProfile(r.Context(), mux.Vars(r)["id"])
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get profile")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, profile)
}

// GetRecommendations returns profiles the caller has not swiped yet
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
    limit := h.feedPageSize
    if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
        limit = l
    }

    profiles, err := h.service.Feed(r.Context(), auth.MustUserID(r), limit)
    if err != nil {
        utils.RespondWithServiceError(w, err, "Failed to get recommendations")
        return
    }

    utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
        "profiles": profiles,
        "count":    len(profiles),
    })
}
