// internal/profile/dto.go

package profile

import "encoding/json"

// UpdateProfileRequest is a partial update; nil fields are left untouched
type UpdateProfileRequest struct {
    DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=80"`
    Age         *int    `json:"age,omitempty" validate:"omitempty,min=16,max=120"`
    Gender      *string `json:"gender,omitempty" validate:"omitempty,max=40"`
    Location    *string `json:"location,omitempty" validate:"omitempty,max=120"`
    Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
    DogFriendly *bool   `json:"dog_friendly,omitempty"`
}

// Empty reports whether the request changes nothing
func (r *UpdateProfileRequest) Empty() bool {
    return r.DisplayName == nil && r.Age == nil && r.Gender == nil &&
        r.Location == nil && r.Phone == nil && r.DogFriendly == nil
}

// SetInterestsRequest replaces the profile's interests
type SetInterestsRequest struct {
    InterestIDs []string `json:"interest_ids" validate:"required,max=20,unique,dive,required"`
}

// SkillSelection picks one level for one skill
type SkillSelection struct {
    SkillID      string `json:"skill_id" validate:"required"`
    SkillLevelID string `json:"skill_level_id" validate:"required"`
}

// SetSkillsRequest replaces the profile's skills
type SetSkillsRequest struct {
    Skills []SkillSelection `json:"skills" validate:"required,max=10,dive"`
}

// ArtistInput is an artist as delivered by the client or the Spotify import
type ArtistInput struct {
    SpotifyID string   `json:"spotify_id" validate:"required"`
    Name      string   `json:"name"`
    ImageURL  string   `json:"image_url"`
    Hidden    bool     `json:"hidden"`
    Genres    []string `json:"genres"`
}

// ImportArtistsRequest replaces the profile's artists
type ImportArtistsRequest struct {
    Artists []ArtistInput `json:"artists" validate:"max=50,dive"`
}

// ArtistVisibilityRequest hides or shows one artist
type ArtistVisibilityRequest struct {
    Hidden bool `json:"hidden"`
}

// OnboardingStepRequest carries one wizard step: kind selects the variant,
// payload is decoded into it
type OnboardingStepRequest struct {
    Kind    string `json:"kind" validate:"required"`
    Payload json.RawMessage `json:"payload"`
}
