// internal/profile/models.go

package profile

import (
    "strings"
    "time"
)

// ExperienceSkillMarker identifies skills that describe hiking experience
const ExperienceSkillMarker = "EXPERIENCE"

// Profile holds the matching-relevant attributes of a hiker
type Profile struct {
    ID                  string    `json:"id" db:"id"`
    Email               *string   `json:"email,omitempty" db:"email"`
    Phone               *string   `json:"-" db:"phone"`
    DisplayName         *string   `json:"display_name" db:"display_name"`
    Age                 *int      `json:"age" db:"age"`
    Gender              *string   `json:"gender" db:"gender"`
    Location            *string   `json:"location" db:"location"`
    ImageURL            *string   `json:"image_url" db:"image_url"`
    DogFriendly         bool      `json:"dog_friendly" db:"dog_friendly"`
    SpotifyConnected    bool      `json:"spotify_connected" db:"spotify_connected"`
    OnboardingCompleted bool      `json:"onboarding_completed" db:"onboarding_completed"`
    CreatedAt           time.Time `json:"created_at" db:"created_at"`
    UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`

    Interests []UserInterest `json:"interests"`
    Skills    []UserSkill    `json:"skills"`
    Artists   []UserArtist   `json:"artists"`
}

// EligibleForGrouping reports whether automatic group formation may use this profile
func (p *Profile) EligibleForGrouping() bool {
    return p.OnboardingCompleted && p.Age != nil
}

// InterestIDs returns the ids of the profile's interests
func (p *Profile) InterestIDs() []string {
    ids := make([]string, 0, len(p.Interests))
    for _, i := range p.Interests {
        ids = append(ids, i.InterestID)
    }
    return ids
}

// SkillLevels maps skill id to the ordinal level the profile rated
func (p *Profile) SkillLevels() map[string]int {
    levels := make(map[string]int, len(p.Skills))
    for _, s := range p.Skills {
        levels[s.SkillID] = s.NumericValue
    }
    return levels
}

// ExperienceLevels returns the levels of every experience skill
func (p *Profile) ExperienceLevels() []int {
    var levels []int
    for _, s := range p.Skills {
        if strings.Contains(s.SkillID, ExperienceSkillMarker) {
            levels = append(levels, s.NumericValue)
        }
    }
    return levels
}

// PublicProfile hides contact data and hidden artists
func (p *Profile) PublicProfile() *Profile {
    public := *p
    public.Email = nil
    public.Phone = nil
    public.Artists = make([]UserArtist, 0, len(p.Artists))
    for _, a := range p.Artists {
        if !a.Hidden {
            public.Artists = append(public.Artists, a)
        }
    }
    return &public
}

// Interest is a catalog entry
type Interest struct {
    ID   string `json:"id" db:"id"`
    Name string `json:"name" db:"name"`
}

// UserInterest links a profile to an interest
type UserInterest struct {
    InterestID string `json:"interest_id" db:"interest_id"`
    Name       string `json:"name" db:"name"`
}

// Skill is a catalog entry such as EXPERIENCE or PACE
type Skill struct {
    ID          string       `json:"id" db:"id"`
    Name        string       `json:"name" db:"name"`
    DisplayName string       `json:"display_name" db:"display_name"`
    Levels      []SkillLevel `json:"levels"`
}

// SkillLevel is an ordinal level of one skill
type SkillLevel struct {
    ID           string `json:"id" db:"id"`
    SkillID      string `json:"skill_id" db:"skill_id"`
    Name         string `json:"name" db:"name"`
    NumericValue int    `json:"numeric_value" db:"numeric_value"`
}

// UserSkill is a profile's rating for one skill
type UserSkill struct {
    SkillID      string `json:"skill_id" db:"skill_id"`
    SkillLevelID string `json:"skill_level_id" db:"skill_level_id"`
    LevelName    string `json:"level_name" db:"level_name"`
    NumericValue int    `json:"numeric_value" db:"numeric_value"`
}

// Artist is a music artist known from Spotify
type Artist struct {
    ID        string   `json:"id" db:"id"`
    SpotifyID string   `json:"spotify_id" db:"spotify_id"`
    Name      string   `json:"name" db:"name"`
    ImageURL  *string  `json:"image_url" db:"image_url"`
    Genres    []string `json:"genres"`
}

// UserArtist links a profile to an artist with a visibility flag
type UserArtist struct {
    Artist
    Hidden bool `json:"hidden" db:"hidden"`
}

// Contact is what notifications need to reach a profile
type Contact struct {
    ProfileID   string  `db:"id"`
    DisplayName *string `db:"display_name"`
    Email       *string `db:"email"`
    Phone       *string `db:"phone"`
}

// Catalog lists selectable interests and skills
type Catalog struct {
    Interests []Interest `json:"interests"`
    Skills    []Skill    `json:"skills"`
}
