// internal/grouping/models.go

package grouping

import (
    "time"

    "github.com/hyking/hyking-backend/internal/profile"
)

// CompatibilityGroup is a transient, ordered set of profiles that passed
// formation. It is never stored.
type CompatibilityGroup []profile.Profile

// IDs returns the member ids in group order
func (g CompatibilityGroup) IDs() []string {
    ids := make([]string, 0, len(g))
    for _, p := range g {
        ids = append(ids, p.ID)
    }
    return ids
}

// GroupMatch proposes one hike to a set of profiles and owns their chat room
type GroupMatch struct {
    ID          string    `json:"id" db:"id"`
    Description string    `json:"description" db:"description"`
    ChatRoomID  string    `json:"chat_room_id" db:"chat_room_id"`
    CreatedAt   time.Time `json:"created_at" db:"created_at"`
    UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

    Hikes   []HikeSuggestion `json:"hikes"`
    Members []Member         `json:"members"`
}

// HasMember reports whether profileID is linked to the group, accepted or not
func (g *GroupMatch) HasMember(profileID string) bool {
    for _, m := range g.Members {
        if m.ProfileID == profileID {
            return true
        }
    }
    return false
}

// AcceptedCount returns how many members accepted
func (g *GroupMatch) AcceptedCount() int {
    n := 0
    for _, m := range g.Members {
        if m.HasAccepted {
            n++
        }
    }
    return n
}

// HikeSuggestion links a group match to an activity
type HikeSuggestion struct {
    ID           string    `json:"id" db:"id"`
    GroupMatchID string    `json:"group_match_id" db:"group_match_id"`
    ActivityID   int64     `json:"activity_id" db:"activity_id"`
    Title        string    `json:"title" db:"title"`
    Difficulty   int       `json:"difficulty" db:"difficulty"`
    CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Member is a profile's membership in a group match
type Member struct {
    ProfileID    string    `json:"profile_id" db:"profile_id"`
    GroupMatchID string    `json:"group_match_id" db:"group_match_id"`
    HasAccepted  bool      `json:"has_accepted" db:"has_accepted"`
    DisplayName  *string   `json:"display_name" db:"display_name"`
    ImageURL     *string   `json:"image_url" db:"image_url"`
    UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CreateOptions tune CreateGroupMatch
type CreateOptions struct {
    Description string
    // AcceptedBy members start accepted
    AcceptedBy []string
}

func (o CreateOptions) accepted(profileID string) bool {
    for _, id := range o.AcceptedBy {
        if id == profileID {
            return true
        }
    }
    return false
}

// RunSummary reports one batch formation pass
type RunSummary struct {
    Strategy   string        `json:"strategy"`
    Eligible   int           `json:"eligible"`
    Groups     int           `json:"groups"`
    Created    int           `json:"created"`
    Skipped    int           `json:"skipped"`
    Failed     int           `json:"failed"`
    Leftovers  int           `json:"leftovers"`
    Duration   time.Duration `json:"duration_ns"`
    CreatedIDs []string      `json:"created_ids"`
}
