// internal/matching/models.go

package matching

import (
    "time"

    "github.com/hyking/hyking-backend/internal/profile"
)

// Action is the direction of a swipe
type Action string

const (
    ActionLike    Action = "like"
    ActionDislike Action = "dislike"
)

func (a Action) Valid() bool {
    return a == ActionLike || a == ActionDislike
}

// Swipe is one directional decision of a profile about another profile.
// Rows are append-only.
type Swipe struct {
    ID         string    `json:"id" db:"id"`
    SenderID   string    `json:"sender_id" db:"sender_id"`
    ReceiverID string    `json:"receiver_id" db:"receiver_id"`
    Action     Action    `json:"action" db:"action"`
    CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ActivitySwipe is the latest decision of a profile about a hike
type ActivitySwipe struct {
    ID         string    `json:"id" db:"id"`
    UserID     string    `json:"user_id" db:"user_id"`
    ActivityID int64     `json:"activity_id" db:"activity_id"`
    Action     Action    `json:"action" db:"action"`
    CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Match is a mutual like. User1ID is always the smaller id.
type Match struct {
    ID           string    `json:"id" db:"id"`
    User1ID      string    `json:"user1_id" db:"user1_id"`
    User2ID      string    `json:"user2_id" db:"user2_id"`
    IsActive     bool      `json:"is_active" db:"is_active"`
    LastActivity time.Time `json:"last_activity" db:"last_activity"`
    CreatedAt    time.Time `json:"created_at" db:"created_at"`

    MatchedUser *profile.Profile `json:"matched_user,omitempty"`
}

// Involves reports whether profileID is one of the two parties
func (m *Match) Involves(profileID string) bool {
    return m.User1ID == profileID || m.User2ID == profileID
}

// Other returns the party that is not profileID
func (m *Match) Other(profileID string) string {
    if m.User1ID == profileID {
        return m.User2ID
    }
    return m.User1ID
}

// SwipeResult holds the recorded swipe and, when this swipe completed a
// mutual like, the newly created match
type SwipeResult struct {
    Swipe   *Swipe `json:"swipe"`
    Match   *Match `json:"match,omitempty"`
    IsMatch bool   `json:"is_match"`
}

// Like is a pending one-sided like as seen by one of its parties
type Like struct {
    ProfileID string           `json:"profile_id" db:"profile_id"`
    LikedAt   time.Time        `json:"liked_at" db:"liked_at"`
    Profile   *profile.Profile `json:"profile,omitempty"`
}

// Pair is an unordered pair of matched profiles
type Pair struct {
    User1ID string `db:"user1_id"`
    User2ID string `db:"user2_id"`
}

// NormalizePair orders two ids so the smaller comes first
func NormalizePair(a, b string) (string, string) {
    if a < b {
        return a, b
    }
    return b, a
}
