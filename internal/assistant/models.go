// internal/assistant/models.go

package assistant

import (
    "github.com/hyking/hyking-backend/internal/activity"
    "github.com/hyking/hyking-backend/internal/messaging"
)

// Intent is what the user wants from the assistant
type Intent string

const (
    IntentGeneralChat        Intent = "general_chat"
    IntentHikeRecommendation Intent = "hike_recommendation"
)

// Fitness levels understood by the recommender
const (
    FitnessBeginner     = "beginner"
    FitnessIntermediate = "intermediate"
    FitnessAdvanced     = "advanced"
)

// Filters are the hike preferences pulled out of a message. Zero values
// mean "not mentioned".
type Filters struct {
    Region       string `json:"region,omitempty"`
    Difficulty   int    `json:"difficulty,omitempty"`
    FitnessLevel string `json:"fitness_level,omitempty"`
}

// Empty reports whether no preference was found
func (f Filters) Empty() bool {
    return f.Region == "" && f.Difficulty == 0 && f.FitnessLevel == ""
}

// Recommendation is one scored hike
type Recommendation struct {
    ActivityID int64   `json:"id"`
    Title      string  `json:"title"`
    Region     string  `json:"region,omitempty"`
    Difficulty int     `json:"difficulty"`
    Score      float64 `json:"final_score"`
}

// RecommendationMetadata is attached to the assistant's chat message
type RecommendationMetadata struct {
    Hikes   []Recommendation `json:"hikes"`
    Filters Filters          `json:"filters"`
}

// AskRequest is the body of POST /api/v1/chats/{roomId}/assistant
type AskRequest struct {
    Content string `json:"content" validate:"required,max=2000"`
}

// AskResponse carries both sides of the exchange
type AskResponse struct {
    Intent   Intent             `json:"intent"`
    Question *messaging.Message `json:"question"`
    Reply    *messaging.Message `json:"reply"`
}

func newRecommendation(a *activity.Activity, score float64) Recommendation {
    return Recommendation{
        ActivityID: a.ID,
        Title:      a.Title,
        Region:     a.Region(),
        Difficulty: a.Difficulty,
        Score:      score,
    }
}
