// internal/matching/dto.go

package matching

type SwipeRequest struct {
    ReceiverID string `json:"receiver_id" validate:"required,uuid"`
    Action     string `json:"action" validate:"required,oneof=like dislike"`
}

type ActivitySwipeRequest struct {
    ActivityID int64  `json:"activity_id" validate:"required,min=1"`
    Action     string `json:"action" validate:"required,oneof=like dislike"`
}
