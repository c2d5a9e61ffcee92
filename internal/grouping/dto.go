// internal/grouping/dto.go

package grouping

// CreateGroupRequest starts an ad hoc group for a hike
type CreateGroupRequest struct {
    ActivityID int64 `json:"activity_id" validate:"required,min=1"`
}

// ChangeHikeRequest switches a group to another hike
type ChangeHikeRequest struct {
    ActivityID int64 `json:"activity_id" validate:"required,min=1"`
}
