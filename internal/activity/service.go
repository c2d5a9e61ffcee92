// internal/activity/service.go

package activity

import (
    "context"
    "fmt"

    "github.com/hyking/hyking-backend/internal/common/errs"
)

var (
    ErrActivityNotFound = fmt.Errorf("activity %w", errs.ErrNotFound)
    ErrInvalidRange     = fmt.Errorf("%w: difficulty range is empty", errs.ErrInvalidArgument)
)

// Service exposes the activity catalog
type Service interface {
    GetActivity(ctx context.Context, id int64) (*Activity, error)
    Exists(ctx context.Context, id int64) (bool, error)
    Feed(ctx context.Context, userID string, limit int) ([]*Activity, error)
    FirstOpenInDifficultyRange(ctx context.Context, min, max int) (*Activity, error)
    ListOpen(ctx context.Context, limit int) ([]*Activity, error)
}

type service struct {
    repo Repository
}

// NewService creates a new activity service
func NewService(repo Repository) Service {
    return &service{repo: repo}
}

func (s *service) GetActivity(ctx context.Context, id int64) (*Activity, error) {
    return s.repo.GetByID(ctx, id)
}

func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
    return s.repo.Exists(ctx, id)
}

func (s *service) Feed(ctx context.Context, userID string, limit int) ([]*Activity, error) {
    return s.repo.Feed(ctx, userID, limit)
}

// FirstOpenInDifficultyRange returns the lowest-id open activity with
// min <= difficulty <= max, or nil when there is none
func (s *service) FirstOpenInDifficultyRange(ctx context.Context, min, max int) (*Activity, error) {
    if max < min {
        return nil, ErrInvalidRange
    }
    return s.repo.FirstOpenInDifficultyRange(ctx, min, max)
}

func (s *service) ListOpen(ctx context.Context, limit int) ([]*Activity, error) {
    if limit <= 0 {
        limit = 100
    }
    return s.repo.ListOpen(ctx, limit)
}
