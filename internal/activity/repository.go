// internal/activity/repository.go

package activity

import (
    "context"
    "database/sql"
    "errors"

    "github.com/jmoiron/sqlx"
)

// Repository defines read access to the activity catalog
type Repository interface {
    GetByID(ctx context.Context, id int64) (*Activity, error)
    Exists(ctx context.Context, id int64) (bool, error)
    Feed(ctx context.Context, userID string, limit int) ([]*Activity, error)
    FirstOpenInDifficultyRange(ctx context.Context, min, max int) (*Activity, error)
    ListOpen(ctx context.Context, limit int) ([]*Activity, error)
}

type postgresRepository struct {
    db *sqlx.DB
}

// NewPostgresRepository creates a new postgres repository
func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db}
}

const activityColumns = `
    id, title, teaser_text, description, category, difficulty,
    landscape_rating, experience_rating, stamina_rating,
    length, ascent, descent, duration_min, min_altitude, max_altitude,
    point_lat, point_lon, is_winter, is_closed, primary_region`

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Activity, error) {
    var a Activity
    err := r.db.GetContext(ctx, &a, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrActivityNotFound
    }
    if err != nil {
        return nil, err
    }
    return &a, nil
}

func (r *postgresRepository) Exists(ctx context.Context, id int64) (bool, error) {
    var exists bool
    err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM activities WHERE id = $1)`, id)
    return exists, err
}

func (r *postgresRepository) Feed(ctx context.Context, userID string, limit int) ([]*Activity, error) {
    activities := []*Activity{}
    query := `
        SELECT ` + activityColumns + `
        FROM activities a
        WHERE a.is_closed = FALSE
          AND NOT EXISTS (
            SELECT 1 FROM activity_swipes s
            WHERE s.user_id = $1 AND s.activity_id = a.id
          )
        ORDER BY a.id
        LIMIT $2
    `
    err := r.db.SelectContext(ctx, &activities, query, userID, limit)
    return activities, err
}

func (r *postgresRepository) FirstOpenInDifficultyRange(ctx context.Context, min, max int) (*Activity, error) {
    var a Activity
    query := `
        SELECT ` + activityColumns + `
        FROM activities
        WHERE is_closed = FALSE AND difficulty >= $1 AND difficulty <= $2
        ORDER BY id
        LIMIT 1
    `
    err := r.db.GetContext(ctx, &a, query, min, max)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return &a, nil
}

func (r *postgresRepository) ListOpen(ctx context.Context, limit int) ([]*Activity, error) {
    activities := []*Activity{}
    err := r.db.SelectContext(ctx, &activities,
        `SELECT `+activityColumns+` FROM activities WHERE is_closed = FALSE ORDER BY id LIMIT $1`, limit)
    return activities, err
}
