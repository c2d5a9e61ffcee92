// internal/matching/repository.go

package matching

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"

    "github.com/hyking/hyking-backend/internal/common/database"
)

type Repository interface {
    WithTx(ctx context.Context, fn func(repo Repository) error) error

    // Existence checks inside the swipe transaction
    CountProfiles(ctx context.Context, ids []string) (int, error)
    ActivityExists(ctx context.Context, activityID int64) (bool, error)

    // Swipes
    LockPair(ctx context.Context, user1ID, user2ID string) error
    InsertSwipe(ctx context.Context, swipe *Swipe) error
    HasLike(ctx context.Context, senderID, receiverID string) (bool, error)
    UpsertActivitySwipe(ctx context.Context, swipe *ActivitySwipe) error
    ListActivitySwipes(ctx context.Context, userID string) ([]*ActivitySwipe, error)
    LikesReceived(ctx context.Context, userID string) ([]*Like, error)
    LikesSent(ctx context.Context, userID string) ([]*Like, error)

    // Matches
    InsertMatchIfAbsent(ctx context.Context, match *Match) (bool, error)
    GetMatch(ctx context.Context, id string) (*Match, error)
    GetUserMatches(ctx context.Context, userID string) ([]*Match, error)
    DeactivateMatch(ctx context.Context, id string) (bool, error)
    ActivePairs(ctx context.Context) ([]Pair, error)
}

type postgresRepository struct {
    db *sqlx.DB
    q  database.Queryer
}

func NewPostgresRepository(db *sqlx.DB) Repository {
    return &postgresRepository{db: db, q: db}
}

func (r *postgresRepository) WithTx(ctx context.Context, fn func(repo Repository) error) error {
    if r.db == nil {
        return fn(r)
    }
    return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
        return fn(&postgresRepository{q: tx})
    })
}

func (r *postgresRepository) CountProfiles(ctx context.Context, ids []string) (int, error) {
    var count int
    err := r.q.GetContext(ctx, &count, `SELECT COUNT(*) FROM profiles WHERE id = ANY($1)`, pq.Array(ids))
    return count, err
}

func (r *postgresRepository) ActivityExists(ctx context.Context, activityID int64) (bool, error) {
    var exists bool
    err := r.q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM activities WHERE id = $1)`, activityID)
    return exists, err
}

// LockPair serializes concurrent swipes between the same two profiles until
// the surrounding transaction ends
func (r *postgresRepository) LockPair(ctx context.Context, user1ID, user2ID string) error {
    _, err := r.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, user1ID+":"+user2ID)
    if err != nil {
        return fmt.Errorf("failed to lock pair: %w", err)
    }
    return nil
}

func (r *postgresRepository) InsertSwipe(ctx context.Context, swipe *Swipe) error {
    query := `
        INSERT INTO user_swipes (id, sender_id, receiver_id, action)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `
    err := r.q.QueryRowxContext(ctx, query, swipe.ID, swipe.SenderID, swipe.ReceiverID, swipe.Action).
        Scan(&swipe.CreatedAt)
    if err != nil {
        return fmt.Errorf("failed to insert swipe: %w", err)
    }
    return nil
}

func (r *postgresRepository) HasLike(ctx context.Context, senderID, receiverID string) (bool, error) {
    var exists bool
    query := `
        SELECT EXISTS(
            SELECT 1 FROM user_swipes
            WHERE sender_id = $1 AND receiver_id = $2 AND action = 'like'
        )
    `
    err := r.q.GetContext(ctx, &exists, query, senderID, receiverID)
    return exists, err
}

func (r *postgresRepository) UpsertActivitySwipe(ctx context.Context, swipe *ActivitySwipe) error {
    query := `
        INSERT INTO activity_swipes (id, user_id, activity_id, action)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, activity_id)
        DO UPDATE SET action = EXCLUDED.action, created_at = NOW()
        RETURNING id, created_at
    `
    err := r.q.QueryRowxContext(ctx, query, swipe.ID, swipe.UserID, swipe.ActivityID, swipe.Action).
        Scan(&swipe.ID, &swipe.CreatedAt)
    if err != nil {
        return fmt.Errorf("failed to upsert activity swipe: %w", err)
    }
    return nil
}

func (r *postgresRepository) ListActivitySwipes(ctx context.Context, userID string) ([]*ActivitySwipe, error) {
    swipes := []*ActivitySwipe{}
    query := `
        SELECT id, user_id, activity_id, action, created_at
        FROM activity_swipes
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
    err := r.q.SelectContext(ctx, &swipes, query, userID)
    return swipes, err
}

func (r *postgresRepository) LikesReceived(ctx context.Context, userID string) ([]*Like, error) {
    likes := []*Like{}
    query := `
        SELECT s.sender_id AS profile_id, MAX(s.created_at) AS liked_at
        FROM user_swipes s
        WHERE s.receiver_id = $1 AND s.action = 'like'
          AND NOT EXISTS (
            SELECT 1 FROM user_swipes back
            WHERE back.sender_id = $1 AND back.receiver_id = s.sender_id
          )
        GROUP BY s.sender_id
        ORDER BY liked_at DESC
    `
    err := r.q.SelectContext(ctx, &likes, query, userID)
    return likes, err
}

func (r *postgresRepository) LikesSent(ctx context.Context, userID string) ([]*Like, error) {
    likes := []*Like{}
    query := `
        SELECT s.receiver_id AS profile_id, MAX(s.created_at) AS liked_at
        FROM user_swipes s
        WHERE s.sender_id = $1 AND s.action = 'like'
          AND NOT EXISTS (
            SELECT 1 FROM user_swipes back
            WHERE back.sender_id = s.receiver_id AND back.receiver_id = $1 AND back.action = 'like'
          )
        GROUP BY s.receiver_id
        ORDER BY liked_at DESC
    `
    err := r.q.SelectContext(ctx, &likes, query, userID)
    return likes, err
}

// InsertMatchIfAbsent reports whether this call created the match. An
// existing row for the pair, active or not, is left untouched.
func (r *postgresRepository) InsertMatchIfAbsent(ctx context.Context, match *Match) (bool, error) {
    query := `
        INSERT INTO matches (id, user1_id, user2_id, is_active)
        VALUES ($1, $2, $3, TRUE)
        ON CONFLICT (user1_id, user2_id) DO NOTHING
        RETURNING last_activity, created_at
    `
    err := r.q.QueryRowxContext(ctx, query, match.ID, match.User1ID, match.User2ID).
        Scan(&match.LastActivity, &match.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return false, nil
    }
    if err != nil {
        return false, fmt.Errorf("failed to insert match: %w", err)
    }
    match.IsActive = true
    return true, nil
}

const matchColumns = `id, user1_id, user2_id, is_active, last_activity, created_at`

func (r *postgresRepository) GetMatch(ctx context.Context, id string) (*Match, error) {
    var m Match
    err := r.q.GetContext(ctx, &m, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrMatchNotFound
    }
    if err != nil {
        return nil, err
    }
    return &m, nil
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID string) ([]*Match, error) {
    matches := []*Match{}
    query := `
        SELECT ` + matchColumns + `
        FROM matches
        WHERE (user1_id = $1 OR user2_id = $1) AND is_active = TRUE
        ORDER BY last_activity DESC
    `
    err := r.q.SelectContext(ctx, &matches, query, userID)
    return matches, err
}

func (r *postgresRepository) DeactivateMatch(ctx context.Context, id string) (bool, error) {
    result, err := r.q.ExecContext(ctx,
        `UPDATE matches SET is_active = FALSE, last_activity = NOW() WHERE id = $1 AND is_active = TRUE`, id)
    if err != nil {
        return false, err
    }
    affected, err := result.RowsAffected()
    return affected > 0, err
}

func (r *postgresRepository) ActivePairs(ctx context.Context) ([]Pair, error) {
    pairs := []Pair{}
    err := r.q.SelectContext(ctx, &pairs,
        `SELECT user1_id, user2_id FROM matches WHERE is_active = TRUE ORDER BY user1_id, user2_id`)
    return pairs, err
}
