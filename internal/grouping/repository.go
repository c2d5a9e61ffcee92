// internal/grouping/repository.go

package grouping

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/google/uuid"
    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"

    "github.com/hyking/hyking-backend/internal/common/database"
)

// Repository defines group match persistence
type Repository interface {
    WithTx(ctx context.Context, fn func(repo Repository) error) error

    // Lookups
    ActivityTitle(ctx context.Context, activityID int64) (string, error)
    ProfileExists(ctx context.Context, profileID string) (bool, error)
    MembersShareGroup(ctx context.Context, profileIDs []string) (bool, error)

    // Writes
    CreateChatRoom(ctx context.Context, roomID, name string) error
    InsertGroupMatch(ctx context.Context, gm *GroupMatch) error
    UpdateDescription(ctx context.Context, groupMatchID, description string) error
    ReplaceHike(ctx context.Context, groupMatchID string, activityID int64) error
    UpsertMembership(ctx context.Context, groupMatchID, profileID string, accepted bool) error
    UpsertParticipant(ctx context.Context, chatRoomID, profileID string) error
    DeleteParticipant(ctx context.Context, chatRoomID, profileID string) error

    // Reads
    GetGroupMatch(ctx context.Context, id string) (*GroupMatch, error)
    ListForProfile(ctx context.Context, profileID string) ([]*GroupMatch, error)
    ListOpen(ctx context.Context, limit int) ([]*GroupMatch, error)
}

type postgresRepository struct {
    db *sqlx.DB
    q  database.Queryer
}

// NewPostgresRepository creates a new postgres repository
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

func (r *postgresRepository) ActivityTitle(ctx context.Context, activityID int64) (string, error) {
    var title string
    err := r.q.GetContext(ctx, &title, `SELECT title FROM activities WHERE id = $1`, activityID)
    if errors.Is(err, sql.ErrNoRows) {
        return "", ErrActivityMissing
    }
    return title, err
}

func (r *postgresRepository) ProfileExists(ctx context.Context, profileID string) (bool, error) {
    var exists bool
    err := r.q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`, profileID)
    return exists, err
}

// MembersShareGroup reports whether some group match already links every
// given profile
func (r *postgresRepository) MembersShareGroup(ctx context.Context, profileIDs []string) (bool, error) {
    var shared bool
    query := `
        SELECT EXISTS(
            SELECT group_match_id
            FROM profile_group_suggestions
            WHERE profile_id = ANY($1)
            GROUP BY group_match_id
            HAVING COUNT(DISTINCT profile_id) = $2
        )
    `
    err := r.q.GetContext(ctx, &shared, query, pq.Array(profileIDs), len(profileIDs))
    return shared, err
}

func (r *postgresRepository) CreateChatRoom(ctx context.Context, roomID, name string) error {
    _, err := r.q.ExecContext(ctx,
        `INSERT INTO chat_rooms (id, name, is_group) VALUES ($1, $2, TRUE)`, roomID, name)
    if err != nil {
        return fmt.Errorf("failed to create chat room: %w", err)
    }
    return nil
}

func (r *postgresRepository) InsertGroupMatch(ctx context.Context, gm *GroupMatch) error {
    query := `
        INSERT INTO group_matches (id, description, chat_room_id)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at
    `
    err := r.q.QueryRowxContext(ctx, query, gm.ID, gm.Description, gm.ChatRoomID).
        Scan(&gm.CreatedAt, &gm.UpdatedAt)
    if err != nil {
        return fmt.Errorf("failed to insert group match: %w", err)
    }
    return nil
}

func (r *postgresRepository) UpdateDescription(ctx context.Context, groupMatchID, description string) error {
    _, err := r.q.ExecContext(ctx,
        `UPDATE group_matches SET description = $2, updated_at = NOW() WHERE id = $1`, groupMatchID, description)
    return err
}

// ReplaceHike drops the current suggestions and stores activityID as the only one
func (r *postgresRepository) ReplaceHike(ctx context.Context, groupMatchID string, activityID int64) error {
    if _, err := r.q.ExecContext(ctx, `DELETE FROM group_match_hikes WHERE group_match_id = $1`, groupMatchID); err != nil {
        return fmt.Errorf("failed to clear hikes: %w", err)
    }
    _, err := r.q.ExecContext(ctx,
        `INSERT INTO group_match_hikes (id, group_match_id, activity_id) VALUES ($1, $2, $3)`,
        uuid.New().String(), groupMatchID, activityID)
    if err != nil {
        return fmt.Errorf("failed to insert hike: %w", err)
    }
    return nil
}

func (r *postgresRepository) UpsertMembership(ctx context.Context, groupMatchID, profileID string, accepted bool) error {
    query := `
        INSERT INTO profile_group_suggestions (profile_id, group_match_id, has_accepted)
        VALUES ($1, $2, $3)
        ON CONFLICT (profile_id, group_match_id)
        DO UPDATE SET has_accepted = EXCLUDED.has_accepted, updated_at = NOW()
    `
    if _, err := r.q.ExecContext(ctx, query, profileID, groupMatchID, accepted); err != nil {
        return fmt.Errorf("failed to upsert membership: %w", err)
    }
    return nil
}

func (r *postgresRepository) UpsertParticipant(ctx context.Context, chatRoomID, profileID string) error {
    query := `
        INSERT INTO participants (id, chat_room_id, profile_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (chat_room_id, profile_id) DO NOTHING
    `
    if _, err := r.q.ExecContext(ctx, query, uuid.New().String(), chatRoomID, profileID); err != nil {
        return fmt.Errorf("failed to upsert participant: %w", err)
    }
    return nil
}

func (r *postgresRepository) DeleteParticipant(ctx context.Context, chatRoomID, profileID string) error {
    _, err := r.q.ExecContext(ctx,
        `DELETE FROM participants WHERE chat_room_id = $1 AND profile_id = $2`, chatRoomID, profileID)
    return err
}

func (r *postgresRepository) GetGroupMatch(ctx context.Context, id string) (*GroupMatch, error) {
    var gm GroupMatch
    err := r.q.GetContext(ctx, &gm,
        `SELECT id, description, chat_room_id, created_at, updated_at FROM group_matches WHERE id = $1`, id)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrGroupMatchNotFound
    }
    if err != nil {
        return nil, err
    }

    if err := r.loadDetails(ctx, []*GroupMatch{&gm}); err != nil {
        return nil, err
    }
    return &gm, nil
}

func (r *postgresRepository) ListForProfile(ctx context.Context, profileID string) ([]*GroupMatch, error) {
    groups := []*GroupMatch{}
    query := `
        SELECT gm.id, gm.description, gm.chat_room_id, gm.created_at, gm.updated_at
        FROM group_matches gm
        JOIN profile_group_suggestions pgs ON pgs.group_match_id = gm.id
        WHERE pgs.profile_id = $1
        ORDER BY gm.created_at DESC
    `
    if err := r.q.SelectContext(ctx, &groups, query, profileID); err != nil {
        return nil, err
    }
    return groups, r.loadDetails(ctx, groups)
}

func (r *postgresRepository) ListOpen(ctx context.Context, limit int) ([]*GroupMatch, error) {
    groups := []*GroupMatch{}
    query := `
        SELECT id, description, chat_room_id, created_at, updated_at
        FROM group_matches
        ORDER BY created_at DESC
        LIMIT $1
    `
    if err := r.q.SelectContext(ctx, &groups, query, limit); err != nil {
        return nil, err
    }
    return groups, r.loadDetails(ctx, groups)
}

// loadDetails fills hikes and members for a batch of group matches
func (r *postgresRepository) loadDetails(ctx context.Context, groups []*GroupMatch) error {
    if len(groups) == 0 {
        return nil
    }

    ids := make([]string, 0, len(groups))
    byID := make(map[string]*GroupMatch, len(groups))
    for _, gm := range groups {
        gm.Hikes = []HikeSuggestion{}
        gm.Members = []Member{}
        ids = append(ids, gm.ID)
        byID[gm.ID] = gm
    }

    var hikes []HikeSuggestion
    err := r.q.SelectContext(ctx, &hikes, `
        SELECT h.id, h.group_match_id, h.activity_id, a.title, a.difficulty, h.created_at
        FROM group_match_hikes h
        JOIN activities a ON a.id = h.activity_id
        WHERE h.group_match_id = ANY($1)
        ORDER BY h.created_at
    `, pq.Array(ids))
    if err != nil {
        return fmt.Errorf("failed to load hikes: %w", err)
    }
    for _, h := range hikes {
        byID[h.GroupMatchID].Hikes = append(byID[h.GroupMatchID].Hikes, h)
    }

    var members []Member
    err = r.q.SelectContext(ctx, &members, `
        SELECT pgs.profile_id, pgs.group_match_id, pgs.has_accepted, pgs.updated_at,
               p.display_name, p.image_url
        FROM profile_group_suggestions pgs
        JOIN profiles p ON p.id = pgs.profile_id
        WHERE pgs.group_match_id = ANY($1)
        ORDER BY pgs.created_at, pgs.profile_id
    `, pq.Array(ids))
    if err != nil {
        return fmt.Errorf("failed to load members: %w", err)
    }
    for _, m := range members {
        byID[m.GroupMatchID].Members = append(byID[m.GroupMatchID].Members, m)
    }
    return nil
}
