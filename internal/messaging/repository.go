// internal/messaging/repository.go

package messaging

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/jmoiron/sqlx"
    "github.com/lib/pq"

    "github.com/hyking/hyking-backend/internal/common/database"
)

type Repository interface {
    WithTx(ctx context.Context, fn func(repo Repository) error) error

    // Rooms
    UpsertMatchRoom(ctx context.Context, matchID string) (string, error)
    GetRoom(ctx context.Context, roomID string) (*ChatRoom, error)
    ListRooms(ctx context.Context, profileID string) ([]*ChatRoom, error)
    TouchRoom(ctx context.Context, roomID string, at time.Time) error

    // Participants
    UpsertParticipant(ctx context.Context, roomID, profileID string) error
    IsParticipant(ctx context.Context, roomID, profileID string) (bool, error)
    ParticipantIDs(ctx context.Context, roomID string) ([]string, error)

    // Messages
    InsertMessage(ctx context.Context, message *Message) error
    ListMessages(ctx context.Context, roomID string, limit int, before *time.Time) ([]*Message, error)
    GetSender(ctx context.Context, profileID string) (*Sender, error)
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

// UpsertMatchRoom returns the room owned by matchID, creating it on first use
func (r *postgresRepository) UpsertMatchRoom(ctx context.Context, matchID string) (string, error) {
    query := `
        INSERT INTO chat_rooms (id, is_group, match_id)
        VALUES ($1, FALSE, $2)
        ON CONFLICT (match_id) DO UPDATE SET match_id = EXCLUDED.match_id
        RETURNING id`

    var roomID string
    if err := r.q.QueryRowxContext(ctx, query, uuid.New().String(), matchID).Scan(&roomID); err != nil {
        return "", fmt.Errorf("failed to upsert match room: %w", err)
    }
    return roomID, nil
}

func (r *postgresRepository) GetRoom(ctx context.Context, roomID string) (*ChatRoom, error) {
    var room ChatRoom
    err := r.q.GetContext(ctx, &room, `
        SELECT id, name, is_group, match_id, last_message_at, created_at
        FROM chat_rooms WHERE id = $1`, roomID)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrRoomNotFound
    }
    if err != nil {
        return nil, err
    }

    rooms := []*ChatRoom{&room}
    if err := r.loadParticipants(ctx, rooms); err != nil {
        return nil, err
    }
    return &room, nil
}

// ListRooms returns the profile's rooms, most recently active first
func (r *postgresRepository) ListRooms(ctx context.Context, profileID string) ([]*ChatRoom, error) {
    rooms := []*ChatRoom{}
    query := `
        SELECT cr.id, cr.name, cr.is_group, cr.match_id, cr.last_message_at, cr.created_at
        FROM chat_rooms cr
        JOIN participants p ON p.chat_room_id = cr.id
        WHERE p.profile_id = $1
        ORDER BY cr.last_message_at DESC NULLS LAST, cr.created_at DESC`
    if err := r.q.SelectContext(ctx, &rooms, query, profileID); err != nil {
        return nil, fmt.Errorf("failed to list rooms: %w", err)
    }
    return rooms, r.loadParticipants(ctx, rooms)
}

func (r *postgresRepository) loadParticipants(ctx context.Context, rooms []*ChatRoom) error {
    if len(rooms) == 0 {
        return nil
    }

    ids := make([]string, 0, len(rooms))
    byID := make(map[string]*ChatRoom, len(rooms))
    for _, room := range rooms {
        room.Participants = []Participant{}
        ids = append(ids, room.ID)
        byID[room.ID] = room
    }

    var participants []Participant
    err := r.q.SelectContext(ctx, &participants, `
        SELECT pa.id, pa.chat_room_id, pa.profile_id, pa.created_at, pr.display_name, pr.image_url
        FROM participants pa
        JOIN profiles pr ON pr.id = pa.profile_id
        WHERE pa.chat_room_id = ANY($1)
        ORDER BY pa.created_at`, pq.Array(ids))
    if err != nil {
        return fmt.Errorf("failed to load participants: %w", err)
    }
    for _, p := range participants {
        byID[p.ChatRoomID].Participants = append(byID[p.ChatRoomID].Participants, p)
    }
    return nil
}

func (r *postgresRepository) TouchRoom(ctx context.Context, roomID string, at time.Time) error {
    _, err := r.q.ExecContext(ctx, `UPDATE chat_rooms SET last_message_at = $2 WHERE id = $1`, roomID, at)
    if err != nil {
        return fmt.Errorf("failed to update room: %w", err)
    }
    return nil
}

func (r *postgresRepository) UpsertParticipant(ctx context.Context, roomID, profileID string) error {
    query := `
        INSERT INTO participants (id, chat_room_id, profile_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (chat_room_id, profile_id) DO NOTHING`
    if _, err := r.q.ExecContext(ctx, query, uuid.New().String(), roomID, profileID); err != nil {
        return fmt.Errorf("failed to add participant: %w", err)
    }
    return nil
}

func (r *postgresRepository) IsParticipant(ctx context.Context, roomID, profileID string) (bool, error) {
    var ok bool
    err := r.q.GetContext(ctx, &ok,
        `SELECT EXISTS(SELECT 1 FROM participants WHERE chat_room_id = $1 AND profile_id = $2)`, roomID, profileID)
    return ok, err
}

func (r *postgresRepository) ParticipantIDs(ctx context.Context, roomID string) ([]string, error) {
    ids := []string{}
    err := r.q.SelectContext(ctx, &ids, `SELECT profile_id FROM participants WHERE chat_room_id = $1`, roomID)
    return ids, err
}

func (r *postgresRepository) InsertMessage(ctx context.Context, message *Message) error {
    query := `
        INSERT INTO messages (id, chat_room_id, sender_id, content, is_ai, metadata)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

    err := r.q.QueryRowxContext(ctx, query,
        message.ID, message.ChatRoomID, message.SenderID, message.Content, message.IsAI, []byte(message.Metadata),
    ).Scan(&message.CreatedAt)
    if err != nil {
        return fmt.Errorf("failed to insert message: %w", err)
    }
    return nil
}

// ListMessages returns up to limit messages older than before, newest first
func (r *postgresRepository) ListMessages(ctx context.Context, roomID string, limit int, before *time.Time) ([]*Message, error) {
    query := `
        SELECT m.id, m.chat_room_id, m.sender_id, m.content, m.is_ai, m.metadata, m.created_at,
               p.display_name, p.image_url
        FROM messages m
        LEFT JOIN profiles p ON p.id = m.sender_id
        WHERE m.chat_room_id = $1 AND ($2::timestamptz IS NULL OR m.created_at < $2)
        ORDER BY m.created_at DESC
        LIMIT $3`

    rows, err := r.q.QueryxContext(ctx, query, roomID, before, limit)
    if err != nil {
        return nil, fmt.Errorf("failed to list messages: %w", err)
    }
    defer rows.Close()

    messages := []*Message{}
    for rows.Next() {
        m := &Message{}
        sender := &Sender{}
        var metadata []byte
        if err := rows.Scan(&m.ID, &m.ChatRoomID, &m.SenderID, &m.Content, &m.IsAI, &metadata, &m.CreatedAt,
            &sender.DisplayName, &sender.ImageURL); err != nil {
            return nil, err
        }
        m.Metadata = metadata
        sender.ID = m.SenderID
        m.Sender = sender
        messages = append(messages, m)
    }
    return messages, rows.Err()
}

func (r *postgresRepository) GetSender(ctx context.Context, profileID string) (*Sender, error) {
    var s Sender
    err := r.q.GetContext(ctx, &s, `SELECT id, display_name, image_url FROM profiles WHERE id = $1`, profileID)
    if errors.Is(err, sql.ErrNoRows) {
        return &Sender{ID: profileID}, nil
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}
