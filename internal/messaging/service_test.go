package messaging

import (
    "context"
    "encoding/json"
    "errors"
    "sort"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hyking/hyking-backend/internal/common/errs"
    "github.com/hyking/hyking-backend/internal/matching"
)

const assistantID = "assistant"

// memoryRepository keeps rooms and messages in memory; WithTx restores the
// message log and rooms when fn fails
type memoryRepository struct {
    txMu sync.Mutex
    mu   sync.Mutex

    rooms        map[string]*ChatRoom
    participants map[string]map[string]bool
    messages     []*Message
    failTouch    error
}

func newMemoryRepository() *memoryRepository {
    return &memoryRepository{
        rooms:        map[string]*ChatRoom{},
        participants: map[string]map[string]bool{},
    }
}

func (m *memoryRepository) WithTx(ctx context.Context, fn func(repo Repository) error) error {
    m.txMu.Lock()
    defer m.txMu.Unlock()

    m.mu.Lock()
    messages := len(m.messages)
    rooms := make(map[string]ChatRoom, len(m.rooms))
    for id, r := range m.rooms {
        rooms[id] = *r
    }
    m.mu.Unlock()

    if err := fn(m); err != nil {
        m.mu.Lock()
        m.messages = m.messages[:messages]
        m.rooms = map[string]*ChatRoom{}
        for id, r := range rooms {
            r := r
            m.rooms[id] = &r
        }
        m.mu.Unlock()
        return err
    }
    return nil
}

func (m *memoryRepository) addRoom(id string, members ...string) {
    m.rooms[id] = &ChatRoom{ID: id, IsGroup: len(members) > 2, CreatedAt: time.Now()}
    m.participants[id] = map[string]bool{}
    for _, p := range members {
        m.participants[id][p] = true
    }
}

func (m *memoryRepository) UpsertMatchRoom(ctx context.Context, matchID string) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for id, room := range m.rooms {
        if room.MatchID != nil && *room.MatchID == matchID {
            return id, nil
        }
    }
    id := "room-" + matchID
    m.rooms[id] = &ChatRoom{ID: id, MatchID: &matchID, CreatedAt: time.Now()}
    m.participants[id] = map[string]bool{}
    return id, nil
}

func (m *memoryRepository) GetRoom(ctx context.Context, roomID string) (*ChatRoom, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    room, ok := m.rooms[roomID]
    if !ok {
        return nil, ErrRoomNotFound
    }
    out := *room
    out.Participants = []Participant{}
    for _, id := range m.sortedParticipants(roomID) {
        out.Participants = append(out.Participants, Participant{ChatRoomID: roomID, ProfileID: id})
    }
    return &out, nil
}

func (m *memoryRepository) ListRooms(ctx context.Context, profileID string) ([]*ChatRoom, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    rooms := []*ChatRoom{}
    for id, room := range m.rooms {
        if m.participants[id][profileID] {
            r := *room
            rooms = append(rooms, &r)
        }
    }
    sort.Slice(rooms, func(i, j int) bool {
        a, b := rooms[i].LastMessageAt, rooms[j].LastMessageAt
        if a == nil || b == nil {
            return b == nil && a != nil
        }
        return a.After(*b)
    })
    return rooms, nil
}

func (m *memoryRepository) TouchRoom(ctx context.Context, roomID string, at time.Time) error {
    if m.failTouch != nil {
        return m.failTouch
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    m.rooms[roomID].LastMessageAt = &at
    return nil
}

func (m *memoryRepository) UpsertParticipant(ctx context.Context, roomID, profileID string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.participants[roomID][profileID] = true
    return nil
}

func (m *memoryRepository) IsParticipant(ctx context.Context, roomID, profileID string) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.participants[roomID][profileID], nil
}

func (m *memoryRepository) ParticipantIDs(ctx context.Context, roomID string) ([]string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    return m.sortedParticipants(roomID), nil
}

func (m *memoryRepository) sortedParticipants(roomID string) []string {
    ids := []string{}
    for id := range m.participants[roomID] {
        ids = append(ids, id)
    }
    sort.Strings(ids)
    return ids
}

func (m *memoryRepository) InsertMessage(ctx context.Context, message *Message) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    // strictly increasing timestamps keep ordering stable in tests
    message.CreatedAt = time.Now().Add(time.Duration(len(m.messages)) * time.Millisecond)
    stored := *message
    m.messages = append(m.messages, &stored)
    return nil
}

func (m *memoryRepository) ListMessages(ctx context.Context, roomID string, limit int, before *time.Time) ([]*Message, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []*Message{}
    for i := len(m.messages) - 1; i >= 0 && len(out) < limit; i-- {
        msg := m.messages[i]
        if msg.ChatRoomID != roomID || (before != nil && !msg.CreatedAt.Before(*before)) {
            continue
        }
        out = append(out, msg)
    }
    return out, nil
}

func (m *memoryRepository) GetSender(ctx context.Context, profileID string) (*Sender, error) {
    name := "name-" + profileID
    return &Sender{ID: profileID, DisplayName: &name}, nil
}

type stubMatches map[string]*matching.Match

func (s stubMatches) GetMatch(ctx context.Context, matchID, userID string) (*matching.Match, error) {
    m, ok := s[matchID]
    if !ok {
        return nil, matching.ErrMatchNotFound
    }
    if !m.Involves(userID) {
        return nil, matching.ErrNotMatchParticipant
    }
    return m, nil
}

type recordingPublisher struct {
    mu     sync.Mutex
    events []Event
    err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event Event) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, event)
    return p.err
}

func TestEnsureMatchRoom(t *testing.T) {
    ctx := context.Background()
    repo := newMemoryRepository()
    matches := stubMatches{
        "m1": {ID: "m1", User1ID: "alice", User2ID: "bob", IsActive: true},
        "m2": {ID: "m2", User1ID: "alice", User2ID: "carol", IsActive: false},
    }
    svc := NewService(repo, matches, nil, assistantID)

    room, err := svc.EnsureMatchRoom(ctx, "m1", "bob")
    require.NoError(t, err)
    require.NotNil(t, room.MatchID)
    assert.Equal(t, "m1", *room.MatchID)
    assert.False(t, room.IsGroup)
    assert.Len(t, room.Participants, 2)

    again, err := svc.EnsureMatchRoom(ctx, "m1", "alice")
    require.NoError(t, err)
    assert.Equal(t, room.ID, again.ID)
    assert.Len(t, repo.rooms, 1)

    _, err = svc.EnsureMatchRoom(ctx, "m1", "mallory")
    assert.ErrorIs(t, err, errs.ErrPermissionDenied)

    _, err = svc.EnsureMatchRoom(ctx, "m2", "alice")
    assert.ErrorIs(t, err, ErrMatchInactive)

    _, err = svc.EnsureMatchRoom(ctx, "nope", "alice")
    assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSendMessage(t *testing.T) {
    ctx := context.Background()
    repo := newMemoryRepository()
    repo.addRoom("r1", "alice", "bob")
    publisher := &recordingPublisher{}
    svc := NewService(repo, stubMatches{}, publisher, assistantID)

    _, err := svc.SendMessage(ctx, "r1", "mallory", &SendMessageRequest{Content: "hi"})
    assert.ErrorIs(t, err, ErrNotParticipant)

    _, err = svc.SendMessage(ctx, "r1", "alice", &SendMessageRequest{Content: "   "})
    assert.ErrorIs(t, err, errs.ErrInvalidArgument)

    _, err = svc.SendMessage(ctx, "r1", "alice", &SendMessageRequest{Content: "hi", Metadata: json.RawMessage(`[1]`)})
    assert.ErrorIs(t, err, ErrInvalidMetadata)
    assert.Empty(t, repo.messages, "validation happens before any write")

    msg, err := svc.SendMessage(ctx, "r1", "alice", &SendMessageRequest{Content: " hello bob "})
    require.NoError(t, err)
    assert.Equal(t, "hello bob", msg.Content)
    assert.False(t, msg.IsAI)
    require.NotNil(t, msg.Sender)
    assert.Equal(t, "alice", msg.Sender.ID)

    require.NotNil(t, repo.rooms["r1"].LastMessageAt)
    assert.Equal(t, msg.CreatedAt, *repo.rooms["r1"].LastMessageAt)

    require.Len(t, publisher.events, 1)
    event := publisher.events[0]
    assert.Equal(t, EventNewMessage, event.Event)
    assert.Equal(t, msg.ID, event.Payload.ID)
    assert.Equal(t, "r1", event.Payload.ChatRoomID)
    assert.Equal(t, "alice", event.Payload.SenderID)
}

func TestSendMessagePublishFailureIsNotFatal(t *testing.T) {
    repo := newMemoryRepository()
    repo.addRoom("r1", "alice", "bob")
    svc := NewService(repo, stubMatches{}, &recordingPublisher{err: errors.New("redis down")}, assistantID)

    msg, err := svc.SendMessage(context.Background(), "r1", "bob", &SendMessageRequest{Content: "still here"})
    require.NoError(t, err)
    assert.NotEmpty(t, msg.ID)
    assert.Len(t, repo.messages, 1)
}

func TestSendMessageRollsBack(t *testing.T) {
    repo := newMemoryRepository()
    repo.addRoom("r1", "alice", "bob")
    repo.failTouch = errors.New("deadlock detected")
    publisher := &recordingPublisher{}
    svc := NewService(repo, stubMatches{}, publisher, assistantID)

    _, err := svc.SendMessage(context.Background(), "r1", "alice", &SendMessageRequest{Content: "lost"})
    require.Error(t, err)
    assert.Empty(t, repo.messages)
    assert.Empty(t, publisher.events, "nothing is published for a failed write")
}

func TestSendAssistantMessage(t *testing.T) {
    repo := newMemoryRepository()
    repo.addRoom("r1", "alice", "bob", "carol")
    publisher := &recordingPublisher{}
    svc := NewService(repo, stubMatches{}, publisher, assistantID)

    meta := map[string]interface{}{"hikes": []map[string]interface{}{{"id": 7, "score": 100}}}
    msg, err := svc.SendAssistantMessage(context.Background(), "r1", "Try these", meta)
    require.NoError(t, err)

    assert.True(t, msg.IsAI)
    assert.Equal(t, assistantID, msg.SenderID)
    assert.JSONEq(t, `{"hikes":[{"id":7,"score":100}]}`, string(msg.Metadata))

    require.Len(t, publisher.events, 1)
    assert.True(t, publisher.events[0].Payload.IsAI)
    assert.JSONEq(t, `{"hikes":[{"id":7,"score":100}]}`, string(publisher.events[0].Payload.Metadata))
}

func TestGetMessagesAndRooms(t *testing.T) {
    ctx := context.Background()
    repo := newMemoryRepository()
    repo.addRoom("quiet", "alice", "dave")
    repo.addRoom("busy", "alice", "bob")
    svc := NewService(repo, stubMatches{}, nil, assistantID)

    for _, text := range []string{"one", "two", "three"} {
        _, err := svc.SendMessage(ctx, "busy", "bob", &SendMessageRequest{Content: text})
        require.NoError(t, err)
    }

    _, err := svc.GetMessages(ctx, "busy", "dave", 0, nil)
    assert.ErrorIs(t, err, errs.ErrPermissionDenied)

    messages, err := svc.GetMessages(ctx, "busy", "alice", 2, nil)
    require.NoError(t, err)
    require.Len(t, messages, 2)
    assert.Equal(t, "three", messages[0].Content)

    older, err := svc.GetMessages(ctx, "busy", "alice", 0, &messages[1].CreatedAt)
    require.NoError(t, err)
    require.Len(t, older, 1)
    assert.Equal(t, "one", older[0].Content)

    rooms, err := svc.ListRooms(ctx, "alice")
    require.NoError(t, err)
    require.Len(t, rooms, 2)
    assert.Equal(t, "busy", rooms[0].ID, "rooms with recent messages come first")
    assert.Equal(t, "quiet", rooms[1].ID)
}

func TestEnsureParticipant(t *testing.T) {
    repo := newMemoryRepository()
    repo.addRoom("r1", "alice")
    svc := NewService(repo, stubMatches{}, nil, assistantID)

    require.NoError(t, svc.EnsureParticipant(context.Background(), "r1", "bob"))
    require.NoError(t, svc.EnsureParticipant(context.Background(), "r1", "bob"))
    assert.Equal(t, []string{"alice", "bob"}, repo.sortedParticipants("r1"))

    assert.ErrorIs(t, svc.EnsureParticipant(context.Background(), "missing", "bob"), ErrRoomNotFound)
}
