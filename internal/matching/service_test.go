package matching

import (
    "context"
    "errors"
    "strconv"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hyking/hyking-backend/internal/common/errs"
    "github.com/hyking/hyking-backend/internal/profile"
)

// memoryRepository keeps swipes and matches in memory. WithTx serializes
// units of work the way the pair lock does in postgres.
type memoryRepository struct {
    txMu           sync.Mutex
    mu             sync.Mutex
    profiles       map[string]bool
    activities     map[int64]bool
    swipes         []*Swipe
    activitySwipes map[string]*ActivitySwipe
    matches        map[string]*Match
    failInsert     error
}

func newMemoryRepository(profileIDs ...string) *memoryRepository {
    m := &memoryRepository{
        profiles:       map[string]bool{},
        activities:     map[int64]bool{1: true, 2: true},
        activitySwipes: map[string]*ActivitySwipe{},
        matches:        map[string]*Match{},
    }
    for _, id := range profileIDs {
        m.profiles[id] = true
    }
    return m
}

func (m *memoryRepository) WithTx(ctx context.Context, fn func(repo Repository) error) error {
    m.txMu.Lock()
    defer m.txMu.Unlock()

    m.mu.Lock()
    swipes := len(m.swipes)
    matches := make(map[string]*Match, len(m.matches))
    for k, v := range m.matches {
        matches[k] = v
    }
    m.mu.Unlock()

    if err := fn(m); err != nil {
        m.mu.Lock()
        m.swipes = m.swipes[:swipes]
        m.matches = matches
        m.mu.Unlock()
        return err
    }
    return nil
}

func (m *memoryRepository) CountProfiles(ctx context.Context, ids []string) (int, error) {
    count := 0
    for _, id := range ids {
        if m.profiles[id] {
            count++
        }
    }
    return count, nil
}

func (m *memoryRepository) ActivityExists(ctx context.Context, activityID int64) (bool, error) {
    return m.activities[activityID], nil
}

func (m *memoryRepository) LockPair(ctx context.Context, user1ID, user2ID string) error {
    return nil
}

func (m *memoryRepository) InsertSwipe(ctx context.Context, swipe *Swipe) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    swipe.CreatedAt = time.Now()
    m.swipes = append(m.swipes, swipe)
    return nil
}

func (m *memoryRepository) HasLike(ctx context.Context, senderID, receiverID string) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, s := range m.swipes {
        if s.SenderID == senderID && s.ReceiverID == receiverID && s.Action == ActionLike {
            return true, nil
        }
    }
    return false, nil
}

func (m *memoryRepository) UpsertActivitySwipe(ctx context.Context, swipe *ActivitySwipe) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    key := swipe.UserID + "/" + strconv.FormatInt(swipe.ActivityID, 10)
    if existing, ok := m.activitySwipes[key]; ok {
        swipe.ID = existing.ID
    }
    swipe.CreatedAt = time.Now()
    stored := *swipe
    m.activitySwipes[key] = &stored
    return nil
}

func (m *memoryRepository) ListActivitySwipes(ctx context.Context, userID string) ([]*ActivitySwipe, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []*ActivitySwipe{}
    for _, s := range m.activitySwipes {
        if s.UserID == userID {
            out = append(out, s)
        }
    }
    return out, nil
}

func (m *memoryRepository) LikesReceived(ctx context.Context, userID string) ([]*Like, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    answered := map[string]bool{}
    for _, s := range m.swipes {
        if s.SenderID == userID {
            answered[s.ReceiverID] = true
        }
    }
    seen := map[string]bool{}
    out := []*Like{}
    for _, s := range m.swipes {
        if s.ReceiverID == userID && s.Action == ActionLike && !answered[s.SenderID] && !seen[s.SenderID] {
            seen[s.SenderID] = true
            out = append(out, &Like{ProfileID: s.SenderID, LikedAt: s.CreatedAt})
        }
    }
    return out, nil
}

func (m *memoryRepository) LikesSent(ctx context.Context, userID string) ([]*Like, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    likedBack := map[string]bool{}
    for _, s := range m.swipes {
        if s.ReceiverID == userID && s.Action == ActionLike {
            likedBack[s.SenderID] = true
        }
    }
    seen := map[string]bool{}
    out := []*Like{}
    for _, s := range m.swipes {
        if s.SenderID == userID && s.Action == ActionLike && !likedBack[s.ReceiverID] && !seen[s.ReceiverID] {
            seen[s.ReceiverID] = true
            out = append(out, &Like{ProfileID: s.ReceiverID, LikedAt: s.CreatedAt})
        }
    }
    return out, nil
}

func (m *memoryRepository) InsertMatchIfAbsent(ctx context.Context, match *Match) (bool, error) {
    if m.failInsert != nil {
        return false, m.failInsert
    }
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, existing := range m.matches {
        if existing.User1ID == match.User1ID && existing.User2ID == match.User2ID {
            return false, nil
        }
    }
    match.IsActive = true
    match.CreatedAt = time.Now()
    match.LastActivity = match.CreatedAt
    stored := *match
    m.matches[match.ID] = &stored
    return true, nil
}

func (m *memoryRepository) GetMatch(ctx context.Context, id string) (*Match, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    match, ok := m.matches[id]
    if !ok {
        return nil, ErrMatchNotFound
    }
    cp := *match
    return &cp, nil
}

func (m *memoryRepository) GetUserMatches(ctx context.Context, userID string) ([]*Match, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []*Match{}
    for _, match := range m.matches {
        if match.IsActive && match.Involves(userID) {
            cp := *match
            out = append(out, &cp)
        }
    }
    return out, nil
}

func (m *memoryRepository) DeactivateMatch(ctx context.Context, id string) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    match, ok := m.matches[id]
    if !ok || !match.IsActive {
        return false, nil
    }
    match.IsActive = false
    return true, nil
}

func (m *memoryRepository) ActivePairs(ctx context.Context) ([]Pair, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []Pair{}
    for _, match := range m.matches {
        if match.IsActive {
            out = append(out, Pair{User1ID: match.User1ID, User2ID: match.User2ID})
        }
    }
    return out, nil
}

func (m *memoryRepository) countSwipes(sender, receiver string, action Action) int {
    m.mu.Lock()
    defer m.mu.Unlock()
    n := 0
    for _, s := range m.swipes {
        if s.SenderID == sender && s.ReceiverID == receiver && s.Action == action {
            n++
        }
    }
    return n
}

type stubProfiles struct{}

func (stubProfiles) GetPublicProfile(ctx context.Context, id string) (*profile.Profile, error) {
    return &profile.Profile{ID: id}, nil
}

type recordingNotifier struct {
    mu    sync.Mutex
    pairs [][2]string
    err   error
}

func (n *recordingNotifier) MatchCreated(ctx context.Context, a, b string) error {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.pairs = append(n.pairs, [2]string{a, b})
    return n.err
}

const (
    p1 = "11111111-1111-1111-1111-111111111111"
    p2 = "22222222-2222-2222-2222-222222222222"
    p3 = "33333333-3333-3333-3333-333333333333"
)

func TestRecordSwipeValidation(t *testing.T) {
    repo := newMemoryRepository(p1, p2)
    svc := NewService(repo, stubProfiles{}, nil)
    ctx := context.Background()

    tests := []struct {
        name     string
        sender   string
        receiver string
        action   Action
        want     error
        category error
    }{
        {"unknown action", p1, p2, "superlike", ErrInvalidAction, errs.ErrInvalidArgument},
        {"self swipe", p1, p1, ActionLike, ErrSelfSwipe, errs.ErrInvalidArgument},
        {"unknown receiver", p1, p3, ActionLike, ErrProfileNotFound, errs.ErrNotFound},
        {"unknown sender", p3, p1, ActionDislike, ErrProfileNotFound, errs.ErrNotFound},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            result, err := svc.RecordSwipe(ctx, tt.sender, tt.receiver, tt.action)
            assert.Nil(t, result)
            assert.ErrorIs(t, err, tt.want)
            assert.ErrorIs(t, err, tt.category)
        })
    }

    assert.Empty(t, repo.swipes, "validation failures must not write")
}

func TestRecordSwipeMutualLikeScenario(t *testing.T) {
    repo := newMemoryRepository(p1, p2)
    notifier := &recordingNotifier{}
    svc := NewService(repo, stubProfiles{}, notifier)
    ctx := context.Background()

    first, err := svc.RecordSwipe(ctx, p1, p2, ActionLike)
    require.NoError(t, err)
    require.NotNil(t, first.Swipe)
    assert.Nil(t, first.Match)
    assert.False(t, first.IsMatch)
    assert.Equal(t, 1, repo.countSwipes(p1, p2, ActionLike))
    assert.Empty(t, repo.matches)

    second, err := svc.RecordSwipe(ctx, p2, p1, ActionLike)
    require.NoError(t, err)
    require.NotNil(t, second.Match)
    assert.True(t, second.IsMatch)
    assert.True(t, second.Match.IsActive)
    assert.Equal(t, p1, second.Match.User1ID)
    assert.Equal(t, p2, second.Match.User2ID)
    assert.Len(t, repo.matches, 1)
    assert.Equal(t, [][2]string{{p1, p2}}, notifier.pairs)

    // a repeated like neither duplicates nor re-reports the match
    third, err := svc.RecordSwipe(ctx, p1, p2, ActionLike)
    require.NoError(t, err)
    assert.Nil(t, third.Match)
    assert.Len(t, repo.matches, 1)
    assert.Equal(t, 2, repo.countSwipes(p1, p2, ActionLike))
}

func TestRecordSwipeDislikeNeverMatches(t *testing.T) {
    repo := newMemoryRepository(p1, p2)
    svc := NewService(repo, stubProfiles{}, nil)
    ctx := context.Background()

    _, err := svc.RecordSwipe(ctx, p1, p2, ActionLike)
    require.NoError(t, err)
    result, err := svc.RecordSwipe(ctx, p2, p1, ActionDislike)
    require.NoError(t, err)

    assert.Nil(t, result.Match)
    assert.Empty(t, repo.matches)
}

func TestRecordSwipeConcurrentOppositeLikes(t *testing.T) {
    for round := 0; round < 20; round++ {
        repo := newMemoryRepository(p1, p2)
        svc := NewService(repo, stubProfiles{}, nil)

        var wg sync.WaitGroup
        results := make([]*SwipeResult, 2)
        failures := make([]error, 2)
        pairs := [][2]string{{p1, p2}, {p2, p1}}

        for i := range pairs {
            wg.Add(1)
            go func(i int) {
                defer wg.Done()
                results[i], failures[i] = svc.RecordSwipe(context.Background(), pairs[i][0], pairs[i][1], ActionLike)
            }(i)
        }
        wg.Wait()

        created := 0
        for i := range results {
            require.NoError(t, failures[i])
            if results[i].Match != nil {
                created++
            }
        }
        assert.Equal(t, 1, created)
        assert.Len(t, repo.matches, 1)
    }
}

func TestRecordSwipeRollsBackOnMatchFailure(t *testing.T) {
    repo := newMemoryRepository(p1, p2)
    svc := NewService(repo, stubProfiles{}, nil)
    ctx := context.Background()

    _, err := svc.RecordSwipe(ctx, p1, p2, ActionLike)
    require.NoError(t, err)

    repo.failInsert = errors.New("connection reset")
    _, err = svc.RecordSwipe(ctx, p2, p1, ActionLike)
    require.Error(t, err)

    assert.Equal(t, 0, repo.countSwipes(p2, p1, ActionLike), "swipe must not outlive a failed match insert")
    assert.Empty(t, repo.matches)
}

func TestMatchNotificationFailureIsNotFatal(t *testing.T) {
    repo := newMemoryRepository(p1, p2)
    svc := NewService(repo, stubProfiles{}, &recordingNotifier{err: errors.New("smtp down")})
    ctx := context.Background()

    _, err := svc.RecordSwipe(ctx, p1, p2, ActionLike)
    require.NoError(t, err)
    result, err := svc.RecordSwipe(ctx, p2, p1, ActionLike)
    require.NoError(t, err)
    assert.NotNil(t, result.Match)
}

func TestRecordActivitySwipeOverwrites(t *testing.T) {
    repo := newMemoryRepository(p1)
    svc := NewService(repo, stubProfiles{}, nil)
    ctx := context.Background()

    first, err := svc.RecordActivitySwipe(ctx, p1, 1, ActionLike)
    require.NoError(t, err)
    second, err := svc.RecordActivitySwipe(ctx, p1, 1, ActionDislike)
    require.NoError(t, err)

    swipes, err := svc.ListActivitySwipes(ctx, p1)
    require.NoError(t, err)
    require.Len(t, swipes, 1)
    assert.Equal(t, ActionDislike, swipes[0].Action)
    assert.Equal(t, first.ID, second.ID)

    _, err = svc.RecordActivitySwipe(ctx, p1, 99, ActionLike)
    assert.ErrorIs(t, err, ErrActivityNotFound)
    _, err = svc.RecordActivitySwipe(ctx, p3, 1, ActionLike)
    assert.ErrorIs(t, err, ErrProfileNotFound)
    _, err = svc.RecordActivitySwipe(ctx, p1, 1, "maybe")
    assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestLikesAndUnmatch(t *testing.T) {
    repo := newMemoryRepository(p1, p2, p3)
    svc := NewService(repo, stubProfiles{}, nil)
    ctx := context.Background()

    _, err := svc.RecordSwipe(ctx, p1, p2, ActionLike)
    require.NoError(t, err)
    _, err = svc.RecordSwipe(ctx, p3, p2, ActionLike)
    require.NoError(t, err)

    received, err := svc.GetLikesReceived(ctx, p2)
    require.NoError(t, err)
    assert.Len(t, received, 2)
    assert.NotNil(t, received[0].Profile)

    result, err := svc.RecordSwipe(ctx, p2, p1, ActionLike)
    require.NoError(t, err)
    require.NotNil(t, result.Match)

    received, err = svc.GetLikesReceived(ctx, p2)
    require.NoError(t, err)
    require.Len(t, received, 1)
    assert.Equal(t, p3, received[0].ProfileID)

    sent, err := svc.GetLikesSent(ctx, p1)
    require.NoError(t, err)
    assert.Empty(t, sent)

    matchID := result.Match.ID
    _, err = svc.GetMatch(ctx, matchID, p3)
    assert.ErrorIs(t, err, ErrNotMatchParticipant)

    got, err := svc.GetMatch(ctx, matchID, p1)
    require.NoError(t, err)
    assert.Equal(t, p2, got.MatchedUser.ID)

    matches, err := svc.GetMatches(ctx, p2)
    require.NoError(t, err)
    assert.Len(t, matches, 1)

    assert.ErrorIs(t, svc.Unmatch(ctx, matchID, p3), ErrNotMatchParticipant)
    require.NoError(t, svc.Unmatch(ctx, matchID, p1))
    assert.ErrorIs(t, svc.Unmatch(ctx, matchID, p2), ErrMatchInactive)

    matches, err = svc.GetMatches(ctx, p2)
    require.NoError(t, err)
    assert.Empty(t, matches)

    // inactive is terminal
    again, err := svc.RecordSwipe(ctx, p1, p2, ActionLike)
    require.NoError(t, err)
    assert.Nil(t, again.Match)

    pairs, err := svc.ActivePairs(ctx)
    require.NoError(t, err)
    assert.Empty(t, pairs)
}

func TestNormalizePair(t *testing.T) {
    a, b := NormalizePair(p2, p1)
    assert.Equal(t, p1, a)
    assert.Equal(t, p2, b)

    a, b = NormalizePair(p1, p2)
    assert.Equal(t, p1, a)
    assert.Equal(t, p2, b)
}
