// internal/matching/service.go

package matching

import (
    "context"
    "fmt"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/hyking/hyking-backend/internal/common/errs"
    "github.com/hyking/hyking-backend/internal/profile"
)

var (
    ErrInvalidAction       = fmt.Errorf("%w: action must be like or dislike", errs.ErrInvalidArgument)
    ErrSelfSwipe           = fmt.Errorf("%w: cannot swipe on yourself", errs.ErrInvalidArgument)
    ErrInvalidActivity     = fmt.Errorf("%w: activity id must be positive", errs.ErrInvalidArgument)
    ErrProfileNotFound     = fmt.Errorf("profile %w", errs.ErrNotFound)
    ErrActivityNotFound    = fmt.Errorf("activity %w", errs.ErrNotFound)
    ErrMatchNotFound       = fmt.Errorf("match %w", errs.ErrNotFound)
    ErrNotMatchParticipant = fmt.Errorf("%w: not part of this match", errs.ErrPermissionDenied)
    ErrMatchInactive       = fmt.Errorf("%w: match is no longer active", errs.ErrConflict)
)

// Notifier is told about new matches. Failures are logged only.
type Notifier interface {
    MatchCreated(ctx context.Context, user1ID, user2ID string) error
}

// ProfileReader resolves the other party of a match or like
type ProfileReader interface {
    GetPublicProfile(ctx context.Context, profileID string) (*profile.Profile, error)
}

type Service interface {
    // Swipes
    RecordSwipe(ctx context.Context, senderID, receiverID string, action Action) (*SwipeResult, error)
    RecordActivitySwipe(ctx context.Context, userID string, activityID int64, action Action) (*ActivitySwipe, error)
    ListActivitySwipes(ctx context.Context, userID string) ([]*ActivitySwipe, error)
    GetLikesReceived(ctx context.Context, userID string) ([]*Like, error)
    GetLikesSent(ctx context.Context, userID string) ([]*Like, error)

    // Matches
    GetMatches(ctx context.Context, userID string) ([]*Match, error)
    GetMatch(ctx context.Context, matchID, userID string) (*Match, error)
    Unmatch(ctx context.Context, matchID, userID string) error
    ActivePairs(ctx context.Context) ([]Pair, error)
}

type service struct {
    repo     Repository
    profiles ProfileReader
    notifier Notifier
}

func NewService(repo Repository, profiles ProfileReader, notifier Notifier) Service {
    return &service{
        repo:     repo,
        profiles: profiles,
        notifier: notifier,
    }
}

// RecordSwipe stores the swipe and creates the match when it completes a
// mutual like. The pair lock makes the reciprocity check and the match insert
// atomic against the opposite swipe arriving at the same time.
func (s *service) RecordSwipe(ctx context.Context, senderID, receiverID string, action Action) (*SwipeResult, error) {
    if !action.Valid() {
        return nil, ErrInvalidAction
    }
    if senderID == receiverID {
        return nil, ErrSelfSwipe
    }

    start := time.Now()
    result := &SwipeResult{}

    err := s.repo.WithTx(ctx, func(repo Repository) error {
        count, err := repo.CountProfiles(ctx, []string{senderID, receiverID})
        if err != nil {
            return err
        }
        if count != 2 {
            return ErrProfileNotFound
        }

        user1, user2 := NormalizePair(senderID, receiverID)
        if err := repo.LockPair(ctx, user1, user2); err != nil {
            return err
        }

        swipe := &Swipe{
            ID:         uuid.New().String(),
            SenderID:   senderID,
            ReceiverID: receiverID,
            Action:     action,
        }
        if err := repo.InsertSwipe(ctx, swipe); err != nil {
            return err
        }
        result.Swipe = swipe

        if action != ActionLike {
            return nil
        }

        reciprocal, err := repo.HasLike(ctx, receiverID, senderID)
        if err != nil {
            return err
        }
        if !reciprocal {
            return nil
        }

        match := &Match{ID: uuid.New().String(), User1ID: user1, User2ID: user2}
        created, err := repo.InsertMatchIfAbsent(ctx, match)
        if err != nil {
            return err
        }
        if created {
            result.Match = match
            result.IsMatch = true
        }
        return nil
    })
    if err != nil {
        return nil, err
    }

    RecordSwipe("profile", action)
    RecordSwipeDuration(time.Since(start))

    if result.Match != nil {
        RecordMatch()
        log.Printf("💞 Match %s created between %s and %s", result.Match.ID, result.Match.User1ID, result.Match.User2ID)
        if s.notifier != nil {
            if err := s.notifier.MatchCreated(ctx, result.Match.User1ID, result.Match.User2ID); err != nil {
                log.Printf("Failed to notify match %s: %v", result.Match.ID, err)
            }
        }
    }

    return result, nil
}

func (s *service) RecordActivitySwipe(ctx context.Context, userID string, activityID int64, action Action) (*ActivitySwipe, error) {
    if !action.Valid() {
        return nil, ErrInvalidAction
    }
    if activityID <= 0 {
        return nil, ErrInvalidActivity
    }

    swipe := &ActivitySwipe{
        ID:         uuid.New().String(),
        UserID:     userID,
        ActivityID: activityID,
        Action:     action,
    }

    err := s.repo.WithTx(ctx, func(repo Repository) error {
        count, err := repo.CountProfiles(ctx, []string{userID})
        if err != nil {
            return err
        }
        if count != 1 {
            return ErrProfileNotFound
        }

        exists, err := repo.ActivityExists(ctx, activityID)
        if err != nil {
            return err
        }
        if !exists {
            return ErrActivityNotFound
        }

        return repo.UpsertActivitySwipe(ctx, swipe)
    })
    if err != nil {
        return nil, err
    }

    RecordSwipe("activity", action)
    return swipe, nil
}

func (s *service) ListActivitySwipes(ctx context.Context, userID string) ([]*ActivitySwipe, error) {
    return s.repo.ListActivitySwipes(ctx, userID)
}

func (s *service) GetLikesReceived(ctx context.Context, userID string) ([]*Like, error) {
    likes, err := s.repo.LikesReceived(ctx, userID)
    if err != nil {
        return nil, err
    }
    s.attachLikeProfiles(ctx, likes)
    return likes, nil
}

func (s *service) GetLikesSent(ctx context.Context, userID string) ([]*Like, error) {
    likes, err := s.repo.LikesSent(ctx, userID)
    if err != nil {
        return nil, err
    }
    s.attachLikeProfiles(ctx, likes)
    return likes, nil
}

func (s *service) attachLikeProfiles(ctx context.Context, likes []*Like) {
    for _, like := range likes {
        p, err := s.profiles.GetPublicProfile(ctx, like.ProfileID)
        if err != nil {
            log.Printf("Failed to load profile %s for like: %v", like.ProfileID, err)
            continue
        }
        like.Profile = p
    }
}

func (s *service) GetMatches(ctx context.Context, userID string) ([]*Match, error) {
    matches, err := s.repo.GetUserMatches(ctx, userID)
    if err != nil {
        return nil, err
    }
    for _, m := range matches {
        p, err := s.profiles.GetPublicProfile(ctx, m.Other(userID))
        if err != nil {
            log.Printf("Failed to load matched user for match %s: %v", m.ID, err)
            continue
        }
        m.MatchedUser = p
    }
    return matches, nil
}

func (s *service) GetMatch(ctx context.Context, matchID, userID string) (*Match, error) {
    m, err := s.repo.GetMatch(ctx, matchID)
    if err != nil {
        return nil, err
    }
    if !m.Involves(userID) {
        return nil, ErrNotMatchParticipant
    }

    if p, err := s.profiles.GetPublicProfile(ctx, m.Other(userID)); err == nil {
        m.MatchedUser = p
    }
    return m, nil
}

// Unmatch moves an active match to inactive. Inactive is terminal: a later
// reciprocal like does not revive it.
func (s *service) Unmatch(ctx context.Context, matchID, userID string) error {
    m, err := s.repo.GetMatch(ctx, matchID)
    if err != nil {
        return err
    }
    if !m.Involves(userID) {
        return ErrNotMatchParticipant
    }

    changed, err := s.repo.DeactivateMatch(ctx, matchID)
    if err != nil {
        return err
    }
    if !changed {
        return ErrMatchInactive
    }

    RecordUnmatch()
    return nil
}

func (s *service) ActivePairs(ctx context.Context) ([]Pair, error) {
    return s.repo.ActivePairs(ctx)
}
