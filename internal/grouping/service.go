// internal/grouping/service.go

package grouping

import (
    "context"
    "errors"
    "fmt"
    "log"

    "github.com/google/uuid"

    "github.com/hyking/hyking-backend/internal/activity"
    "github.com/hyking/hyking-backend/internal/common/errs"
)

var (
    ErrGroupMatchNotFound = fmt.Errorf("group match %w", errs.ErrNotFound)
    ErrProfileNotFound    = fmt.Errorf("profile %w", errs.ErrNotFound)
    ErrActivityMissing    = fmt.Errorf("%w: activity does not exist", errs.ErrConflict)
    ErrActivityClosed     = fmt.Errorf("%w: activity is closed", errs.ErrInvalidArgument)
    ErrNoMembers          = fmt.Errorf("%w: a group match needs at least one member", errs.ErrInvalidArgument)
    ErrNotGroupMember     = fmt.Errorf("%w: not a member of this group", errs.ErrPermissionDenied)
    ErrRunInProgress      = fmt.Errorf("%w: group formation is already running", errs.ErrConflict)
)

// Service defines group match operations
type Service interface {
    CreateGroupMatch(ctx context.Context, members []string, activityID int64, opts CreateOptions) (*GroupMatch, error)
    AcceptGroupMatch(ctx context.Context, groupMatchID, profileID string) (*GroupMatch, error)
    DeclineGroupMatch(ctx context.Context, groupMatchID, profileID string) (*GroupMatch, error)
    CreateGroupForHike(ctx context.Context, profileID string, activityID int64) (*GroupMatch, error)
    ChangeHike(ctx context.Context, groupMatchID, profileID string, activityID int64) (*GroupMatch, error)

    GetGroupMatch(ctx context.Context, id string) (*GroupMatch, error)
    ListGroupMatches(ctx context.Context, profileID string) ([]*GroupMatch, error)
    ListOpenGroupMatches(ctx context.Context, limit int) ([]*GroupMatch, error)

    FindSuitableActivity(ctx context.Context, group CompatibilityGroup) (*activity.Activity, error)
    AlreadyGrouped(ctx context.Context, profileIDs []string) (bool, error)
}

type service struct {
    repo       Repository
    activities ActivityFinder
    rules      Rules
}

// NewService creates a new grouping service
func NewService(repo Repository, activities ActivityFinder, rules Rules) Service {
    return &service{
        repo:       repo,
        activities: activities,
        rules:      rules,
    }
}

// CreateGroupMatch creates the chat room, the group match owning it, the hike
// suggestion, the memberships and one participant per member in a single
// transaction
func (s *service) CreateGroupMatch(ctx context.Context, members []string, activityID int64, opts CreateOptions) (*GroupMatch, error) {
    members = dedupe(members)
    if len(members) == 0 {
        return nil, ErrNoMembers
    }

    gm := &GroupMatch{
        ID:          uuid.New().String(),
        Description: opts.Description,
        ChatRoomID:  uuid.New().String(),
    }

    err := s.repo.WithTx(ctx, func(repo Repository) error {
        title, err := repo.ActivityTitle(ctx, activityID)
        if err != nil {
            return err
        }
        if gm.Description == "" {
            gm.Description = describe(title)
        }

        for _, profileID := range members {
            exists, err := repo.ProfileExists(ctx, profileID)
            if err != nil {
                return err
            }
            if !exists {
                return fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
            }
        }

        if err := repo.CreateChatRoom(ctx, gm.ChatRoomID, title); err != nil {
            return err
        }
        if err := repo.InsertGroupMatch(ctx, gm); err != nil {
            return err
        }
        if err := repo.ReplaceHike(ctx, gm.ID, activityID); err != nil {
            return err
        }

        for _, profileID := range members {
            if err := repo.UpsertMembership(ctx, gm.ID, profileID, opts.accepted(profileID)); err != nil {
                return err
            }
            if err := repo.UpsertParticipant(ctx, gm.ChatRoomID, profileID); err != nil {
                return err
            }
        }
        return nil
    })
    if err != nil {
        if errors.Is(err, errs.ErrConflict) || errors.Is(err, errs.ErrNotFound) {
            return nil, err
        }
        return nil, fmt.Errorf("%w: create group match: %w", errs.ErrInternal, err)
    }

    RecordGroupSize(len(members))
    return s.repo.GetGroupMatch(ctx, gm.ID)
}

// AcceptGroupMatch marks the profile as accepted, linking it first when it
// was not proposed, and makes sure it participates in the group chat. Calling
// it again changes nothing.
func (s *service) AcceptGroupMatch(ctx context.Context, groupMatchID, profileID string) (*GroupMatch, error) {
    err := s.repo.WithTx(ctx, func(repo Repository) error {
        gm, err := repo.GetGroupMatch(ctx, groupMatchID)
        if err != nil {
            return err
        }

        exists, err := repo.ProfileExists(ctx, profileID)
        if err != nil {
            return err
        }
        if !exists {
            return ErrProfileNotFound
        }

        if err := repo.UpsertMembership(ctx, groupMatchID, profileID, true); err != nil {
            return err
        }
        return repo.UpsertParticipant(ctx, gm.ChatRoomID, profileID)
    })
    if err != nil {
        return nil, err
    }

    RecordMembershipDecision("accepted")
    return s.repo.GetGroupMatch(ctx, groupMatchID)
}

// DeclineGroupMatch withdraws acceptance and removes the profile from the chat
func (s *service) DeclineGroupMatch(ctx context.Context, groupMatchID, profileID string) (*GroupMatch, error) {
    err := s.repo.WithTx(ctx, func(repo Repository) error {
        gm, err := repo.GetGroupMatch(ctx, groupMatchID)
        if err != nil {
            return err
        }
        if !gm.HasMember(profileID) {
            return ErrNotGroupMember
        }

        if err := repo.UpsertMembership(ctx, groupMatchID, profileID, false); err != nil {
            return err
        }
        return repo.DeleteParticipant(ctx, gm.ChatRoomID, profileID)
    })
    if err != nil {
        return nil, err
    }

    RecordMembershipDecision("declined")
    return s.repo.GetGroupMatch(ctx, groupMatchID)
}

// CreateGroupForHike starts an ad hoc group with the creator as its only,
// already accepted member
func (s *service) CreateGroupForHike(ctx context.Context, profileID string, activityID int64) (*GroupMatch, error) {
    a, err := s.openActivity(ctx, activityID)
    if errors.Is(err, errs.ErrNotFound) {
        return nil, ErrActivityMissing
    }
    if err != nil {
        return nil, err
    }

    return s.CreateGroupMatch(ctx, []string{profileID}, a.ID, CreateOptions{
        Description: describe(a.Title),
        AcceptedBy:  []string{profileID},
    })
}

// ChangeHike replaces the group's hike suggestion. Only members may change it.
func (s *service) ChangeHike(ctx context.Context, groupMatchID, profileID string, activityID int64) (*GroupMatch, error) {
    a, err := s.openActivity(ctx, activityID)
    if err != nil {
        return nil, err
    }

    err = s.repo.WithTx(ctx, func(repo Repository) error {
        gm, err := repo.GetGroupMatch(ctx, groupMatchID)
        if err != nil {
            return err
        }
        if !gm.HasMember(profileID) {
            return ErrNotGroupMember
        }

        if err := repo.ReplaceHike(ctx, groupMatchID, a.ID); err != nil {
            return err
        }
        return repo.UpdateDescription(ctx, groupMatchID, describe(a.Title))
    })
    if err != nil {
        return nil, err
    }

    log.Printf("Group match %s switched to activity %d by %s", groupMatchID, a.ID, profileID)
    return s.repo.GetGroupMatch(ctx, groupMatchID)
}

func (s *service) openActivity(ctx context.Context, activityID int64) (*activity.Activity, error) {
    a, err := s.activities.GetActivity(ctx, activityID)
    if err != nil {
        return nil, err
    }
    if !a.Open() {
        return nil, ErrActivityClosed
    }
    return a, nil
}

func (s *service) GetGroupMatch(ctx context.Context, id string) (*GroupMatch, error) {
    return s.repo.GetGroupMatch(ctx, id)
}

func (s *service) ListGroupMatches(ctx context.Context, profileID string) ([]*GroupMatch, error) {
    return s.repo.ListForProfile(ctx, profileID)
}

func (s *service) ListOpenGroupMatches(ctx context.Context, limit int) ([]*GroupMatch, error) {
    if limit <= 0 || limit > 100 {
        limit = 50
    }
    return s.repo.ListOpen(ctx, limit)
}

func (s *service) FindSuitableActivity(ctx context.Context, group CompatibilityGroup) (*activity.Activity, error) {
    return FindSuitableActivity(ctx, s.activities, group, s.rules)
}

func (s *service) AlreadyGrouped(ctx context.Context, profileIDs []string) (bool, error) {
    return s.repo.MembersShareGroup(ctx, dedupe(profileIDs))
}

func describe(title string) string {
    return "Group hike: " + title
}

func dedupe(ids []string) []string {
    seen := make(map[string]bool, len(ids))
    out := make([]string, 0, len(ids))
    for _, id := range ids {
        if id == "" || seen[id] {
            continue
        }
        seen[id] = true
        out = append(out, id)
    }
    return out
}
