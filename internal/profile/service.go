// internal/profile/service.go

package profile

import (
    "context"
    "fmt"
    "io"
    "log"

    "golang.org/x/sync/errgroup"

    "github.com/hyking/hyking-backend/internal/common/errs"
)

var (
    ErrProfileNotFound      = fmt.Errorf("profile %w", errs.ErrNotFound)
    ErrArtistNotFound       = fmt.Errorf("artist %w", errs.ErrNotFound)
    ErrUnknownInterest      = fmt.Errorf("%w: unknown interest", errs.ErrInvalidArgument)
    ErrUnknownSkillLevel    = fmt.Errorf("%w: skill level does not belong to skill", errs.ErrInvalidArgument)
    ErrOnboardingIncomplete = fmt.Errorf("%w: display name and age are required to finish onboarding", errs.ErrInvalidArgument)
    ErrNothingToUpdate      = fmt.Errorf("%w: no fields to update", errs.ErrInvalidArgument)
    ErrInvalidImage         = fmt.Errorf("%w: unsupported image", errs.ErrInvalidArgument)
    ErrImageTooLarge        = fmt.Errorf("%w: image exceeds 5MB", errs.ErrInvalidArgument)
)

// Service defines the profile business operations
type Service interface {
    // Own profile
    EnsureProfile(ctx context.Context, userID, email string) (*Profile, error)
    GetProfile(ctx context.Context, userID string) (*Profile, error)
    GetPublicProfile(ctx context.Context, profileID string) (*Profile, error)
    UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error)
    SubmitStep(ctx context.Context, userID string, step Step) (*Profile, error)
    UploadImage(ctx context.Context, userID string, r io.Reader) (*Profile, error)

    // Relations
    SetInterests(ctx context.Context, userID string, interestIDs []string) (*Profile, error)
    SetSkills(ctx context.Context, userID string, skills []SkillSelection) (*Profile, error)
    ImportArtists(ctx context.Context, userID string, artists []ArtistInput) (*Profile, error)
    ConnectSpotify(ctx context.Context, userID string, artists []ArtistInput) (*Profile, error)
    SetArtistHidden(ctx context.Context, userID, spotifyID string, hidden bool) error
    Catalog(ctx context.Context) (*Catalog, error)

    // Used by other engines
    Exists(ctx context.Context, ids ...string) (bool, error)
    Feed(ctx context.Context, userID string, limit int) ([]*Profile, error)
    ListEligible(ctx context.Context) ([]Profile, error)
    GetContacts(ctx context.Context, ids []string) ([]Contact, error)
}

type service struct {
    repo            Repository
    images          ImageStore
    loadConcurrency int
}

// NewService creates a new profile service
func NewService(repo Repository, images ImageStore, loadConcurrency int) Service {
    if loadConcurrency < 1 {
        loadConcurrency = 1
    }
    return &service{
        repo:            repo,
        images:          images,
        loadConcurrency: loadConcurrency,
    }
}

func (s *service) EnsureProfile(ctx context.Context, userID, email string) (*Profile, error) {
    var emailPtr *string
    if email != "" {
        emailPtr = &email
    }
    if err := s.repo.CreateIfMissing(ctx, userID, emailPtr); err != nil {
        return nil, fmt.Errorf("failed to create profile: %w", err)
    }
    return s.repo.GetByID(ctx, userID)
}

func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
    return s.repo.GetByID(ctx, userID)
}

func (s *service) GetPublicProfile(ctx context.Context, profileID string) (*Profile, error) {
    p, err := s.repo.GetByID(ctx, profileID)
    if err != nil {
        return nil, err
    }
    return p.PublicProfile(), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error) {
    if req.Empty() {
        return nil, ErrNothingToUpdate
    }
    if err := s.repo.Update(ctx, userID, req); err != nil {
        return nil, err
    }
    return s.repo.GetByID(ctx, userID)
}

// SubmitStep applies one validated onboarding step
func (s *service) SubmitStep(ctx context.Context, userID string, step Step) (*Profile, error) {
    switch st := step.(type) {
    case *BasicInfoStep:
        if err := s.repo.SetBasicInfo(ctx, userID, st); err != nil {
            return nil, err
        }
    case *InterestsStep:
        return s.SetInterests(ctx, userID, st.InterestIDs)
    case *SkillsStep:
        return s.SetSkills(ctx, userID, st.Skills)
    case *MusicStep:
        return s.ImportArtists(ctx, userID, st.Artists)
    case *PreferencesStep:
        if err := s.repo.SetPreferences(ctx, userID, st); err != nil {
            return nil, err
        }
    case *CompleteStep:
        p, err := s.repo.GetByID(ctx, userID)
        if err != nil {
            return nil, err
        }
        if p.DisplayName == nil || *p.DisplayName == "" || p.Age == nil {
            return nil, ErrOnboardingIncomplete
        }
        if err := s.repo.MarkOnboardingCompleted(ctx, userID); err != nil {
            return nil, err
        }
        log.Printf("Profile %s completed onboarding", userID)
    default:
        return nil, fmt.Errorf("%w: unsupported onboarding step", errs.ErrInvalidArgument)
    }

    return s.repo.GetByID(ctx, userID)
}

func (s *service) UploadImage(ctx context.Context, userID string, r io.Reader) (*Profile, error) {
    current, err := s.repo.GetByID(ctx, userID)
    if err != nil {
        return nil, err
    }

    data, contentType, err := readImage(r)
    if err != nil {
        return nil, err
    }

    url, err := s.images.Put(ctx, "profiles/"+userID, data, contentType)
    if err != nil {
        return nil, fmt.Errorf("failed to store image: %w", err)
    }

    if err := s.repo.SetImageURL(ctx, userID, url); err != nil {
        if delErr := s.images.Delete(ctx, url); delErr != nil {
            log.Printf("Failed to remove orphaned image %s: %v", url, delErr)
        }
        return nil, err
    }

    if current.ImageURL != nil && s.images.Owns(*current.ImageURL) {
        if err := s.images.Delete(ctx, *current.ImageURL); err != nil {
            log.Printf("Failed to delete previous image of %s: %v", userID, err)
        }
    }

    return s.repo.GetByID(ctx, userID)
}

func (s *service) SetInterests(ctx context.Context, userID string, interestIDs []string) (*Profile, error) {
    err := s.repo.WithTx(ctx, func(repo Repository) error {
        if _, err := repo.GetByID(ctx, userID); err != nil {
            return err
        }
        if len(interestIDs) > 0 {
            count, err := repo.CountInterests(ctx, interestIDs)
            if err != nil {
                return err
            }
            if count != len(interestIDs) {
                return ErrUnknownInterest
            }
        }
        return repo.ReplaceInterests(ctx, userID, interestIDs)
    })
    if err != nil {
        return nil, err
    }
    return s.repo.GetByID(ctx, userID)
}

func (s *service) SetSkills(ctx context.Context, userID string, skills []SkillSelection) (*Profile, error) {
    levelIDs := make([]string, 0, len(skills))
    for _, sel := range skills {
        levelIDs = append(levelIDs, sel.SkillLevelID)
    }

    err := s.repo.WithTx(ctx, func(repo Repository) error {
        if _, err := repo.GetByID(ctx, userID); err != nil {
            return err
        }

        levels, err := repo.GetSkillLevels(ctx, levelIDs)
        if err != nil {
            return err
        }
        skillOf := make(map[string]string, len(levels))
        for _, l := range levels {
            skillOf[l.ID] = l.SkillID
        }
        for _, sel := range skills {
            if skillOf[sel.SkillLevelID] != sel.SkillID {
                return ErrUnknownSkillLevel
            }
        }

        return repo.ReplaceSkills(ctx, userID, skills)
    })
    if err != nil {
        return nil, err
    }
    return s.repo.GetByID(ctx, userID)
}

func (s *service) ImportArtists(ctx context.Context, userID string, artists []ArtistInput) (*Profile, error) {
    if err := s.repo.WithTx(ctx, func(repo Repository) error {
        return importArtists(ctx, repo, userID, artists)
    }); err != nil {
        return nil, err
    }
    return s.repo.GetByID(ctx, userID)
}

// ConnectSpotify replaces the artists with the imported ones and flags the
// profile as connected
func (s *service) ConnectSpotify(ctx context.Context, userID string, artists []ArtistInput) (*Profile, error) {
    err := s.repo.WithTx(ctx, func(repo Repository) error {
        if err := importArtists(ctx, repo, userID, artists); err != nil {
            return err
        }
        return repo.SetSpotifyConnected(ctx, userID, true)
    })
    if err != nil {
        return nil, err
    }
    return s.repo.GetByID(ctx, userID)
}

func importArtists(ctx context.Context, repo Repository, userID string, artists []ArtistInput) error {
    if _, err := repo.GetByID(ctx, userID); err != nil {
        return err
    }

    seen := make(map[string]bool, len(artists))
    ids := make([]string, 0, len(artists))
    hidden := make([]bool, 0, len(artists))
    for i := range artists {
        if seen[artists[i].SpotifyID] {
            continue
        }
        seen[artists[i].SpotifyID] = true

        id, err := repo.UpsertArtist(ctx, &artists[i])
        if err != nil {
            return fmt.Errorf("failed to upsert artist %s: %w", artists[i].SpotifyID, err)
        }
        ids = append(ids, id)
        hidden = append(hidden, artists[i].Hidden)
    }
    return repo.ReplaceArtists(ctx, userID, ids, hidden)
}

func (s *service) SetArtistHidden(ctx context.Context, userID, spotifyID string, hidden bool) error {
    found, err := s.repo.SetArtistHidden(ctx, userID, spotifyID, hidden)
    if err != nil {
        return err
    }
    if !found {
        return ErrArtistNotFound
    }
    return nil
}

func (s *service) Catalog(ctx context.Context) (*Catalog, error) {
    interests, err := s.repo.ListInterests(ctx)
    if err != nil {
        return nil, err
    }
    skills, err := s.repo.ListSkills(ctx)
    if err != nil {
        return nil, err
    }
    return &Catalog{Interests: interests, Skills: skills}, nil
}

func (s *service) Exists(ctx context.Context, ids ...string) (bool, error) {
    unique := make(map[string]struct{}, len(ids))
    for _, id := range ids {
        unique[id] = struct{}{}
    }
    count, err := s.repo.CountExisting(ctx, ids)
    if err != nil {
        return false, err
    }
    return count == len(unique), nil
}

func (s *service) Feed(ctx context.Context, userID string, limit int) ([]*Profile, error) {
    profiles, err := s.repo.Feed(ctx, userID, limit)
    if err != nil {
        return nil, err
    }
    for i, p := range profiles {
        profiles[i] = p.PublicProfile()
    }
    return profiles, nil
}

// ListEligible loads every profile eligible for group formation with its
// relations. Lookups run concurrently, bounded by loadConcurrency; the result
// keeps the repository's order.
func (s *service) ListEligible(ctx context.Context) ([]Profile, error) {
    ids, err := s.repo.ListEligibleIDs(ctx)
    if err != nil {
        return nil, fmt.Errorf("failed to list eligible profiles: %w", err)
    }

    profiles := make([]Profile, len(ids))
    g, gctx := errgroup.WithContext(ctx)
    g.SetLimit(s.loadConcurrency)

    for i, id := range ids {
        i, id := i, id
        g.Go(func() error {
            p, err := s.repo.GetByID(gctx, id)
            if err != nil {
                return fmt.Errorf("failed to load profile %s: %w", id, err)
            }
            profiles[i] = *p
            return nil
        })
    }

    if err := g.Wait(); err != nil {
        return nil, err
    }
    return profiles, nil
}

func (s *service) GetContacts(ctx context.Context, ids []string) ([]Contact, error) {
    if len(ids) == 0 {
        return []Contact{}, nil
    }
    return s.repo.GetContacts(ctx, ids)
}
