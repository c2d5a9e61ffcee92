package profile

import (
    "bytes"
    "context"
    "fmt"
    "sort"
    "sync"
    "testing"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// memoryRepository is an in-memory Repository for service tests
type memoryRepository struct {
    mu          sync.Mutex
    txMu        sync.Mutex
    profiles    map[string]*Profile
    order       []string
    interests   map[string]Interest
    levels      map[string]SkillLevel
    artists     map[string]Artist // by spotify id
    userSkills  map[string][]SkillSelection
    userInts    map[string][]string
    userArtists map[string][]UserArtist
    swiped      map[string]map[string]bool
}

func newMemoryRepository() *memoryRepository {
    return &memoryRepository{
        profiles: map[string]*Profile{},
        interests: map[string]Interest{
            "camping":     {ID: "camping", Name: "Camping"},
            "photography": {ID: "photography", Name: "Photography"},
            "climbing":    {ID: "climbing", Name: "Climbing"},
        },
        levels: map[string]SkillLevel{
            "EXPERIENCE_1": {ID: "EXPERIENCE_1", SkillID: "EXPERIENCE", Name: "Beginner", NumericValue: 1},
            "EXPERIENCE_2": {ID: "EXPERIENCE_2", SkillID: "EXPERIENCE", Name: "Intermediate", NumericValue: 2},
            "PACE_1":       {ID: "PACE_1", SkillID: "PACE", Name: "Slow", NumericValue: 1},
        },
        artists:     map[string]Artist{},
        userSkills:  map[string][]SkillSelection{},
        userInts:    map[string][]string{},
        userArtists: map[string][]UserArtist{},
        swiped:      map[string]map[string]bool{},
    }
}

func (m *memoryRepository) addProfile(p Profile) {
    m.mu.Lock()
    defer m.mu.Unlock()
    cp := p
    m.profiles[p.ID] = &cp
    m.order = append(m.order, p.ID)
}

func (m *memoryRepository) WithTx(ctx context.Context, fn func(repo Repository) error) error {
    m.txMu.Lock()
    defer m.txMu.Unlock()
    return fn(m)
}

func (m *memoryRepository) CreateIfMissing(ctx context.Context, id string, email *string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if _, ok := m.profiles[id]; !ok {
        m.profiles[id] = &Profile{ID: id, Email: email}
        m.order = append(m.order, id)
    }
    return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.profiles[id]
    if !ok {
        return nil, ErrProfileNotFound
    }
    cp := *p
    m.loadRelationsLocked(&cp)
    return &cp, nil
}

func (m *memoryRepository) loadRelationsLocked(p *Profile) {
    p.Interests = []UserInterest{}
    for _, id := range m.userInts[p.ID] {
        p.Interests = append(p.Interests, UserInterest{InterestID: id, Name: m.interests[id].Name})
    }
    p.Skills = []UserSkill{}
    for _, s := range m.userSkills[p.ID] {
        l := m.levels[s.SkillLevelID]
        p.Skills = append(p.Skills, UserSkill{SkillID: s.SkillID, SkillLevelID: l.ID, LevelName: l.Name, NumericValue: l.NumericValue})
    }
    p.Artists = append([]UserArtist{}, m.userArtists[p.ID]...)
}

func (m *memoryRepository) LoadRelations(ctx context.Context, p *Profile) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.loadRelationsLocked(p)
    return nil
}

func (m *memoryRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    seen := map[string]bool{}
    for _, id := range ids {
        if _, ok := m.profiles[id]; ok {
            seen[id] = true
        }
    }
    return len(seen), nil
}

func (m *memoryRepository) mutate(id string, fn func(p *Profile)) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.profiles[id]
    if !ok {
        return ErrProfileNotFound
    }
    fn(p)
    return nil
}

func (m *memoryRepository) Update(ctx context.Context, id string, req *UpdateProfileRequest) error {
    return m.mutate(id, func(p *Profile) {
        if req.DisplayName != nil {
            p.DisplayName = req.DisplayName
        }
        if req.Age != nil {
            p.Age = req.Age
        }
        if req.Location != nil {
            p.Location = req.Location
        }
        if req.DogFriendly != nil {
            p.DogFriendly = *req.DogFriendly
        }
    })
}

func (m *memoryRepository) SetBasicInfo(ctx context.Context, id string, step *BasicInfoStep) error {
    return m.mutate(id, func(p *Profile) {
        name, age := step.DisplayName, step.Age
        p.DisplayName, p.Age, p.Gender, p.Location = &name, &age, step.Gender, step.Location
    })
}

func (m *memoryRepository) SetPreferences(ctx context.Context, id string, step *PreferencesStep) error {
    return m.mutate(id, func(p *Profile) {
        p.DogFriendly = step.DogFriendly
        if step.Phone != nil {
            p.Phone = step.Phone
        }
    })
}

func (m *memoryRepository) MarkOnboardingCompleted(ctx context.Context, id string) error {
    return m.mutate(id, func(p *Profile) { p.OnboardingCompleted = true })
}

func (m *memoryRepository) SetImageURL(ctx context.Context, id string, url string) error {
    return m.mutate(id, func(p *Profile) { p.ImageURL = &url })
}

func (m *memoryRepository) SetSpotifyConnected(ctx context.Context, id string, connected bool) error {
    return m.mutate(id, func(p *Profile) { p.SpotifyConnected = connected })
}

func (m *memoryRepository) CountInterests(ctx context.Context, ids []string) (int, error) {
    count := 0
    for _, id := range ids {
        if _, ok := m.interests[id]; ok {
            count++
        }
    }
    return count, nil
}

func (m *memoryRepository) ReplaceInterests(ctx context.Context, profileID string, interestIDs []string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.userInts[profileID] = append([]string{}, interestIDs...)
    return nil
}

func (m *memoryRepository) GetSkillLevels(ctx context.Context, levelIDs []string) ([]SkillLevel, error) {
    var out []SkillLevel
    for _, id := range levelIDs {
        if l, ok := m.levels[id]; ok {
            out = append(out, l)
        }
    }
    return out, nil
}

func (m *memoryRepository) ReplaceSkills(ctx context.Context, profileID string, skills []SkillSelection) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.userSkills[profileID] = append([]SkillSelection{}, skills...)
    return nil
}

func (m *memoryRepository) UpsertArtist(ctx context.Context, artist *ArtistInput) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    a, ok := m.artists[artist.SpotifyID]
    if !ok {
        a = Artist{ID: uuid.New().String(), SpotifyID: artist.SpotifyID}
    }
    a.Name = artist.Name
    a.Genres = artist.Genres
    m.artists[artist.SpotifyID] = a
    return a.ID, nil
}

func (m *memoryRepository) ReplaceArtists(ctx context.Context, profileID string, artistIDs []string, hidden []bool) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    byID := map[string]Artist{}
    for _, a := range m.artists {
        byID[a.ID] = a
    }
    links := []UserArtist{}
    for i, id := range artistIDs {
        links = append(links, UserArtist{Artist: byID[id], Hidden: hidden[i]})
    }
    m.userArtists[profileID] = links
    return nil
}

func (m *memoryRepository) SetArtistHidden(ctx context.Context, profileID, spotifyID string, hidden bool) (bool, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    for i, ua := range m.userArtists[profileID] {
        if ua.SpotifyID == spotifyID {
            m.userArtists[profileID][i].Hidden = hidden
            return true, nil
        }
    }
    return false, nil
}

func (m *memoryRepository) ListInterests(ctx context.Context) ([]Interest, error) {
    out := []Interest{}
    for _, i := range m.interests {
        out = append(out, i)
    }
    sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
    return out, nil
}

func (m *memoryRepository) ListSkills(ctx context.Context) ([]Skill, error) {
    skills := map[string]*Skill{}
    for _, l := range m.levels {
        if skills[l.SkillID] == nil {
            skills[l.SkillID] = &Skill{ID: l.SkillID, Name: l.SkillID}
        }
        skills[l.SkillID].Levels = append(skills[l.SkillID].Levels, l)
    }
    out := []Skill{}
    for _, s := range skills {
        out = append(out, *s)
    }
    sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
    return out, nil
}

func (m *memoryRepository) Feed(ctx context.Context, userID string, limit int) ([]*Profile, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []*Profile
    for _, id := range m.order {
        p := m.profiles[id]
        if id == userID || !p.OnboardingCompleted || m.swiped[userID][id] {
            continue
        }
        cp := *p
        m.loadRelationsLocked(&cp)
        out = append(out, &cp)
        if len(out) == limit {
            break
        }
    }
    return out, nil
}

func (m *memoryRepository) ListEligibleIDs(ctx context.Context) ([]string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    ids := []string{}
    for _, id := range m.order {
        if p := m.profiles[id]; p.OnboardingCompleted && p.Age != nil {
            ids = append(ids, id)
        }
    }
    return ids, nil
}

func (m *memoryRepository) GetContacts(ctx context.Context, ids []string) ([]Contact, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    out := []Contact{}
    for _, id := range ids {
        if p, ok := m.profiles[id]; ok {
            out = append(out, Contact{ProfileID: id, DisplayName: p.DisplayName, Email: p.Email, Phone: p.Phone})
        }
    }
    return out, nil
}

// memoryImageStore records stored and deleted URLs
type memoryImageStore struct {
    stored  []string
    deleted []string
}

func (s *memoryImageStore) Put(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
    url := fmt.Sprintf("mem://%s/%d", folder, len(s.stored))
    s.stored = append(s.stored, url)
    return url, nil
}

func (s *memoryImageStore) Delete(ctx context.Context, url string) error {
    s.deleted = append(s.deleted, url)
    return nil
}

func (s *memoryImageStore) Owns(url string) bool {
    return len(url) > 6 && url[:6] == "mem://"
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestOnboardingFlow(t *testing.T) {
    ctx := context.Background()
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 2)
    id := uuid.New().String()

    _, err := svc.EnsureProfile(ctx, id, "anna@example.com")
    require.NoError(t, err)

    t.Run("complete before basic info fails", func(t *testing.T) {
        _, err := svc.SubmitStep(ctx, id, &CompleteStep{})
        assert.ErrorIs(t, err, ErrOnboardingIncomplete)
    })

    t.Run("all steps", func(t *testing.T) {
        _, err := svc.SubmitStep(ctx, id, &BasicInfoStep{DisplayName: "Anna", Age: 31})
        require.NoError(t, err)
        _, err = svc.SubmitStep(ctx, id, &InterestsStep{InterestIDs: []string{"camping", "photography"}})
        require.NoError(t, err)
        _, err = svc.SubmitStep(ctx, id, &SkillsStep{Skills: []SkillSelection{{SkillID: "EXPERIENCE", SkillLevelID: "EXPERIENCE_2"}}})
        require.NoError(t, err)
        _, err = svc.SubmitStep(ctx, id, &PreferencesStep{DogFriendly: true})
        require.NoError(t, err)

        p, err := svc.SubmitStep(ctx, id, &CompleteStep{})
        require.NoError(t, err)
        assert.True(t, p.OnboardingCompleted)
        assert.True(t, p.EligibleForGrouping())
        assert.True(t, p.DogFriendly)
        assert.ElementsMatch(t, []string{"camping", "photography"}, p.InterestIDs())
        assert.Equal(t, map[string]int{"EXPERIENCE": 2}, p.SkillLevels())
        assert.Equal(t, []int{2}, p.ExperienceLevels())
    })
}

func TestSetInterestsRejectsUnknown(t *testing.T) {
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 1)
    repo.addProfile(Profile{ID: "p1"})

    _, err := svc.SetInterests(context.Background(), "p1", []string{"camping", "knitting"})
    assert.ErrorIs(t, err, ErrUnknownInterest)

    _, err = svc.SetInterests(context.Background(), "missing", []string{"camping"})
    assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestSetSkillsLevelMustBelongToSkill(t *testing.T) {
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 1)
    repo.addProfile(Profile{ID: "p1"})

    _, err := svc.SetSkills(context.Background(), "p1", []SkillSelection{{SkillID: "EXPERIENCE", SkillLevelID: "PACE_1"}})
    assert.ErrorIs(t, err, ErrUnknownSkillLevel)

    _, err = svc.SetSkills(context.Background(), "p1", []SkillSelection{{SkillID: "EXPERIENCE", SkillLevelID: "EXPERIENCE_9"}})
    assert.ErrorIs(t, err, ErrUnknownSkillLevel)

    p, err := svc.SetSkills(context.Background(), "p1", []SkillSelection{{SkillID: "PACE", SkillLevelID: "PACE_1"}})
    require.NoError(t, err)
    assert.Equal(t, map[string]int{"PACE": 1}, p.SkillLevels())
    assert.Empty(t, p.ExperienceLevels())
}

func TestImportArtistsAndVisibility(t *testing.T) {
    ctx := context.Background()
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 1)
    repo.addProfile(Profile{ID: "p1", Email: strPtr("p1@example.com")})

    p, err := svc.ConnectSpotify(ctx, "p1", []ArtistInput{
        {SpotifyID: "sp1", Name: "Bon Iver", Genres: []string{"indie folk"}},
        {SpotifyID: "sp2", Name: "Khruangbin"},
        {SpotifyID: "sp1", Name: "Bon Iver"},
    })
    require.NoError(t, err)
    assert.True(t, p.SpotifyConnected)
    assert.Len(t, p.Artists, 2)

    require.NoError(t, svc.SetArtistHidden(ctx, "p1", "sp2", true))
    assert.ErrorIs(t, svc.SetArtistHidden(ctx, "p1", "sp404", true), ErrArtistNotFound)

    public, err := svc.GetPublicProfile(ctx, "p1")
    require.NoError(t, err)
    assert.Nil(t, public.Email)
    require.Len(t, public.Artists, 1)
    assert.Equal(t, "sp1", public.Artists[0].SpotifyID)
}

func TestUpdateProfile(t *testing.T) {
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 1)
    repo.addProfile(Profile{ID: "p1"})

    _, err := svc.UpdateProfile(context.Background(), "p1", &UpdateProfileRequest{})
    assert.ErrorIs(t, err, ErrNothingToUpdate)

    p, err := svc.UpdateProfile(context.Background(), "p1", &UpdateProfileRequest{Location: strPtr("Innsbruck")})
    require.NoError(t, err)
    assert.Equal(t, "Innsbruck", *p.Location)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
    ctx := context.Background()
    repo := newMemoryRepository()
    store := &memoryImageStore{}
    svc := NewService(repo, store, 1)
    repo.addProfile(Profile{ID: "p1"})

    png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

    first, err := svc.UploadImage(ctx, "p1", bytes.NewReader(png))
    require.NoError(t, err)
    second, err := svc.UploadImage(ctx, "p1", bytes.NewReader(png))
    require.NoError(t, err)

    assert.NotEqual(t, *first.ImageURL, *second.ImageURL)
    assert.Equal(t, []string{*first.ImageURL}, store.deleted)

    _, err = svc.UploadImage(ctx, "p1", bytes.NewReader([]byte("plain text is not an image")))
    assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestListEligibleKeepsOrder(t *testing.T) {
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 3)

    var want []string
    for i := 0; i < 12; i++ {
        id := fmt.Sprintf("p%02d", i)
        p := Profile{ID: id, OnboardingCompleted: true, Age: intPtr(30)}
        if i%4 == 0 {
            p.Age = nil
        }
        repo.addProfile(p)
        if p.Age != nil {
            want = append(want, id)
        }
    }

    profiles, err := svc.ListEligible(context.Background())
    require.NoError(t, err)

    got := make([]string, 0, len(profiles))
    for _, p := range profiles {
        got = append(got, p.ID)
    }
    assert.Equal(t, want, got)
}

func TestFeedExcludesSelfAndSwiped(t *testing.T) {
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 1)
    for _, id := range []string{"me", "a", "b", "c"} {
        repo.addProfile(Profile{ID: id, OnboardingCompleted: id != "c", Email: strPtr(id + "@example.com")})
    }
    repo.swiped["me"] = map[string]bool{"a": true}

    feed, err := svc.Feed(context.Background(), "me", 10)
    require.NoError(t, err)
    require.Len(t, feed, 1)
    assert.Equal(t, "b", feed[0].ID)
    assert.Nil(t, feed[0].Email)
}

func TestExists(t *testing.T) {
    repo := newMemoryRepository()
    svc := NewService(repo, &memoryImageStore{}, 1)
    repo.addProfile(Profile{ID: "a"})
    repo.addProfile(Profile{ID: "b"})

    ok, err := svc.Exists(context.Background(), "a", "b", "a")
    require.NoError(t, err)
    assert.True(t, ok)

    ok, err = svc.Exists(context.Background(), "a", "zzz")
    require.NoError(t, err)
    assert.False(t, ok)
}
