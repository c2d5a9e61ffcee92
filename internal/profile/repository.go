// internal/profile/repository.go

package profile

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

// Repository defines profile data access
type Repository interface {
    WithTx(ctx context.Context, fn func(repo Repository) error) error

    // Profiles
    CreateIfMissing(ctx context.Context, id string, email *string) error
    GetByID(ctx context.Context, id string) (*Profile, error)
    LoadRelations(ctx context.Context, p *Profile) error
    CountExisting(ctx context.Context, ids []string) (int, error)
    Update(ctx context.Context, id string, req *UpdateProfileRequest) error
    SetBasicInfo(ctx context.Context, id string, step *BasicInfoStep) error
    SetPreferences(ctx context.Context, id string, step *PreferencesStep) error
    MarkOnboardingCompleted(ctx context.Context, id string) error
    SetImageURL(ctx context.Context, id string, url string) error
    SetSpotifyConnected(ctx context.Context, id string, connected bool) error

    // Relations
    CountInterests(ctx context.Context, ids []string) (int, error)
    ReplaceInterests(ctx context.Context, profileID string, interestIDs []string) error
    GetSkillLevels(ctx context.Context, levelIDs []string) ([]SkillLevel, error)
    ReplaceSkills(ctx context.Context, profileID string, skills []SkillSelection) error
    UpsertArtist(ctx context.Context, artist *ArtistInput) (string, error)
    ReplaceArtists(ctx context.Context, profileID string, artistIDs []string, hidden []bool) error
    SetArtistHidden(ctx context.Context, profileID, spotifyID string, hidden bool) (bool, error)

    // Catalog
    ListInterests(ctx context.Context) ([]Interest, error)
    ListSkills(ctx context.Context) ([]Skill, error)

    // Discovery
    Feed(ctx context.Context, userID string, limit int) ([]*Profile, error)
    ListEligibleIDs(ctx context.Context) ([]string, error)
    GetContacts(ctx context.Context, ids []string) ([]Contact, error)
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
        // already inside a transaction
        return fn(r)
    }
    return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
        return fn(&postgresRepository{q: tx})
    })
}

const profileColumns = `
    id, email, phone, display_name, age, gender, location, image_url,
    dog_friendly, spotify_connected, onboarding_completed, created_at, updated_at`

func (r *postgresRepository) CreateIfMissing(ctx context.Context, id string, email *string) error {
    query := `
        INSERT INTO profiles (id, email)
        VALUES ($1, $2)
        ON CONFLICT (id) DO NOTHING
    `
    _, err := r.q.ExecContext(ctx, query, id, email)
    return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
    var p Profile
    query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

    err := r.q.GetContext(ctx, &p, query, id)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrProfileNotFound
    }
    if err != nil {
        return nil, err
    }

    if err := r.LoadRelations(ctx, &p); err != nil {
        return nil, err
    }
    return &p, nil
}

func (r *postgresRepository) LoadRelations(ctx context.Context, p *Profile) error {
    p.Interests = []UserInterest{}
    err := r.q.SelectContext(ctx, &p.Interests, `
        SELECT ui.interest_id, i.name
        FROM user_interests ui
        JOIN interests i ON i.id = ui.interest_id
        WHERE ui.profile_id = $1
        ORDER BY ui.interest_id
    `, p.ID)
    if err != nil {
        return fmt.Errorf("failed to load interests: %w", err)
    }

    p.Skills = []UserSkill{}
    err = r.q.SelectContext(ctx, &p.Skills, `
        SELECT us.skill_id, us.skill_level_id, sl.name AS level_name, sl.numeric_value
        FROM user_skills us
        JOIN skill_levels sl ON sl.id = us.skill_level_id
        WHERE us.profile_id = $1
        ORDER BY us.skill_id
    `, p.ID)
    if err != nil {
        return fmt.Errorf("failed to load skills: %w", err)
    }

    rows, err := r.q.QueryxContext(ctx, `
        SELECT a.id, a.spotify_id, a.name, a.image_url, ua.hidden,
               COALESCE(array_agg(g.name ORDER BY g.name) FILTER (WHERE g.name IS NOT NULL), '{}') AS genres
        FROM user_artists ua
        JOIN artists a ON a.id = ua.artist_id
        LEFT JOIN genres g ON g.artist_id = a.id
        WHERE ua.profile_id = $1
        GROUP BY a.id, ua.hidden
        ORDER BY a.name
    `, p.ID)
    if err != nil {
        return fmt.Errorf("failed to load artists: %w", err)
    }
    defer rows.Close()

    p.Artists = []UserArtist{}
    for rows.Next() {
        var ua UserArtist
        var genres pq.StringArray
        if err := rows.Scan(&ua.ID, &ua.SpotifyID, &ua.Name, &ua.ImageURL, &ua.Hidden, &genres); err != nil {
            return fmt.Errorf("failed to scan artist: %w", err)
        }
        ua.Genres = []string(genres)
        p.Artists = append(p.Artists, ua)
    }
    return rows.Err()
}

func (r *postgresRepository) CountExisting(ctx context.Context, ids []string) (int, error) {
    var count int
    err := r.q.GetContext(ctx, &count,
        `SELECT COUNT(DISTINCT id) FROM profiles WHERE id = ANY($1)`, pq.Array(ids))
    return count, err
}

func (r *postgresRepository) Update(ctx context.Context, id string, req *UpdateProfileRequest) error {
    query := `
        UPDATE profiles SET
            display_name = COALESCE($2, display_name),
            age = COALESCE($3, age),
            gender = COALESCE($4, gender),
            location = COALESCE($5, location),
            phone = COALESCE($6, phone),
            dog_friendly = COALESCE($7, dog_friendly),
            updated_at = NOW()
        WHERE id = $1
    `
    return r.execOne(ctx, query, id, req.DisplayName, req.Age, req.Gender, req.Location, req.Phone, req.DogFriendly)
}

func (r *postgresRepository) SetBasicInfo(ctx context.Context, id string, step *BasicInfoStep) error {
    query := `
        UPDATE profiles
        SET display_name = $2, age = $3, gender = $4, location = $5, updated_at = NOW()
        WHERE id = $1
    `
    return r.execOne(ctx, query, id, step.DisplayName, step.Age, step.Gender, step.Location)
}

func (r *postgresRepository) SetPreferences(ctx context.Context, id string, step *PreferencesStep) error {
    query := `
        UPDATE profiles
        SET dog_friendly = $2, phone = COALESCE($3, phone), updated_at = NOW()
        WHERE id = $1
    `
    return r.execOne(ctx, query, id, step.DogFriendly, step.Phone)
}

func (r *postgresRepository) MarkOnboardingCompleted(ctx context.Context, id string) error {
    return r.execOne(ctx,
        `UPDATE profiles SET onboarding_completed = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *postgresRepository) SetImageURL(ctx context.Context, id string, url string) error {
    return r.execOne(ctx,
        `UPDATE profiles SET image_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
}

func (r *postgresRepository) SetSpotifyConnected(ctx context.Context, id string, connected bool) error {
    return r.execOne(ctx,
        `UPDATE profiles SET spotify_connected = $2, updated_at = NOW() WHERE id = $1`, id, connected)
}

func (r *postgresRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
    result, err := r.q.ExecContext(ctx, query, args...)
    if err != nil {
        return err
    }
    affected, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrProfileNotFound
    }
    return nil
}

func (r *postgresRepository) CountInterests(ctx context.Context, ids []string) (int, error) {
    var count int
    err := r.q.GetContext(ctx, &count,
        `SELECT COUNT(*) FROM interests WHERE id = ANY($1)`, pq.Array(ids))
    return count, err
}

func (r *postgresRepository) ReplaceInterests(ctx context.Context, profileID string, interestIDs []string) error {
    if _, err := r.q.ExecContext(ctx, `DELETE FROM user_interests WHERE profile_id = $1`, profileID); err != nil {
        return err
    }
    if len(interestIDs) == 0 {
        return nil
    }
    _, err := r.q.ExecContext(ctx, `
        INSERT INTO user_interests (profile_id, interest_id)
        SELECT $1, unnest($2::text[])
    `, profileID, pq.Array(interestIDs))
    return err
}

func (r *postgresRepository) GetSkillLevels(ctx context.Context, levelIDs []string) ([]SkillLevel, error) {
    levels := []SkillLevel{}
    err := r.q.SelectContext(ctx, &levels, `
        SELECT id, skill_id, name, numeric_value
        FROM skill_levels
        WHERE id = ANY($1)
    `, pq.Array(levelIDs))
    return levels, err
}

func (r *postgresRepository) ReplaceSkills(ctx context.Context, profileID string, skills []SkillSelection) error {
    if _, err := r.q.ExecContext(ctx, `DELETE FROM user_skills WHERE profile_id = $1`, profileID); err != nil {
        return err
    }
    for _, s := range skills {
        _, err := r.q.ExecContext(ctx, `
            INSERT INTO user_skills (profile_id, skill_id, skill_level_id)
            VALUES ($1, $2, $3)
        `, profileID, s.SkillID, s.SkillLevelID)
        if err != nil {
            return err
        }
    }
    return nil
}

func (r *postgresRepository) UpsertArtist(ctx context.Context, artist *ArtistInput) (string, error) {
    var imageURL *string
    if artist.ImageURL != "" {
        imageURL = &artist.ImageURL
    }

    var id string
    err := r.q.QueryRowxContext(ctx, `
        INSERT INTO artists (id, spotify_id, name, image_url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (spotify_id) DO UPDATE
        SET name = COALESCE(NULLIF(EXCLUDED.name, ''), artists.name),
            image_url = COALESCE(EXCLUDED.image_url, artists.image_url)
        RETURNING id
    `, uuid.New().String(), artist.SpotifyID, artist.Name, imageURL).Scan(&id)
    if err != nil {
        return "", err
    }

    if len(artist.Genres) > 0 {
        _, err = r.q.ExecContext(ctx, `
            INSERT INTO genres (artist_id, name)
            SELECT $1, unnest($2::text[])
            ON CONFLICT (artist_id, name) DO NOTHING
        `, id, pq.Array(artist.Genres))
        if err != nil {
            return "", err
        }
    }
    return id, nil
}

func (r *postgresRepository) ReplaceArtists(ctx context.Context, profileID string, artistIDs []string, hidden []bool) error {
    if _, err := r.q.ExecContext(ctx, `DELETE FROM user_artists WHERE profile_id = $1`, profileID); err != nil {
        return err
    }
    for i, artistID := range artistIDs {
        _, err := r.q.ExecContext(ctx, `
            INSERT INTO user_artists (profile_id, artist_id, hidden)
            VALUES ($1, $2, $3)
            ON CONFLICT (profile_id, artist_id) DO UPDATE SET hidden = EXCLUDED.hidden
        `, profileID, artistID, hidden[i])
        if err != nil {
            return err
        }
    }
    return nil
}

func (r *postgresRepository) SetArtistHidden(ctx context.Context, profileID, spotifyID string, hidden bool) (bool, error) {
    result, err := r.q.ExecContext(ctx, `
        UPDATE user_artists ua SET hidden = $3
        FROM artists a
        WHERE a.id = ua.artist_id AND ua.profile_id = $1 AND a.spotify_id = $2
    `, profileID, spotifyID, hidden)
    if err != nil {
        return false, err
    }
    affected, err := result.RowsAffected()
    return affected > 0, err
}

func (r *postgresRepository) ListInterests(ctx context.Context) ([]Interest, error) {
    interests := []Interest{}
    err := r.q.SelectContext(ctx, &interests, `SELECT id, name FROM interests ORDER BY name`)
    return interests, err
}

func (r *postgresRepository) ListSkills(ctx context.Context) ([]Skill, error) {
    skills := []Skill{}
    if err := r.q.SelectContext(ctx, &skills,
        `SELECT id, name, display_name FROM skills ORDER BY id`); err != nil {
        return nil, err
    }

    var levels []SkillLevel
    if err := r.q.SelectContext(ctx, &levels,
        `SELECT id, skill_id, name, numeric_value FROM skill_levels ORDER BY skill_id, numeric_value`); err != nil {
        return nil, err
    }

    bySkill := make(map[string][]SkillLevel)
    for _, l := range levels {
        bySkill[l.SkillID] = append(bySkill[l.SkillID], l)
    }
    for i := range skills {
        skills[i].Levels = bySkill[skills[i].ID]
        if skills[i].Levels == nil {
            skills[i].Levels = []SkillLevel{}
        }
    }
    return skills, nil
}

func (r *postgresRepository) Feed(ctx context.Context, userID string, limit int) ([]*Profile, error) {
    var profiles []*Profile
    query := `
        SELECT ` + profileColumns + `
        FROM profiles p
        WHERE p.id <> $1
          AND p.onboarding_completed = TRUE
          AND NOT EXISTS (
            SELECT 1 FROM user_swipes s
            WHERE s.sender_id = $1 AND s.receiver_id = p.id
          )
        ORDER BY p.updated_at DESC
        LIMIT $2
    `
    if err := r.q.SelectContext(ctx, &profiles, query, userID, limit); err != nil {
        return nil, err
    }

    for _, p := range profiles {
        if err := r.LoadRelations(ctx, p); err != nil {
            return nil, err
        }
    }
    return profiles, nil
}

func (r *postgresRepository) ListEligibleIDs(ctx context.Context) ([]string, error) {
    ids := []string{}
    err := r.q.SelectContext(ctx, &ids, `
        SELECT id FROM profiles
        WHERE onboarding_completed = TRUE AND age IS NOT NULL
        ORDER BY created_at, id
    `)
    return ids, err
}

func (r *postgresRepository) GetContacts(ctx context.Context, ids []string) ([]Contact, error) {
    contacts := []Contact{}
    err := r.q.SelectContext(ctx, &contacts, `
        SELECT id, display_name, email, phone
        FROM profiles
        WHERE id = ANY($1)
    `, pq.Array(ids))
    return contacts, err
}
