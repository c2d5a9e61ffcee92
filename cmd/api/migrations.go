// cmd/api/migrations.go

package main

import (
    "context"
    "fmt"
    "log"

    "github.com/jmoiron/sqlx"
)

// Schema statements are idempotent so they run on every start
var migrations = []string{
    // Profiles and their catalog relations
    `CREATE TABLE IF NOT EXISTS profiles (
        id TEXT PRIMARY KEY,
        email TEXT,
        phone TEXT,
        display_name TEXT,
        age INTEGER CHECK (age IS NULL OR age >= 18),
        gender TEXT,
        location TEXT,
        image_url TEXT,
        dog_friendly BOOLEAN NOT NULL DEFAULT FALSE,
        spotify_connected BOOLEAN NOT NULL DEFAULT FALSE,
        onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
    `CREATE TABLE IF NOT EXISTS interests (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL
    )`,
    `CREATE TABLE IF NOT EXISTS user_interests (
        profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        interest_id TEXT NOT NULL REFERENCES interests(id) ON DELETE CASCADE,
        PRIMARY KEY (profile_id, interest_id)
    )`,
    `CREATE TABLE IF NOT EXISTS skills (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        display_name TEXT NOT NULL
    )`,
    `CREATE TABLE IF NOT EXISTS skill_levels (
        id TEXT PRIMARY KEY,
        skill_id TEXT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
        name TEXT NOT NULL,
        numeric_value INTEGER NOT NULL
    )`,
    `CREATE TABLE IF NOT EXISTS user_skills (
        profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        skill_id TEXT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
        skill_level_id TEXT NOT NULL REFERENCES skill_levels(id),
        PRIMARY KEY (profile_id, skill_id)
    )`,
    `CREATE TABLE IF NOT EXISTS artists (
        id TEXT PRIMARY KEY,
        spotify_id TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL,
        image_url TEXT
    )`,
    `CREATE TABLE IF NOT EXISTS genres (
        id BIGSERIAL PRIMARY KEY,
        artist_id TEXT NOT NULL REFERENCES artists(id) ON DELETE CASCADE,
        name TEXT NOT NULL,
        UNIQUE (artist_id, name)
    )`,
    `CREATE TABLE IF NOT EXISTS user_artists (
        profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        artist_id TEXT NOT NULL REFERENCES artists(id) ON DELETE CASCADE,
        hidden BOOLEAN NOT NULL DEFAULT FALSE,
        PRIMARY KEY (profile_id, artist_id)
    )`,

    // Activity catalog (filled by the tour import)
    `CREATE TABLE IF NOT EXISTS activities (
        id BIGINT PRIMARY KEY,
        title TEXT NOT NULL,
        teaser_text TEXT,
        description TEXT,
        category TEXT,
        difficulty INTEGER NOT NULL DEFAULT 0,
        landscape_rating INTEGER,
        experience_rating INTEGER,
        stamina_rating INTEGER,
        length DOUBLE PRECISION,
        ascent INTEGER,
        descent INTEGER,
        duration_min INTEGER,
        min_altitude INTEGER,
        max_altitude INTEGER,
        point_lat DOUBLE PRECISION,
        point_lon DOUBLE PRECISION,
        is_winter BOOLEAN NOT NULL DEFAULT FALSE,
        is_closed BOOLEAN NOT NULL DEFAULT FALSE,
        primary_region TEXT
    )`,
    `CREATE INDEX IF NOT EXISTS idx_activities_open_difficulty ON activities (difficulty, id) WHERE is_closed = FALSE`,

    // Swipes and matches
    `CREATE TABLE IF NOT EXISTS user_swipes (
        id TEXT PRIMARY KEY,
        sender_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        receiver_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        action TEXT NOT NULL CHECK (action IN ('like', 'dislike')),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CHECK (sender_id <> receiver_id)
    )`,
    `CREATE INDEX IF NOT EXISTS idx_user_swipes_pair ON user_swipes (sender_id, receiver_id, action)`,
    `CREATE INDEX IF NOT EXISTS idx_user_swipes_receiver ON user_swipes (receiver_id, action)`,
    `CREATE TABLE IF NOT EXISTS activity_swipes (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        activity_id BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
        action TEXT NOT NULL CHECK (action IN ('like', 'dislike')),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (user_id, activity_id)
    )`,
    `CREATE TABLE IF NOT EXISTS matches (
        id TEXT PRIMARY KEY,
        user1_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        user2_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (user1_id, user2_id),
        CHECK (user1_id < user2_id)
    )`,

    // Chat
    `CREATE TABLE IF NOT EXISTS chat_rooms (
        id TEXT PRIMARY KEY,
        name TEXT,
        is_group BOOLEAN NOT NULL DEFAULT FALSE,
        match_id TEXT UNIQUE REFERENCES matches(id) ON DELETE SET NULL,
        last_message_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
    `CREATE TABLE IF NOT EXISTS participants (
        id TEXT PRIMARY KEY,
        chat_room_id TEXT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
        profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE (chat_room_id, profile_id)
    )`,
    `CREATE INDEX IF NOT EXISTS idx_participants_profile ON participants (profile_id)`,
    // sender_id has no foreign key: the assistant posts without a profile row
    `CREATE TABLE IF NOT EXISTS messages (
        id TEXT PRIMARY KEY,
        chat_room_id TEXT NOT NULL REFERENCES chat_rooms(id) ON DELETE CASCADE,
        sender_id TEXT NOT NULL,
        content TEXT NOT NULL,
        is_ai BOOLEAN NOT NULL DEFAULT FALSE,
        metadata JSONB,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
    `CREATE INDEX IF NOT EXISTS idx_messages_room_created ON messages (chat_room_id, created_at DESC)`,

    // Group matches
    `CREATE TABLE IF NOT EXISTS group_matches (
        id TEXT PRIMARY KEY,
        description TEXT NOT NULL,
        chat_room_id TEXT NOT NULL REFERENCES chat_rooms(id),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
    `CREATE TABLE IF NOT EXISTS group_match_hikes (
        id TEXT PRIMARY KEY,
        group_match_id TEXT NOT NULL REFERENCES group_matches(id) ON DELETE CASCADE,
        activity_id BIGINT NOT NULL REFERENCES activities(id),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
    `CREATE TABLE IF NOT EXISTS profile_group_suggestions (
        profile_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        group_match_id TEXT NOT NULL REFERENCES group_matches(id) ON DELETE CASCADE,
        has_accepted BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (profile_id, group_match_id)
    )`,

    // Skill catalog used by onboarding and group formation
    `INSERT INTO skills (id, name, display_name) VALUES
        ('EXPERIENCE', 'experience', 'Hiking experience'),
        ('DISTANCE', 'distance', 'Preferred distance'),
        ('PACE', 'pace', 'Walking pace')
     ON CONFLICT (id) DO NOTHING`,
    `INSERT INTO skill_levels (id, skill_id, name, numeric_value) VALUES
        ('EXPERIENCE_1', 'EXPERIENCE', 'Beginner', 1),
        ('EXPERIENCE_2', 'EXPERIENCE', 'Intermediate', 2),
        ('EXPERIENCE_3', 'EXPERIENCE', 'Advanced', 3),
        ('DISTANCE_1', 'DISTANCE', 'Short', 1),
        ('DISTANCE_2', 'DISTANCE', 'Medium', 2),
        ('DISTANCE_3', 'DISTANCE', 'Long', 3),
        ('PACE_1', 'PACE', 'Relaxed', 1),
        ('PACE_2', 'PACE', 'Steady', 2),
        ('PACE_3', 'PACE', 'Fast', 3)
     ON CONFLICT (id) DO NOTHING`,
}

// runMigrations creates missing tables and seeds the skill catalog
func runMigrations(ctx context.Context, db *sqlx.DB) error {
    for i, stmt := range migrations {
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("migration %d failed: %w", i+1, err)
        }
    }
    log.Printf("   - %d schema statements applied", len(migrations))
    return nil
}
