// internal/music/state.go

package music

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/go-redis/redis/v8"
)

// StateTTL bounds how long an authorization attempt stays valid
const StateTTL = 10 * time.Minute

var errStateUnknown = errors.New("unknown oauth state")

// StateStore remembers which profile started an authorization
type StateStore interface {
    Save(ctx context.Context, state, profileID string, ttl time.Duration) error
    // Take returns the profile for state and forgets it
    Take(ctx context.Context, state string) (string, error)
}

type redisStateStore struct {
    client *redis.Client
}

func NewRedisStateStore(client *redis.Client) StateStore {
    return &redisStateStore{client: client}
}

func stateKey(state string) string {
    return "spotify_oauth_state:" + state
}

func (s *redisStateStore) Save(ctx context.Context, state, profileID string, ttl time.Duration) error {
    if err := s.client.Set(ctx, stateKey(state), profileID, ttl).Err(); err != nil {
        return fmt.Errorf("failed to store oauth state: %w", err)
    }
    return nil
}

func (s *redisStateStore) Take(ctx context.Context, state string) (string, error) {
    profileID, err := s.client.GetDel(ctx, stateKey(state)).Result()
    if errors.Is(err, redis.Nil) {
        return "", errStateUnknown
    }
    if err != nil {
        return "", fmt.Errorf("failed to read oauth state: %w", err)
    }
    return profileID, nil
}
