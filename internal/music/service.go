// internal/music/service.go

package music

import (
    "context"
    "errors"
    "fmt"
    "log"

    "github.com/google/uuid"

    "github.com/hyking/hyking-backend/internal/common/errs"
    "github.com/hyking/hyking-backend/internal/profile"
)

var (
    ErrSpotifyDisabled = fmt.Errorf("%w: spotify is not configured", errs.ErrConflict)
    ErrInvalidState    = fmt.Errorf("%w: authorization expired or unknown, start again", errs.ErrInvalidArgument)
    ErrMissingCode     = fmt.Errorf("%w: authorization code is missing", errs.ErrInvalidArgument)
    ErrAccessDenied    = fmt.Errorf("%w: spotify access was denied", errs.ErrInvalidArgument)
)

// ProfileConnector stores imported artists on the profile
type ProfileConnector interface {
    ConnectSpotify(ctx context.Context, userID string, artists []profile.ArtistInput) (*profile.Profile, error)
}

type Service interface {
    AuthURL(ctx context.Context, profileID string) (string, error)
    HandleCallback(ctx context.Context, state, code string) (*profile.Profile, error)
}

type service struct {
    spotify  *SpotifyClient
    states   StateStore
    profiles ProfileConnector
}

// NewService returns the Spotify connect flow. A nil client disables it.
func NewService(spotify *SpotifyClient, states StateStore, profiles ProfileConnector) Service {
    return &service{spotify: spotify, states: states, profiles: profiles}
}

// AuthURL starts an authorization for profileID
func (s *service) AuthURL(ctx context.Context, profileID string) (string, error) {
    if s.spotify == nil || s.states == nil {
        return "", ErrSpotifyDisabled
    }

    state := uuid.New().String()
    if err := s.states.Save(ctx, state, profileID, StateTTL); err != nil {
        return "", err
    }
    return s.spotify.AuthCodeURL(state), nil
}

// HandleCallback finishes the flow: it resolves the profile from state,
// exchanges the code, imports the top artists and marks the profile as
// connected. Spotify failures only fail this call.
func (s *service) HandleCallback(ctx context.Context, state, code string) (*profile.Profile, error) {
    if s.spotify == nil || s.states == nil {
        return nil, ErrSpotifyDisabled
    }
    if code == "" {
        return nil, ErrMissingCode
    }

    profileID, err := s.states.Take(ctx, state)
    if errors.Is(err, errStateUnknown) {
        return nil, ErrInvalidState
    }
    if err != nil {
        return nil, err
    }

    token, err := s.spotify.Exchange(ctx, code)
    if err != nil {
        log.Printf("❌ Spotify token exchange failed for %s: %v", profileID, err)
        return nil, fmt.Errorf("%w: %w", errs.ErrInternal, err)
    }

    artists, err := s.spotify.TopArtists(ctx, token)
    if err != nil {
        log.Printf("❌ Spotify top artists failed for %s: %v", profileID, err)
        return nil, fmt.Errorf("%w: %w", errs.ErrInternal, err)
    }

    p, err := s.profiles.ConnectSpotify(ctx, profileID, artists)
    if err != nil {
        return nil, err
    }

    log.Printf("🎵 Imported %d Spotify artists for %s", len(artists), profileID)
    return p, nil
}
