// internal/music/spotify.go

package music

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"

    "golang.org/x/oauth2"

    "github.com/hyking/hyking-backend/internal/profile"
)

const (
    defaultAuthURL  = "https://accounts.spotify.com/authorize"
    defaultTokenURL = "https://accounts.spotify.com/api/token"
    defaultAPIURL   = "https://api.spotify.com"

    scopeTopRead = "user-top-read"
)

// SpotifyConfig holds the OAuth client settings. Empty URLs fall back to
// Spotify's public endpoints.
type SpotifyConfig struct {
    ClientID     string
    ClientSecret string
    RedirectURL  string
    TopArtists   int

    AuthURL  string
    TokenURL string
    APIURL   string
}

// SpotifyClient runs the authorization code flow and reads the user's top
// artists
type SpotifyClient struct {
    oauth  *oauth2.Config
    apiURL string
    limit  int
}

func NewSpotifyClient(cfg SpotifyConfig) *SpotifyClient {
    authURL, tokenURL, apiURL := cfg.AuthURL, cfg.TokenURL, cfg.APIURL
    if authURL == "" {
        authURL = defaultAuthURL
    }
    if tokenURL == "" {
        tokenURL = defaultTokenURL
    }
    if apiURL == "" {
        apiURL = defaultAPIURL
    }

    limit := cfg.TopArtists
    if limit <= 0 || limit > 50 {
        limit = 10
    }

    return &SpotifyClient{
        oauth: &oauth2.Config{
            ClientID:     cfg.ClientID,
            ClientSecret: cfg.ClientSecret,
            RedirectURL:  cfg.RedirectURL,
            Scopes:       []string{scopeTopRead},
            Endpoint: oauth2.Endpoint{
                AuthURL:   authURL,
                TokenURL:  tokenURL,
                AuthStyle: oauth2.AuthStyleInHeader,
            },
        },
        apiURL: apiURL,
        limit:  limit,
    }
}

// AuthCodeURL is where the user grants access
func (c *SpotifyClient) AuthCodeURL(state string) string {
    return c.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for a token
func (c *SpotifyClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
    token, err := c.oauth.Exchange(ctx, code)
    if err != nil {
        return nil, fmt.Errorf("failed to exchange code: %w", err)
    }
    return token, nil
}

type topArtistsResponse struct {
    Items []struct {
        ID     string   `json:"id"`
        Name   string   `json:"name"`
        Genres []string `json:"genres"`
        Images []struct {
            URL string `json:"url"`
        } `json:"images"`
    } `json:"items"`
}

// TopArtists returns the user's top artists as profile imports
func (c *SpotifyClient) TopArtists(ctx context.Context, token *oauth2.Token) ([]profile.ArtistInput, error) {
    endpoint := c.apiURL + "/v1/me/top/artists?" + url.Values{
        "limit":      {strconv.Itoa(c.limit)},
        "time_range": {"medium_term"},
    }.Encode()

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
    if err != nil {
        return nil, err
    }

    resp, err := c.oauth.Client(ctx, token).Do(req)
    if err != nil {
        return nil, fmt.Errorf("failed to fetch top artists: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusOK {
        body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return nil, fmt.Errorf("spotify returned %d: %s", resp.StatusCode, body)
    }

    var payload topArtistsResponse
    if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
        return nil, fmt.Errorf("failed to decode top artists: %w", err)
    }

    artists := make([]profile.ArtistInput, 0, len(payload.Items))
    for _, item := range payload.Items {
        a := profile.ArtistInput{
            SpotifyID: item.ID,
            Name:      item.Name,
            Genres:    item.Genres,
        }
        if len(item.Images) > 0 {
            a.ImageURL = item.Images[0].URL
        }
        artists = append(artists, a)
    }
    return artists, nil
}
