// Spotify API implementation of [PlaylistAPI]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultRedirectURI = "http://127.0.0.1:3000/callback"
)

// Scopes are the OAuth2 scopes needed to read and rewrite the user's playlists.
var Scopes = []string{
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"playlist-modify-public",
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
	URI         string `json:"uri"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyItem is the track-or-episode object inside a playlist item.
type SpotifyItem struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"` // track, episode
	URI     string          `json:"uri"`
	IsLocal bool            `json:"is_local"`
	Artists []SpotifyArtist `json:"artists"`
}

// SpotifyPlaylistItem represents an entry within a playlist. Track is nil for unavailable items.
type SpotifyPlaylistItem struct {
	AddedAt string       `json:"added_at"`
	IsLocal bool         `json:"is_local"`
	Track   *SpotifyItem `json:"track"`
}

// SpotifyPaginatedItems represents a page of playlist items.
type SpotifyPaginatedItems struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	SnapshotID  string               `json:"snapshot_id"`
	Tracks      simplePlaylistTracks `json:"tracks"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

type snapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

type removeItem struct {
	URI       string `json:"uri"`
	Positions []int  `json:"positions"`
}

type removeRequest struct {
	Tracks     []removeItem `json:"tracks"`
	SnapshotID string       `json:"snapshot_id,omitempty"`
}

type addRequest struct {
	URIs     []string `json:"uris"`
	Position int      `json:"position"`
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the service at a different API root, such as a test server.
func WithBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the transport used beneath the OAuth2 client.
func WithHTTPClient(c *http.Client) SpotifyOption {
	return func(s *SpotifyService) { s.baseClient = c }
}

// WithRateLimit caps outgoing requests per second. A non-positive rps disables throttling.
func WithRateLimit(rps float64) SpotifyOption {
	return func(s *SpotifyService) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithPageSize sets the page size for list endpoints, clamped to 1..50.
func WithPageSize(n int) SpotifyOption {
	return func(s *SpotifyService) { s.pageSize = min(max(n, 1), DefaultPageSize) }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = l }
}

// SpotifyService implements [PlaylistAPI] against the Spotify Web API.
// Uses [oauth2] for authentication and a [rate.Limiter] to pace requests.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	baseClient     *http.Client
	credentials    map[string]string
	baseURL        string
	pageSize       int
	limiter        *rate.Limiter
	logger         *log.Logger
	onTokenRefresh func(*oauth2.Token)
	mu             sync.RWMutex
}

var (
	_ PlaylistAPI  = (*SpotifyService)(nil)
	_ OAuthService = (*SpotifyService)(nil)
)

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		baseClient:  http.DefaultClient,
		credentials: credentials,
		baseURL:     spotifyBaseURL,
		pageSize:    DefaultPageSize,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate installs credentials from an "access_token" (with optional "refresh_token" and RFC 3339 "expiry")
// or exchanges an "auth_code".
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		token := &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		}
		if exp, ok := credentials["expiry"]; ok && exp != "" {
			if t, err := time.Parse(time.RFC3339, exp); err == nil {
				token.Expiry = t
			}
		}
		return s.OAuthenticate(ctx, token)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(s.clientContext(ctx), authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code in credentials", shared.ErrMissingCredentials)
}

// OAuthenticate installs token and builds a refreshing HTTP client from it.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source := &refreshableTokenSource{
		source:   s.config.TokenSource(s.clientContext(context.WithoutCancel(ctx)), token),
		callback: s.onTokenRefresh,
		last:     token.AccessToken,
	}
	s.token = token
	s.httpClient = oauth2.NewClient(s.clientContext(context.WithoutCancel(ctx)), source)
	return nil
}

// SetTokenRefreshCallback registers fn to be called whenever the access token changes.
//
// Must be called before authenticating to take effect.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = fn
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the underlying OAuth2 client configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

func (s *SpotifyService) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
}

func (s *SpotifyService) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return s.baseURL + endpoint
}

// doRequest performs an authenticated, rate limited HTTP request to the Spotify API.
//
// endpoint is either a path relative to the API root or an absolute URL returned by a paginated response.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	s.mu.RLock()
	client, token := s.httpClient, s.token
	s.mu.RUnlock()

	if token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.logger.Debug("spotify request", "method", method, "endpoint", endpoint)

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := newAPIError(resp, data)
		s.logger.Debug("spotify error", "status", apiErr.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PlaylistItems retrieves one page of a playlist's items, episodes included.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID, pageToken string) (*ItemPage, error) {
	endpoint := pageToken
	if endpoint == "" {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(s.pageSize))
		q.Set("offset", "0")
		q.Set("additional_types", "track,episode")
		endpoint = fmt.Sprintf("/playlists/%s/tracks?%s", url.PathEscape(playlistID), q.Encode())
	}

	var response SpotifyPaginatedItems
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &ItemPage{Total: response.Total, Entries: make([]models.PlaylistEntry, 0, len(response.Items))}
	for _, item := range response.Items {
		page.Entries = append(page.Entries, item.Entry())
	}
	if response.Next != nil {
		page.Next = *response.Next
	}
	return page, nil
}

// Entry converts a playlist item into a [models.PlaylistEntry].
//
// Local files, episodes and unavailable items become other media.
func (i SpotifyPlaylistItem) Entry() models.PlaylistEntry {
	switch {
	case i.Track == nil:
		return models.NewOtherEntry("unavailable")
	case i.IsLocal || i.Track.IsLocal:
		return models.NewOtherEntry("local")
	case i.Track.Type != "" && i.Track.Type != "track":
		return models.NewOtherEntry(i.Track.Type)
	case i.Track.ID == "":
		return models.NewOtherEntry("unavailable")
	}

	names := make([]string, 0, len(i.Track.Artists))
	for _, a := range i.Track.Artists {
		names = append(names, a.Name)
	}
	return models.NewTrackEntry(i.Track.ID, i.Track.URI, i.Track.Name, strings.Join(names, ", "))
}

// PlaylistMetadata retrieves the item count and snapshot id of a playlist.
func (s *SpotifyService) PlaylistMetadata(ctx context.Context, playlistID string) (*models.PlaylistMetadata, error) {
	endpoint := fmt.Sprintf("/playlists/%s?fields=%s", url.PathEscape(playlistID), url.QueryEscape("snapshot_id,tracks.total"))

	var response struct {
		SnapshotID string               `json:"snapshot_id"`
		Tracks     simplePlaylistTracks `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &models.PlaylistMetadata{TotalCount: response.Tracks.Total, SnapshotID: response.SnapshotID}, nil
}

// RemoveItems removes items at their positions. Records sharing a locator are sent as one object with several
// positions.
func (s *SpotifyService) RemoveItems(ctx context.Context, playlistID, snapshotID string, items []models.TrackRecord) (string, error) {
	if len(items) == 0 {
		return snapshotID, nil
	}
	if len(items) > MaxBatchSize {
		return "", fmt.Errorf("%w: at most %d items per request, got %d", shared.ErrInvalidArgument, MaxBatchSize, len(items))
	}

	body := removeRequest{SnapshotID: snapshotID}
	index := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := index[it.Locator]; ok {
			body.Tracks[i].Positions = append(body.Tracks[i].Positions, it.Position)
			continue
		}
		index[it.Locator] = len(body.Tracks)
		body.Tracks = append(body.Tracks, removeItem{URI: it.Locator, Positions: []int{it.Position}})
	}

	var response snapshotResponse
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodDelete, endpoint, body, &response); err != nil {
		return "", err
	}
	return response.SnapshotID, nil
}

// AddItems inserts locators at position.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, locators []string, position int) (string, error) {
	if len(locators) == 0 {
		return "", nil
	}
	if len(locators) > MaxBatchSize {
		return "", fmt.Errorf("%w: at most %d items per request, got %d", shared.ErrInvalidArgument, MaxBatchSize, len(locators))
	}

	var response snapshotResponse
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, addRequest{URIs: locators, Position: position}, &response); err != nil {
		return "", err
	}
	return response.SnapshotID, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, pageToken string) (*PlaylistPage, error) {
	endpoint := pageToken
	if endpoint == "" {
		endpoint = fmt.Sprintf("/me/playlists?limit=%d&offset=0", s.pageSize)
	}

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &PlaylistPage{Total: response.Total, Playlists: make([]models.Playlist, 0, len(response.Items))}
	for _, sp := range response.Items {
		owner := sp.Owner.DisplayName
		if owner == "" {
			owner = sp.Owner.ID
		}
		page.Playlists = append(page.Playlists, models.Playlist{
			ID:          sp.ID,
			Name:        sp.Name,
			Owner:       owner,
			Description: sp.Description,
			TrackCount:  sp.Tracks.Total,
			Public:      sp.Public,
			SnapshotID:  sp.SnapshotID,
		})
	}
	if response.Next != nil {
		page.Next = *response.Next
	}
	return page, nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports every new access token to callback.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
	mu       sync.Mutex
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}
