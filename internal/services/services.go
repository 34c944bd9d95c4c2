// package services defines the playlist API used by the cleaner and its Spotify implementation
package services

import (
	"context"

	"github.com/desertthunder/spotclean/internal/models"
	"golang.org/x/oauth2"
)

const (
	// MaxBatchSize is the most items a single add or remove request may carry.
	MaxBatchSize = 100
	// DefaultPageSize is the page size used when listing playlists and playlist items.
	DefaultPageSize = 50
)

// PlaylistAPI is the remote surface needed to detect and remove duplicates.
//
// Positions in [PlaylistAPI.RemoveItems] and [PlaylistAPI.AddItems] are zero-based and only meaningful against the
// snapshot they were read from.
type PlaylistAPI interface {
	// PlaylistItems returns one page of playlist entries.
	// An empty pageToken requests the first page; the returned page's Next is empty on the last page.
	PlaylistItems(ctx context.Context, playlistID, pageToken string) (*ItemPage, error)

	// PlaylistMetadata returns the current item count and snapshot of a playlist.
	PlaylistMetadata(ctx context.Context, playlistID string) (*models.PlaylistMetadata, error)

	// RemoveItems removes each record at its position and returns the new snapshot id.
	RemoveItems(ctx context.Context, playlistID, snapshotID string, items []models.TrackRecord) (string, error)

	// AddItems inserts locators contiguously starting at position and returns the new snapshot id.
	AddItems(ctx context.Context, playlistID string, locators []string, position int) (string, error)

	// CurrentUser returns the profile of the authenticated user.
	CurrentUser(ctx context.Context) (*SpotifyUser, error)

	// UserPlaylists returns one page of the current user's playlists.
	UserPlaylists(ctx context.Context, pageToken string) (*PlaylistPage, error)
}

// OAuthService is implemented by services that authenticate with the OAuth2 authorization code flow.
type OAuthService interface {
	// GetAuthURL returns the URL the user visits to grant access.
	GetAuthURL(state string) string
	// GetOAuthConfig returns the client configuration used for code exchange.
	GetOAuthConfig() *oauth2.Config
	// OAuthenticate installs token as the session credentials.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

// ItemPage is one page of playlist entries. Entry positions are unset; readers assign them.
type ItemPage struct {
	Entries []models.PlaylistEntry
	Total   int
	Next    string
}

// PlaylistPage is one page of playlists.
type PlaylistPage struct {
	Playlists []models.Playlist
	Total     int
	Next      string
}
