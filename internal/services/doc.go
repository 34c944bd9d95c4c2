// Package services defines the [PlaylistAPI] used by the duplicate cleaner and implements it for Spotify.
//
// # Playlist API
//
// [PlaylistAPI] is the narrow remote surface the cleaner needs: paginated reads of playlist items and of the
// user's playlists, playlist metadata (size and snapshot), positional removal, positional insertion and a
// "who am I" call used as a connectivity probe.
//
// Mutations carry at most [MaxBatchSize] items. Positions are zero-based and tied to a snapshot id; every
// mutation returns the snapshot id that the next one should be addressed against.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
// The [oauth2.Client] refreshes expired tokens using the refresh token, and a callback registered with
// [SpotifyService.SetTokenRefreshCallback] receives every new token so it can be persisted.
//
// Requests are paced with a [rate.Limiter] (one token per request).
//
// # OAuth Service Extension
//
// The [OAuthService] interface exposes what the CLI needs to run the authorization code flow.
//
// # Error Handling
//
// Non-2xx responses are returned as [*APIError], which matches the sentinels of the shared package:
//   - [shared.ErrAPIRequest] : any API failure
//   - [shared.ErrTokenExpired] : 401, reauthorization needed
//   - [shared.ErrPlaylistNotFound] : 404
//   - [shared.ErrServiceUnavailable] : 503
//
// Calls made before authenticating fail with [shared.ErrNotAuthenticated].
package services
