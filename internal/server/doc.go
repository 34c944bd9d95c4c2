// Package server provides the HTTP routing, middleware, and OAuth callback handling used by `spotclean auth`.
//
// # Callback Router
//
// [CallbackRouter] mounts GET-only routes for each [Handler] on an [http.ServeMux] and wraps the whole mux in its
// [Middleware] stack, first added outermost.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens
// through an [Exchanger] (normally the Spotify [oauth2.Config]), and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Listener
//
// [Listen] starts a temporary server on the configured host and port (127.0.0.1:3000 by default). The auth command
// opens the consent page in a browser, waits on [OAuthHandler.Wait], and shuts the listener down once a token
// arrives.
package server
