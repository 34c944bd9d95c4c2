package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/spotclean/internal/server"
	"github.com/desertthunder/spotclean/internal/services"
	"github.com/desertthunder/spotclean/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// Auth performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	svc, err := services.NewSpotifyService(creds.Map(), services.WithLogger(r.logger))
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, svc)
	if err != nil {
		return err
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return r.writePlain("\n✓ Authorization successful\n✓ Tokens saved to %s\n\nYou can now use: spotclean playlists\n", r.configPath)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server on the redirect URI's port.
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	config := oauthSrv.GetOAuthConfig()
	addr, path := r.callbackAddr(config.RedirectURL)

	handler := server.NewOAuthHandler(config, state, path)
	router := server.NewCallbackRouter(server.LoggingMiddleware(r.logger), server.RecoverMiddleware(r.logger))
	router.Mount(handler)

	listener, err := server.Listen(addr, router, r.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := listener.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := oauthSrv.GetAuthURL(state)
	if err := r.writePlain("→ Opening browser for Spotify authorization...\n"); err != nil {
		return nil, err
	}
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		if err := r.writePlain("\n⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL); err != nil {
			return nil, err
		}
	}

	if err := r.writePlain("→ Waiting for authorization (%v timeout)...\n", authTimeout); err != nil {
		return nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	token, err := handler.Wait(waitCtx)
	switch {
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, authTimeout)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	case token == nil:
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return token, nil
}

// callbackAddr derives the listen address and callback path from the redirect URI, falling back to [server]
// settings when the URI does not name a port.
func (r *Runner) callbackAddr(redirectURL string) (addr, path string) {
	addr = net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))

	u, err := url.Parse(redirectURL)
	if err != nil || u.Host == "" {
		return addr, ""
	}
	if port := u.Port(); port != "" {
		addr = net.JoinHostPort(u.Hostname(), port)
	}
	return addr, u.Path
}

// Status checks that the saved session is accepted by Spotify.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	cleaner, err := r.connect(ctx)
	if err != nil {
		return err
	}

	if !cleaner.Probe(ctx) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.writePlain("✗ Spotify session is not valid\n"); err != nil {
			return err
		}
		return fmt.Errorf("%w: run `spotclean auth` to sign in again", shared.ErrAuthRequired)
	}

	user, err := r.api.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	name := user.DisplayName
	if name == "" {
		name = user.ID
	}
	return r.writePlain("✓ Connected to Spotify as %s\n", name)
}
