package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

type stubExchanger struct {
	token *oauth2.Token
	err   error
	code  string
}

func (s *stubExchanger) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	s.code = code
	return s.token, s.err
}

func callback(h http.Handler, query string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
	return rec
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ex := &stubExchanger{token: &oauth2.Token{AccessToken: "access"}}
		h := NewOAuthHandler(ex, "xyz", "")

		rec := callback(h, "state=xyz&code=abc")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Spotify connected") {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if ex.code != "abc" {
			t.Errorf("expected code abc to be exchanged, got %q", ex.code)
		}

		token, err := h.Wait(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "access" {
			t.Errorf("expected access token, got %q", token.AccessToken)
		}
	})

	t.Run("Invalid state", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{}, "xyz", "")

		rec := callback(h, "state=nope&code=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if _, err := h.Wait(context.Background()); !errors.Is(err, ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("Denied", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{}, "xyz", "")

		rec := callback(h, "state=xyz&error=access_denied&error_description=user+said+no")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		_, err := h.Wait(context.Background())
		if err == nil || !strings.Contains(err.Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", err)
		}
	})

	t.Run("Exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{err: errors.New("invalid_grant")}, "xyz", "")

		rec := callback(h, "state=xyz&code=abc")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if _, err := h.Wait(context.Background()); err == nil {
			t.Error("expected exchange error")
		}
	})

	t.Run("Replay rejected", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "a"}}, "xyz", "")
		callback(h, "state=xyz&code=abc")

		rec := callback(h, "state=xyz&code=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", rec.Code)
		}
	})

	t.Run("Wait honors context", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{}, "xyz", "")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := h.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("Custom path", func(t *testing.T) {
		h := NewOAuthHandler(&stubExchanger{}, "xyz", "/spotify/callback")
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/spotify/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}

// pathHandler serves fixed routes with fn.
type pathHandler struct {
	routes []string
	fn     http.HandlerFunc
}

func (p pathHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { p.fn(w, r) }
func (p pathHandler) Routes() []string { return p.routes }

func TestCallbackRouter(t *testing.T) {
	t.Run("Middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewCallbackRouter(mark("first"))
		r.Use(mark("second"))
		r.Mount(pathHandler{routes: []string{"/ping"}, fn: func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Mounts every route", func(t *testing.T) {
		hits := 0
		r := NewCallbackRouter()
		r.Mount(pathHandler{routes: []string{"/callback", "/spotify/callback"}, fn: func(http.ResponseWriter, *http.Request) { hits++ }})

		for _, path := range []string{"/callback", "/spotify/callback"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path+"?code=x", nil))
			if rec.Code != http.StatusOK {
				t.Errorf("%s: expected 200, got %d", path, rec.Code)
			}
		}
		if hits != 2 {
			t.Errorf("expected 2 hits, got %d", hits)
		}
		if got := strings.Join(r.Routes(), ","); got != "/callback,/spotify/callback" {
			t.Errorf("unexpected routes %s", got)
		}
	})

	t.Run("Only GET reaches the handler", func(t *testing.T) {
		called := false
		r := NewCallbackRouter()
		r.Mount(pathHandler{routes: []string{"/callback"}, fn: func(http.ResponseWriter, *http.Request) { called = true }})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if called {
			t.Error("expected handler not to be called")
		}
	})

	t.Run("Unknown paths are logged and never reach the callback", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
		h := NewOAuthHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "a"}}, "xyz", "")

		r := NewCallbackRouter(LoggingMiddleware(logger))
		r.Mount(h)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "status=404") {
			t.Errorf("expected the 404 to be logged, got: %s", buf.String())
		}

		if rec := callback(r, "state=xyz&code=abc"); rec.Code != http.StatusOK {
			t.Errorf("expected the callback to still accept the redirect, got %d", rec.Code)
		}
	})

	t.Run("Logging and recovery", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

		r := NewCallbackRouter(LoggingMiddleware(logger), RecoverMiddleware(logger))
		r.Mount(pathHandler{routes: []string{"/boom"}, fn: func(http.ResponseWriter, *http.Request) {
			panic("kaboom")
		}})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}

		out := buf.String()
		if !strings.Contains(out, "handler panicked") || !strings.Contains(out, "status=500") {
			t.Errorf("expected panic and request logs, got: %s", out)
		}
	})
}

func TestListen(t *testing.T) {
	logger := log.New(io.Discard)
	h := NewOAuthHandler(&stubExchanger{token: &oauth2.Token{AccessToken: "live"}}, "s1", "")

	r := NewCallbackRouter(LoggingMiddleware(logger))
	r.Mount(h)

	l, err := Listen("127.0.0.1:0", r, logger)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	t.Cleanup(func() { _ = l.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + l.Addr() + "/callback?state=s1&code=c1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	token, err := h.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if token.AccessToken != "live" {
		t.Errorf("expected live token, got %q", token.AccessToken)
	}
}
