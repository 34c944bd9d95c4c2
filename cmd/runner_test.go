package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotclean/internal/repositories"
	"github.com/desertthunder/spotclean/internal/shared"
	tu "github.com/desertthunder/spotclean/internal/testing"
	"golang.org/x/oauth2"
)

type testRunner struct {
	*Runner
	fake *tu.FakePlaylistAPI
	out  *bytes.Buffer
}

// newTestRunner wires a runner to an in-memory playlist API and history database.
//
// Playlist p1 holds a b a c b a; p2 has no duplicates.
func newTestRunner(t *testing.T, input string) *testRunner {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fake := tu.NewFakePlaylistAPI()
	fake.AddPlaylist("p1", "Road Trip", tu.Tracks("a", "b", "a", "c", "b", "a")...)
	fake.AddPlaylist("p2", "Focus", tu.Tracks("x", "y")...)

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     shared.DefaultConfig(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		API:        fake,
		Runs:       repositories.NewRunRepository(db),
		Logger:     shared.NewLogger(io.Discard),
		Output:     out,
		Input:      strings.NewReader(input),
	})
	return &testRunner{Runner: runner, fake: fake, out: out}
}

func (tr *testRunner) run(t *testing.T, args ...string) error {
	t.Helper()
	return tr.app().Run(context.Background(), append([]string{"spotclean"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			fake := tu.NewFakePlaylistAPI()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				API:        fake,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.api != fake {
				t.Error("expected api to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil input uses stdin", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
		})

		t.Run("registers every command", func(t *testing.T) {
			var names []string
			for _, c := range NewRunner(RunnerOpts{}).register() {
				names = append(names, c.Name)
			}
			for _, want := range []string{"setup", "auth", "status", "playlists", "duplicates", "clean", "history", "tui"} {
				if !slices.Contains(names, want) {
					t.Errorf("expected command %s to be registered, got %v", want, names)
				}
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := output.String(); got != "{\"key\":\"value\"}\n" {
				t.Errorf("expected compact JSON, got %q", got)
			}
		})

		t.Run("handles marshal error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})

		t.Run("handles write error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("handles newline write error", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &w})
			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected newline write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("%d duplicates\n", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := output.String(); got != "3 duplicates\n\ndone\n" {
			t.Errorf("unexpected output %q", got)
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writePlain("x"); err == nil {
			t.Error("expected write error")
		}
		if err := failing.writePlainln("x"); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("confirm", func(t *testing.T) {
		tc := []struct {
			input string
			want  bool
		}{
			{"y\n", true},
			{"YES\n", true},
			{"yes", true},
			{"n\n", false},
			{"\n", false},
			{"", false},
		}

		for _, tt := range tc {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Input: strings.NewReader(tt.input)})
			got, err := runner.confirm("Proceed?")
			if err != nil {
				t.Fatalf("confirm(%q): unexpected error %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		}
	})
}

func TestBefore(t *testing.T) {
	t.Run("loads config from --config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.toml")
		config := shared.DefaultConfig()
		config.Spotify.BatchSize = 25
		if err := shared.SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		if err := runner.app().Run(context.Background(), []string{"spotclean", "--config", path, "history", "--status", "bogus"}); err == nil {
			t.Fatal("expected invalid status error")
		}

		if runner.configPath != path {
			t.Errorf("expected config path %s, got %s", path, runner.configPath)
		}
		if runner.config.Spotify.BatchSize != 25 {
			t.Errorf("expected batch size from file, got %d", runner.config.Spotify.BatchSize)
		}
	})

	t.Run("falls back to defaults when config is missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.toml")
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
		runner.app().Run(context.Background(), []string{"spotclean", "-c", path, "history", "--status", "bogus"})

		if runner.config == nil {
			t.Fatal("expected default config")
		}
		if runner.config.Spotify.BatchSize != 100 {
			t.Errorf("expected default batch size, got %d", runner.config.Spotify.BatchSize)
		}
	})

	t.Run("verbose enables debug logging", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "--verbose", "duplicates", "--id", "p2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", tr.logger.GetLevel())
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tr.out.String(), "Connected to Spotify as Test User") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("status with expired session", func(t *testing.T) {
		tr := newTestRunner(t, "")
		tr.fake.FailOn(tu.MethodUser, 1, tu.ErrUnauthorized)

		err := tr.run(t, "status")
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if shared.Classify(err).ExitCode() != 3 {
			t.Errorf("expected exit code 3, got %d", shared.Classify(err).ExitCode())
		}
	})

	t.Run("playlists", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "playlists"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := tr.out.String()
		for _, want := range []string{"Road Trip (p1)", "duplicated: 2, extra copies: 3", "Focus (p2)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("playlists --duplicates-only", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "playlists", "-d"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(tr.out.String(), "Focus") {
			t.Errorf("expected playlist without duplicates to be hidden, got:\n%s", tr.out.String())
		}
	})

	t.Run("playlists report file", func(t *testing.T) {
		tr := newTestRunner(t, "")
		path := filepath.Join(t.TempDir(), "report.csv")

		if err := tr.run(t, "playlists", "--format", "csv", "--output", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Road Trip") {
			t.Errorf("expected report to list Road Trip, got:\n%s", content)
		}
	})

	t.Run("playlists with unknown format", func(t *testing.T) {
		tr := newTestRunner(t, "")
		err := tr.run(t, "playlists", "--format", "xml")
		if shared.Classify(err) != shared.KindInvalidArgument {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})

	t.Run("duplicates", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "duplicates", "--id", "p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := tr.out.String()
		if !strings.Contains(out, "2 duplicated tracks, 3 extra copies") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "ID: a  first at #1  extra copies: 2") {
			t.Errorf("expected entry for a, got:\n%s", out)
		}
	})

	t.Run("duplicates with failing output", func(t *testing.T) {
		for _, maxWrites := range []int{0, 1, 2} {
			tr := newTestRunner(t, "")
			w := tu.NewLimitedWriter(maxWrites, 0, &bytes.Buffer{})
			tr.output = &w

			if err := tr.run(t, "duplicates", "--id", "p1"); err == nil {
				t.Errorf("expected write error after %d writes", maxWrites)
			}
		}
	})

	t.Run("status with failing output", func(t *testing.T) {
		tr := newTestRunner(t, "")
		tr.output = &tu.FWriter{}
		if err := tr.run(t, "status"); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("duplicates --json", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "duplicates", "--id", "p1", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tr.out.String(), `"surplus": 2`) {
			t.Errorf("expected JSON report, got:\n%s", tr.out.String())
		}
	})

	t.Run("duplicates of a clean playlist", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "duplicates", "--id", "p2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tr.out.String(), "No duplicates in p2") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("duplicates of a missing playlist", func(t *testing.T) {
		tr := newTestRunner(t, "")
		err := tr.run(t, "duplicates", "--id", "nope")
		if shared.Classify(err) != shared.KindExternalService {
			t.Errorf("expected external service error, got %v", err)
		}
	})

	t.Run("clean track", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "clean", "track", "--id", "p1", "--track", "a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"a", "b", "c", "b"}
		if got := tr.fake.Contents("p1"); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if !strings.Contains(tr.out.String(), "Removed 2 duplicate(s) of a") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("clean collapse every duplicate", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "clean", "collapse", "--id", "p1", "--yes"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"a", "b", "c"}
		if got := tr.fake.Contents("p1"); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("clean collapse selected tracks", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "clean", "collapse", "--id", "p1", "--track", "b", "--yes"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"a", "b", "a", "c", "a"}
		if got := tr.fake.Contents("p1"); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("clean collapse declined", func(t *testing.T) {
		tr := newTestRunner(t, "n\n")
		if err := tr.run(t, "clean", "collapse", "--id", "p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if calls := tr.fake.CallsTo(tu.MethodRemove); len(calls) != 0 {
			t.Errorf("expected no removals, got %d", len(calls))
		}
		if !strings.Contains(tr.out.String(), "Aborted") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("clean collapse confirmed", func(t *testing.T) {
		tr := newTestRunner(t, "y\n")
		if err := tr.run(t, "clean", "collapse", "--id", "p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tr.out.String(), "removing 3 extra copies? [y/N]") {
			t.Errorf("expected prompt, got %q", tr.out.String())
		}
		if got := tr.fake.Contents("p1"); len(got) != 3 {
			t.Errorf("expected 3 tracks after collapse, got %v", got)
		}
	})

	t.Run("clean collapse with nothing to do", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "clean", "collapse", "--id", "p2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tr.fake.CallsTo(tu.MethodRemove)) != 0 {
			t.Error("expected no removals")
		}
	})

	t.Run("clean with failing removal", func(t *testing.T) {
		tr := newTestRunner(t, "")
		tr.fake.FailOn(tu.MethodRemove, 1, tu.ErrUnauthorized)

		err := tr.run(t, "clean", "track", "--id", "p1", "--track", "a")
		if err == nil {
			t.Fatal("expected error")
		}
		if got := shared.Classify(err).ExitCode(); got != 4 {
			t.Errorf("expected exit code 4 for a remote failure, got %d", got)
		}
		if got := tr.fake.Contents("p1"); len(got) != 6 {
			t.Errorf("expected playlist untouched, got %v", got)
		}
	})

	t.Run("playlists with rejected token", func(t *testing.T) {
		tr := newTestRunner(t, "")
		tr.fake.FailOn(tu.MethodItems, 1, tu.ErrUnauthorized)

		err := tr.run(t, "playlists")
		if errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected a remote failure, got %v", err)
		}
		if shared.Classify(err) != shared.KindExternalService {
			t.Errorf("expected external service error, got %v (%v)", shared.Classify(err), err)
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("records cleanup runs", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "clean", "track", "--id", "p1", "--track", "a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := tr.run(t, "clean", "collapse", "--id", "p1", "--yes"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tr.out.Reset()
		if err := tr.run(t, "history"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(tr.out.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 runs, got %d:\n%s", len(lines), tr.out.String())
		}
		if !strings.Contains(lines[0], "collapse completed") {
			t.Errorf("expected newest run first, got %q", lines[0])
		}
		if !strings.Contains(lines[1], "specific completed removed=2") {
			t.Errorf("unexpected line %q", lines[1])
		}
	})

	t.Run("json output with filters", func(t *testing.T) {
		tr := newTestRunner(t, "")
		tr.fake.FailOn(tu.MethodRemove, 1, tu.ErrUnauthorized)
		tr.run(t, "clean", "track", "--id", "p1", "--track", "a")
		if err := tr.run(t, "clean", "track", "--id", "p1", "--track", "b"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tr.out.Reset()
		if err := tr.run(t, "history", "--status", "failed", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := tr.out.String()
		if !strings.Contains(out, `"status": "failed"`) || strings.Contains(out, `"status": "completed"`) {
			t.Errorf("expected only the failed run, got:\n%s", out)
		}
		if !strings.Contains(out, `"playlist_id": "p1"`) {
			t.Errorf("expected playlist id, got:\n%s", out)
		}
	})

	t.Run("empty history", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "history", "--playlist", "p2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(tr.out.String(), "No cleanup runs recorded") {
			t.Errorf("unexpected output %q", tr.out.String())
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		tr := newTestRunner(t, "")
		if err := tr.run(t, "history", "--status", "bogus"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("disabled history", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config:     shared.DefaultConfig(),
			ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
			Logger:     shared.NewLogger(io.Discard),
			Output:     &bytes.Buffer{},
		})
		runner.config.History.Enabled = false

		err := runner.app().Run(context.Background(), []string{"spotclean", "history"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestAuthentication(t *testing.T) {
	t.Run("connect without saved token", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), Logger: shared.NewLogger(io.Discard)})
		_, err := runner.connect(context.Background())
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Errorf("expected ErrAuthRequired, got %v", err)
		}
	})

	t.Run("connect with invalid config", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Spotify.BatchSize = 500
		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

		if _, err := runner.connect(context.Background()); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("auth without client credentials", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = ""
		runner := NewRunner(RunnerOpts{
			Config:     config,
			ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
			Logger:     shared.NewLogger(io.Discard),
			Output:     &bytes.Buffer{},
		})

		err := runner.app().Run(context.Background(), []string{"spotclean", "auth"})
		if shared.Classify(err) != shared.KindAuthRequired {
			t.Errorf("expected auth required, got %v", err)
		}
	})

	t.Run("saveToken persists refreshed tokens", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), ConfigPath: path, Logger: shared.NewLogger(io.Discard)})

		runner.saveToken(&oauth2.Token{AccessToken: "fresh", RefreshToken: "refresh"})

		config, err := shared.LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if config.Credentials.Spotify.AccessToken != "fresh" || config.Credentials.Spotify.RefreshToken != "refresh" {
			t.Errorf("unexpected saved credentials %+v", config.Credentials.Spotify)
		}
	})

	t.Run("saveToken ignores empty tokens", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), ConfigPath: path, Logger: shared.NewLogger(io.Discard)})

		runner.saveToken(&oauth2.Token{})

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no config to be written")
		}
	})

	t.Run("callbackAddr", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig()})

		tc := []struct {
			redirect string
			addr     string
			path     string
		}{
			{"http://127.0.0.1:8888/callback", "127.0.0.1:8888", "/callback"},
			{"http://localhost:3000/auth/done", "localhost:3000", "/auth/done"},
			{"http://127.0.0.1/callback", "127.0.0.1:3000", "/callback"},
			{"::not a url", "127.0.0.1:3000", ""},
		}

		for _, tt := range tc {
			addr, path := runner.callbackAddr(tt.redirect)
			if addr != tt.addr || path != tt.path {
				t.Errorf("callbackAddr(%q) = (%s, %s), want (%s, %s)", tt.redirect, addr, path, tt.addr, tt.path)
			}
		}
	})
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: out})
	path := filepath.Join(dir, "config.toml")

	if err := runner.app().Run(context.Background(), []string{"spotclean", "-c", path, "setup"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tu.AssertFileExists(t, path)
	tu.AssertFileExists(t, filepath.Join(dir, "spotclean.db"))
	if !strings.Contains(out.String(), "0000 create_cleanup_runs") {
		t.Errorf("expected migration listing, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "spotclean auth") {
		t.Errorf("expected next steps, got:\n%s", out.String())
	}

	out.Reset()
	rerun := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: out})
	if err := rerun.app().Run(context.Background(), []string{"spotclean", "-c", path, "setup"}); err != nil {
		t.Fatalf("expected setup to be repeatable, got %v", err)
	}
	if strings.Contains(out.String(), "Created") {
		t.Error("expected existing config to be kept")
	}
}
