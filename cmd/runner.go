package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotclean/internal/repositories"
	"github.com/desertthunder/spotclean/internal/services"
	"github.com/desertthunder/spotclean/internal/shared"
	"github.com/desertthunder/spotclean/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The playlist API, cleaner and run history are built on first use so that commands like setup and auth work
// before credentials or a database exist.
type Runner struct {
	config     *shared.Config
	configPath string
	api        services.PlaylistAPI
	cleaner    *tasks.Cleaner
	runs       *repositories.RunRepository
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	saveMu     sync.Mutex
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        services.PlaylistAPI
	Runs       *repositories.RunRepository
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		runs:       opts.Runs,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, statusCommand, playlistsCommand, duplicatesCommand, cleanCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command. Global flags are inherited by every subcommand.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "spotclean",
		Usage:   "Find and remove duplicate tracks from Spotify playlists",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		After:    r.after,
		Commands: r.register(),
	}
}

// before loads the configuration named by --config and applies the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.configPath == "" {
		r.configPath = cmd.String("config")
	}

	if r.config == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			r.logger.Debug("using default configuration", "path", r.configPath, "reason", err)
			config = shared.DefaultConfig()
		}
		r.config = config
	}

	level := shared.ParseLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Warn("failed to close database", "error", err)
		}
		r.db = nil
	}
	return nil
}

// history returns the run repository, opening the database on first use.
//
// Returns nil without error when history is disabled in the configuration.
func (r *Runner) history() (*repositories.RunRepository, error) {
	if r.runs != nil {
		return r.runs, nil
	}
	if !r.config.History.Enabled {
		return nil, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.runs = repositories.NewRunRepository(db)
	return r.runs, nil
}

// connect returns the cleaner, authenticating against Spotify with the saved token on first use.
func (r *Runner) connect(ctx context.Context) (*tasks.Cleaner, error) {
	if r.cleaner != nil {
		return r.cleaner, nil
	}

	if r.api == nil {
		api, err := r.spotify(ctx)
		if err != nil {
			return nil, err
		}
		r.api = api
	}

	var recorder tasks.RunRecorder
	runs, err := r.history()
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
	} else if runs != nil {
		recorder = runs
	}

	r.cleaner = tasks.NewCleaner(r.api, r.logger, r.config.Spotify.BatchSize, recorder)
	return r.cleaner, nil
}

// spotify builds an authenticated Spotify client from the saved credentials.
func (r *Runner) spotify(ctx context.Context) (*services.SpotifyService, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	creds := r.config.Credentials.Spotify
	if !creds.HasToken() {
		return nil, fmt.Errorf("%w: no saved token, run `spotclean auth` first", shared.ErrAuthRequired)
	}

	svc, err := services.NewSpotifyService(creds.Map(),
		services.WithBaseURL(r.config.Spotify.BaseURL),
		services.WithPageSize(r.config.Spotify.PageSize),
		services.WithRateLimit(r.config.Spotify.RequestsPerSecond),
		services.WithLogger(r.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}

	svc.SetTokenRefreshCallback(r.saveToken)
	if err := svc.Authenticate(ctx, creds.Map()); err != nil {
		return nil, err
	}
	return svc, nil
}

// saveToken persists a refreshed access token. Called from the HTTP transport.
func (r *Runner) saveToken(token *oauth2.Token) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		r.logger.Warn("ignoring refreshed token", "error", err)
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "path", r.configPath, "error", err)
		return
	}
	r.logger.Debug("saved refreshed token", "path", r.configPath)
}

// progress returns a channel for cleaner updates that are logged as they arrive, and a func that stops logging.
func (r *Runner) progress() (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range ch {
			if u.Phase == tasks.Done {
				continue
			}
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	return ch, func() {
		close(ch)
		<-done
	}
}

// confirm asks a yes/no question on the runner's input. Anything but y or yes is a no.
func (r *Runner) confirm(format string, args ...any) (bool, error) {
	if err := r.writePlain(format+" [y/N] ", args...); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
