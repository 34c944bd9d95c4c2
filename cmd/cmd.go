// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand creates the configuration file and the run history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the run history database",
		Action: r.Setup,
	}
}

// authCommand runs the OAuth2 authorization code flow.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Action: r.Auth,
	}
}

// statusCommand checks that the saved session can reach Spotify.
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Check the Spotify session",
		Action: r.Status,
	}
}

// playlistsCommand scans every playlist of the current user for duplicates.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "Scan all playlists and summarize their duplicates",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:    "duplicates-only",
				Aliases: []string{"d"},
				Usage:   "Only show playlists that contain duplicates",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: csv, markdown, txt or json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file path (default: duplicates.<ext>)",
			},
		},
		Action: r.Playlists,
	}
}

// duplicatesCommand shows the duplicate report of one playlist.
func duplicatesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "duplicates",
		Aliases: []string{"dupes"},
		Usage:   "Show duplicate tracks in one playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Playlist ID",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Duplicates,
	}
}

// cleanCommand removes duplicates from a playlist.
func cleanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove duplicate tracks from a playlist",
		Commands: []*cli.Command{
			{
				Name:  "track",
				Usage: "Remove every occurrence of one track after its first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "track",
						Aliases:  []string{"t"},
						Usage:    "Track ID whose duplicates are removed",
						Required: true,
					},
				},
				Action: r.CleanTrack,
			},
			{
				Name:  "collapse",
				Usage: "Collapse duplicated tracks to a single copy at their first position",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "track",
						Aliases: []string{"t"},
						Usage:   "Track ID to collapse, repeatable (default: every duplicated track)",
					},
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.CleanCollapse,
			},
		},
	}
}

// historyCommand lists recorded cleanup runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded cleanup runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Only runs against this playlist ID",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only runs with this status (running, completed, failed, cancelled)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive cleanup.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for duplicate cleanup",
		Action:  r.TUI,
	}
}
