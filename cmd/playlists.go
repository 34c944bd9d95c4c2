package main

import (
	"context"

	"github.com/desertthunder/spotclean/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Playlists scans every playlist of the current user and reports the duplicates in each.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	cleaner, err := r.connect(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.progress()
	summaries, err := cleaner.ListPlaylistsWithDuplicates(ctx, progress)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("duplicates-only") {
		filtered := summaries[:0]
		for _, s := range summaries {
			if !s.Report.Empty() {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, cmd.Bool("pretty"))
	}

	if name := cmd.String("format"); name != "" || cmd.String("output") != "" {
		format := formatter.Text
		if name != "" {
			if format, err = formatter.ParseFormat(name); err != nil {
				return err
			}
		}
		path, err := formatter.WriteReport(summaries, format, cmd.String("output"))
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", path, "playlists", len(summaries))
		return r.writePlain("✓ Report written to %s\n", path)
	}

	return formatter.WriteReportTo(r.output, summaries, formatter.Text)
}

// Duplicates prints the duplicate report of one playlist.
func (r *Runner) Duplicates(ctx context.Context, cmd *cli.Command) error {
	cleaner, err := r.connect(ctx)
	if err != nil {
		return err
	}

	progress, stop := r.progress()
	summary, err := cleaner.PlaylistDuplicates(ctx, cmd.String("id"), progress)
	stop()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, cmd.Bool("pretty"))
	}

	if summary.Report.Empty() {
		return r.writePlain("No duplicates in %s\n", summary.Playlist.ID)
	}

	if err := r.writePlain("Playlist %s: %d duplicated tracks, %d extra copies\n\n",
		summary.Playlist.ID, summary.Report.Len(), summary.Report.Total()); err != nil {
		return err
	}
	for i, d := range summary.Report.Entries {
		if err := r.writePlain("%d. %s\n   ID: %s  first at #%d  extra copies: %d\n",
			i+1, d.Canonical.Label(), d.Canonical.Identity, d.Canonical.Position+1, d.Surplus); err != nil {
			return err
		}
	}
	return nil
}
