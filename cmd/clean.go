package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CleanTrack removes the duplicates of one track, keeping its first occurrence.
func (r *Runner) CleanTrack(ctx context.Context, cmd *cli.Command) error {
	cleaner, err := r.connect(ctx)
	if err != nil {
		return err
	}

	playlistID, identity := cmd.String("id"), cmd.String("track")

	progress, stop := r.progress()
	removed, err := cleaner.RemoveSpecificDuplicates(ctx, playlistID, identity, progress)
	stop()
	if err != nil {
		return err
	}

	if removed == 0 {
		return r.writePlain("No duplicates of %s in %s\n", identity, playlistID)
	}
	return r.writePlain("✓ Removed %d duplicate(s) of %s from %s\n", removed, identity, playlistID)
}

// CleanCollapse collapses the given tracks, or every duplicated track when none are given, to one copy each at
// their first position.
func (r *Runner) CleanCollapse(ctx context.Context, cmd *cli.Command) error {
	cleaner, err := r.connect(ctx)
	if err != nil {
		return err
	}

	playlistID := cmd.String("id")
	identities := cmd.StringSlice("track")

	extra := 0
	if len(identities) == 0 {
		progress, stop := r.progress()
		summary, err := cleaner.PlaylistDuplicates(ctx, playlistID, progress)
		stop()
		if err != nil {
			return err
		}
		if summary.Report.Empty() {
			return r.writePlain("No duplicates in %s\n", playlistID)
		}
		identities = summary.Report.Identities()
		extra = summary.Report.Total()
	}

	if !cmd.Bool("yes") {
		prompt := "Collapse %d track(s) in %s?"
		args := []any{len(identities), playlistID}
		if extra > 0 {
			prompt = "Collapse %d track(s) in %s, removing %d extra copies?"
			args = append(args, extra)
		}
		ok, err := r.confirm(prompt, args...)
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Aborted\n")
		}
	}

	progress, stop := r.progress()
	removed, err := cleaner.CollapseAllDuplicates(ctx, playlistID, identities, progress)
	stop()
	if err != nil {
		return err
	}

	if removed == 0 {
		return r.writePlain("No duplicates of the selected tracks in %s\n", playlistID)
	}
	return r.writePlain("✓ Removed %d entries from %s and restored one copy of each track\n", removed, playlistID)
}
