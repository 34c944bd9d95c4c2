package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotclean/internal/formatter"
	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/shared"
	"github.com/urfave/cli/v3"
)

// runView is the JSON form of a [models.CleanupRun].
type runView struct {
	ID          string     `json:"id"`
	Sequence    int        `json:"sequence"`
	PlaylistID  string     `json:"playlist_id"`
	Mode        string     `json:"mode"`
	Tracks      []string   `json:"tracks"`
	Removed     int        `json:"removed"`
	Reinserted  int        `json:"reinserted"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newRunView(run *models.CleanupRun) runView {
	return runView{
		ID:          run.ID(),
		Sequence:    run.Sequence(),
		PlaylistID:  run.PlaylistID(),
		Mode:        string(run.Mode()),
		Tracks:      run.Identities(),
		Removed:     run.Removed(),
		Reinserted:  run.Reinserted(),
		Status:      string(run.Status()),
		Error:       run.ErrorMessage(),
		StartedAt:   run.StartedAt(),
		CompletedAt: run.CompletedAt(),
	}
}

// History lists recorded cleanup runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	filter := models.RunFilter{PlaylistID: cmd.String("playlist"), Limit: int(cmd.Int("limit"))}
	if s := cmd.String("status"); s != "" {
		status, err := models.ParseRunStatus(s)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		filter.Status = status
	}

	runs, err := r.history()
	if err != nil {
		return err
	}
	if runs == nil {
		return fmt.Errorf("%w: run history is disabled in %s", shared.ErrInvalidArgument, r.configPath)
	}

	list, err := runs.List(filter)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, len(list))
		for i, run := range list {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views, true)
	}

	_, err = r.output.Write(formatter.RunsToText(list))
	return err
}
