package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotclean/internal/dedupe"
	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/services"
	"github.com/desertthunder/spotclean/internal/shared"
)

// RunRecorder persists the lifecycle of mutating runs. repositories.RunRepository satisfies it.
type RunRecorder interface {
	RecordStart(run *models.CleanupRun) error
	RecordFinish(run *models.CleanupRun) error
}

// Cleaner detects and removes duplicate tracks in Spotify playlists.
//
// Every operation re-reads the playlist before acting on it. A Cleaner must not run two mutating operations
// against the same playlist at once.
type Cleaner struct {
	api       services.PlaylistAPI
	reader    *TrackReader
	logger    *log.Logger
	batchSize int
	recorder  RunRecorder
}

// NewCleaner creates a Cleaner. recorder may be nil to skip run history.
func NewCleaner(api services.PlaylistAPI, logger *log.Logger, batchSize int, recorder RunRecorder) *Cleaner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Cleaner{
		api:       api,
		reader:    NewTrackReader(api, logger),
		logger:    logger,
		batchSize: clampBatchSize(batchSize),
		recorder:  recorder,
	}
}

// Probe reports whether the Spotify session is usable by asking who the current user is.
//
// Failures are logged and reported as false.
func (c *Cleaner) Probe(ctx context.Context) bool {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		if apiErr, ok := services.AsAPIError(err); ok {
			c.logger.Error("connectivity probe failed", "status", apiErr.StatusCode, "error", apiErr.Message)
		} else {
			c.logger.Error("connectivity probe failed", "error", err)
		}
		return false
	}
	c.logger.Debug("connectivity probe succeeded", "user", user.ID)
	return true
}

// ReadPlaylist returns the entries of a playlist as a lazy sequence. See [TrackReader.Read].
func (c *Cleaner) ReadPlaylist(ctx context.Context, playlistID string) iter.Seq2[models.PlaylistEntry, error] {
	return c.reader.Read(ctx, playlistID)
}

// readTracks reads a playlist fully, returning its playable records and the number of entries it holds.
func (c *Cleaner) readTracks(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) ([]models.TrackRecord, int, error) {
	sendProgress(progress, readPlaylistUpdate(playlistID, 0))

	entries, err := Collect(c.ReadPlaylist(ctx, playlistID))
	if err != nil {
		return nil, 0, err
	}

	sendProgress(progress, readPlaylistUpdate(playlistID, len(entries)))
	return dedupe.Tracks(entries), len(entries), nil
}

// ListPlaylistsWithDuplicates reads every playlist of the current user and reports the duplicates in each.
//
// Playlists without duplicates are included with an empty report.
func (c *Cleaner) ListPlaylistsWithDuplicates(ctx context.Context, progress chan<- ProgressUpdate) ([]models.PlaylistSummary, error) {
	sendProgress(progress, listPlaylistsUpdate(0, 0, nil))

	var playlists []models.Playlist
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}

		page, err := c.api.UserPlaylists(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("listing playlists: %w", err)
		}
		playlists = append(playlists, page.Playlists...)

		if page.Next == "" || len(page.Playlists) == 0 {
			break
		}
		token = page.Next
	}

	c.logger.Info("scanning playlists", "count", len(playlists))

	summaries := make([]models.PlaylistSummary, 0, len(playlists))
	for i, pl := range playlists {
		sendProgress(progress, listPlaylistsUpdate(i+1, len(playlists), &pl))

		records, size, err := c.readTracks(ctx, pl.ID, nil)
		if err != nil {
			return nil, err
		}

		pl.TrackCount = size
		report := dedupe.Analyze(records)
		c.logger.Debug("scanned playlist", "playlist", pl.ID, "name", pl.Name, "entries", size, "duplicates", report.Len())
		summaries = append(summaries, models.PlaylistSummary{Playlist: pl, Report: report})
	}
	return summaries, nil
}

// PlaylistDuplicates reports the duplicates of a single playlist.
func (c *Cleaner) PlaylistDuplicates(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.PlaylistSummary, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, fmt.Errorf("%w: playlist ID is required", shared.ErrInvalidArgument)
	}

	records, size, err := c.readTracks(ctx, playlistID, progress)
	if err != nil {
		return nil, err
	}

	report := dedupe.Analyze(records)
	sendProgress(progress, analyzeUpdate(report))

	return &models.PlaylistSummary{
		Playlist: models.Playlist{ID: playlistID, TrackCount: size},
		Report:   report,
	}, nil
}

// RemoveSpecificDuplicates removes every occurrence of identity after the first and returns how many were removed.
func (c *Cleaner) RemoveSpecificDuplicates(ctx context.Context, playlistID, identity string, progress chan<- ProgressUpdate) (int, error) {
	if strings.TrimSpace(playlistID) == "" {
		return 0, fmt.Errorf("%w: playlist ID is required", shared.ErrInvalidArgument)
	}
	if strings.TrimSpace(identity) == "" {
		return 0, fmt.Errorf("%w: track ID is required", shared.ErrInvalidArgument)
	}
	if err := c.guard(ctx, progress); err != nil {
		return 0, err
	}

	logger := shared.WithLogger(c.logger, "playlist", playlistID, "track", identity)
	run := c.startRun(playlistID, models.ModeSpecific, []string{identity})

	removed, err := c.removeSpecific(ctx, logger, playlistID, identity, progress)
	c.finishRun(run, removed, 0, err)
	if err != nil {
		return 0, err
	}

	logger.Info("removed duplicates", "removed", removed)
	sendProgress(progress, doneUpdate(removed, 0))
	return removed, nil
}

func (c *Cleaner) removeSpecific(ctx context.Context, logger *log.Logger, playlistID, identity string, progress chan<- ProgressUpdate) (int, error) {
	records, _, snapshot, err := c.snapshot(ctx, playlistID, progress)
	if err != nil {
		return 0, err
	}

	candidates := dedupe.PlanSpecificRemoval(records, identity)
	logger.Debug("planned removal", "candidates", len(candidates), "snapshot", snapshot)
	if len(candidates) == 0 {
		return 0, nil
	}

	return NewBatchExecutor(c.api, c.batchSize, logger, progress).RemoveBatches(ctx, playlistID, snapshot, candidates)
}

// CollapseAllDuplicates removes every occurrence of each identity, then restores one copy of each at its earliest
// original position, clamped to the playlist size. It returns the number of entries removed.
func (c *Cleaner) CollapseAllDuplicates(ctx context.Context, playlistID string, identities []string, progress chan<- ProgressUpdate) (int, error) {
	if strings.TrimSpace(playlistID) == "" {
		return 0, fmt.Errorf("%w: playlist ID is required", shared.ErrInvalidArgument)
	}

	targets := make([]string, 0, len(identities))
	for _, id := range identities {
		if id = strings.TrimSpace(id); id != "" {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return 0, fmt.Errorf("%w: at least one track ID is required", shared.ErrInvalidArgument)
	}

	if err := c.guard(ctx, progress); err != nil {
		return 0, err
	}

	logger := shared.WithLogger(c.logger, "playlist", playlistID)
	run := c.startRun(playlistID, models.ModeCollapse, targets)

	removed, reinserted, err := c.collapse(ctx, logger, playlistID, targets, progress)
	c.finishRun(run, removed, reinserted, err)
	if err != nil {
		return 0, err
	}

	logger.Info("collapsed duplicates", "identities", len(targets), "removed", removed, "reinserted", reinserted)
	sendProgress(progress, doneUpdate(removed, reinserted))
	return removed, nil
}

// collapse returns the removed and reinserted counts reached before any error, for run history.
func (c *Cleaner) collapse(ctx context.Context, logger *log.Logger, playlistID string, identities []string, progress chan<- ProgressUpdate) (int, int, error) {
	records, size, snapshot, err := c.snapshot(ctx, playlistID, progress)
	if err != nil {
		return 0, 0, err
	}

	candidates := dedupe.PlanCollapseRemoval(records, identities)
	logger.Debug("planned collapse", "candidates", len(candidates), "entries", size, "snapshot", snapshot)
	if len(candidates) == 0 {
		return 0, 0, nil
	}

	exec := NewBatchExecutor(c.api, c.batchSize, logger, progress)
	removed, err := exec.RemoveBatches(ctx, playlistID, snapshot, candidates)
	if err != nil {
		return 0, 0, err
	}

	plan := dedupe.PlanReinsertion(candidates, size-removed, c.batchSize)
	logger.Debug("planned reinsertion", "tracks", plan.Len(), "batches", len(plan.Batches))

	reinserted, err := exec.AddBatches(ctx, playlistID, plan)
	if err != nil {
		return removed, 0, err
	}
	return removed, reinserted, nil
}

// snapshot reads a playlist for mutation and returns its tracks, entry count and the snapshot id the positions
// refer to.
//
// The snapshot id is read after the items. A total that differs from the number of entries read means the playlist
// changed in between, and no removal is attempted with positions that may be stale.
func (c *Cleaner) snapshot(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) ([]models.TrackRecord, int, string, error) {
	records, size, err := c.readTracks(ctx, playlistID, progress)
	if err != nil {
		return nil, 0, "", err
	}

	meta, err := c.api.PlaylistMetadata(ctx, playlistID)
	if err != nil {
		return nil, 0, "", fmt.Errorf("reading playlist %s metadata: %w", playlistID, err)
	}
	if meta.TotalCount != size {
		return nil, 0, "", fmt.Errorf("%w: %s now has %d entries but %d were read, run the cleanup again",
			shared.ErrPlaylistChanged, playlistID, meta.TotalCount, size)
	}
	return records, size, meta.SnapshotID, nil
}

// guard fails with [shared.ErrAuthRequired] when the session does not answer the probe.
func (c *Cleaner) guard(ctx context.Context, progress chan<- ProgressUpdate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cleanup cancelled: %w", err)
	}

	sendProgress(progress, probeUpdate())
	if !c.Probe(ctx) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cleanup cancelled: %w", err)
		}
		return fmt.Errorf("%w: Spotify session is not available, run 'spotclean auth'", shared.ErrAuthRequired)
	}
	return nil
}

func (c *Cleaner) startRun(playlistID string, mode models.RunMode, identities []string) *models.CleanupRun {
	if c.recorder == nil {
		return nil
	}

	run := models.NewCleanupRun(playlistID, mode, identities)
	if err := c.recorder.RecordStart(run); err != nil {
		c.logger.Warn("failed to record run start", "playlist", playlistID, "error", err)
		return nil
	}
	return run
}

func (c *Cleaner) finishRun(run *models.CleanupRun, removed, reinserted int, err error) {
	if run == nil {
		return
	}

	cancelled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	run.Finish(removed, reinserted, err, cancelled)
	if recErr := c.recorder.RecordFinish(run); recErr != nil {
		c.logger.Warn("failed to record run result", "run", run.ID(), "error", recErr)
	}
}
