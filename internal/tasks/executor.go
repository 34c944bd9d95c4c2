package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotclean/internal/dedupe"
	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/services"
)

// BatchExecutor applies removal and insertion plans to a playlist in strictly sequential batches.
type BatchExecutor struct {
	api       services.PlaylistAPI
	batchSize int
	logger    *log.Logger
	progress  chan<- ProgressUpdate
}

// NewBatchExecutor creates an executor. batchSize is clamped to 1..[services.MaxBatchSize].
func NewBatchExecutor(api services.PlaylistAPI, batchSize int, logger *log.Logger, progress chan<- ProgressUpdate) *BatchExecutor {
	return &BatchExecutor{api: api, batchSize: clampBatchSize(batchSize), logger: logger, progress: progress}
}

func clampBatchSize(n int) int {
	if n < 1 || n > services.MaxBatchSize {
		return services.MaxBatchSize
	}
	return n
}

func batchCount(n, size int) int {
	return (n + size - 1) / size
}

// RemoveBatches removes candidates, which must be ordered by descending position, in chunks of the batch size.
//
// The first request is addressed at snapshotID and every later one at the snapshot returned by its predecessor.
// Because candidates descend, positions in later chunks are unaffected by earlier removals. A failed chunk
// aborts the run and its error is returned in place of a count; chunks already applied stay applied.
func (e *BatchExecutor) RemoveBatches(ctx context.Context, playlistID, snapshotID string, candidates []models.TrackRecord) (int, error) {
	total := batchCount(len(candidates), e.batchSize)
	removed := 0
	snapshot := snapshotID
	step := 0

	for batch := range slices.Chunk(candidates, e.batchSize) {
		step++
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("removal cancelled before batch %d/%d: %w", step, total, err)
		}

		next, err := e.api.RemoveItems(ctx, playlistID, snapshot, batch)
		if err != nil {
			e.logger.Error("removal batch failed", "playlist", playlistID, "batch", step, "applied", removed, "error", err)
			return 0, fmt.Errorf("removal batch %d/%d: %w", step, total, err)
		}

		snapshot = next
		removed += len(batch)
		e.logger.Debug("removed batch", "playlist", playlistID, "batch", step, "size", len(batch), "snapshot", snapshot)
		sendProgress(e.progress, removeBatchUpdate(step, total, removed))
	}
	return removed, nil
}

// AddBatches inserts each batch of plan at its target position, in plan order.
//
// Plan batches larger than the executor's batch size are split, keeping their items contiguous.
func (e *BatchExecutor) AddBatches(ctx context.Context, playlistID string, plan models.ReinsertionPlan) (int, error) {
	total := 0
	for _, b := range plan.Batches {
		total += batchCount(len(b.Records), e.batchSize)
	}

	added := 0
	step := 0
	for _, b := range plan.Batches {
		position := b.Position
		for chunk := range slices.Chunk(b.Records, e.batchSize) {
			step++
			if err := ctx.Err(); err != nil {
				return 0, fmt.Errorf("reinsertion cancelled before batch %d/%d: %w", step, total, err)
			}

			if _, err := e.api.AddItems(ctx, playlistID, dedupe.Locators(chunk), position); err != nil {
				e.logger.Error("reinsertion batch failed", "playlist", playlistID, "batch", step, "applied", added, "error", err)
				return 0, fmt.Errorf("reinsertion batch %d/%d: %w", step, total, err)
			}

			added += len(chunk)
			e.logger.Debug("reinserted batch", "playlist", playlistID, "batch", step, "size", len(chunk), "position", position)
			sendProgress(e.progress, reinsertBatchUpdate(step, total, len(chunk), position))
			position += len(chunk)
		}
	}
	return added, nil
}
