package tasks

import (
	"context"
	"fmt"
	"iter"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/services"
)

// TrackReader turns the paginated item stream of a playlist into position-indexed entries.
type TrackReader struct {
	api    services.PlaylistAPI
	logger *log.Logger
}

// NewTrackReader creates a reader over api.
func NewTrackReader(api services.PlaylistAPI, logger *log.Logger) *TrackReader {
	return &TrackReader{api: api, logger: logger}
}

// Read returns a lazy, forward-only sequence of every entry in the playlist.
//
// Positions are assigned by enumeration order over all entries, other media included. Cancellation is checked
// before each page request and before each entry is yielded. The first error is yielded once and ends the sequence;
// entries already yielded remain valid.
func (r *TrackReader) Read(ctx context.Context, playlistID string) iter.Seq2[models.PlaylistEntry, error] {
	return func(yield func(models.PlaylistEntry, error) bool) {
		position := 0
		token := ""
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(models.PlaylistEntry{}, fmt.Errorf("reading playlist %s: %w", playlistID, err))
				return
			}

			items, err := r.api.PlaylistItems(ctx, playlistID, token)
			if err != nil {
				yield(models.PlaylistEntry{}, fmt.Errorf("reading playlist %s page %d: %w", playlistID, page, err))
				return
			}
			r.logger.Debug("read page", "playlist", playlistID, "page", page, "entries", len(items.Entries), "total", items.Total)

			for _, entry := range items.Entries {
				if err := ctx.Err(); err != nil {
					yield(models.PlaylistEntry{}, fmt.Errorf("reading playlist %s: %w", playlistID, err))
					return
				}
				if !yield(entry.WithPosition(position), nil) {
					return
				}
				position++
			}

			// An empty page with a continuation token would never advance.
			if items.Next == "" || len(items.Entries) == 0 {
				return
			}
			token = items.Next
		}
	}
}

// Collect drains seq, returning the entries read before the first error alongside it.
func Collect(seq iter.Seq2[models.PlaylistEntry, error]) ([]models.PlaylistEntry, error) {
	var entries []models.PlaylistEntry
	for entry, err := range seq {
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
