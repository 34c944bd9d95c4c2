package tasks

import (
	"fmt"

	"github.com/desertthunder/spotclean/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Probe Phase = iota
	ListPlaylists
	ReadPlaylist
	Analyze
	RemoveBatch
	ReinsertBatch
	Done
)

func (p Phase) String() string {
	switch p {
	case Probe:
		return "probe"
	case ListPlaylists:
		return "list_playlists"
	case ReadPlaylist:
		return "read_playlist"
	case Analyze:
		return "analyze"
	case RemoveBatch:
		return "remove_batch"
	case ReinsertBatch:
		return "reinsert_batch"
	case Done:
		return "done"
	default:
		return ""
	}
}

func probeUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Probe,
		Step:    1,
		Total:   1,
		Message: "Checking Spotify session...",
	}
}

func listPlaylistsUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	if pl == nil {
		return ProgressUpdate{
			Phase:   ListPlaylists,
			Step:    step,
			Total:   total,
			Message: "Fetching playlists from Spotify...",
		}
	}
	return ProgressUpdate{
		Phase:   ListPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Scanning: %s...", step, total, pl.Name),
		Data:    *pl,
	}
}

func readPlaylistUpdate(playlistID string, read int) ProgressUpdate {
	if read == 0 {
		return ProgressUpdate{
			Phase:   ReadPlaylist,
			Message: fmt.Sprintf("Reading playlist %s...", playlistID),
		}
	}
	return ProgressUpdate{
		Phase:   ReadPlaylist,
		Step:    read,
		Total:   read,
		Message: fmt.Sprintf("Read %d entries from %s", read, playlistID),
	}
}

func analyzeUpdate(report models.DuplicateReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Analyze,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d duplicated tracks (%d extra copies)", report.Len(), report.Total()),
		Data:    report,
	}
}

func removeBatchUpdate(step, total, removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Removed %d entries", step, total, removed),
	}
}

func reinsertBatchUpdate(step, total, added int, position int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReinsertBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Restored %d tracks at position %d", step, total, added, position),
	}
}

func doneUpdate(removed, reinserted int) ProgressUpdate {
	msg := fmt.Sprintf("Removed %d entries", removed)
	if reinserted > 0 {
		msg = fmt.Sprintf("Removed %d entries, restored %d tracks", removed, reinserted)
	}
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}
