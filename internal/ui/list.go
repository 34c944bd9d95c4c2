package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotclean/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = duplicateItem{}
)

// playlistItem wraps [models.PlaylistSummary] to implement [list.Item].
type playlistItem struct {
	summary models.PlaylistSummary
}

func (i playlistItem) FilterValue() string { return i.summary.Playlist.Name }
func (i playlistItem) Title() string       { return i.summary.Playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.summary.Playlist.TrackCount)
	if i.summary.Report.Empty() {
		return desc + " • no duplicates"
	}
	return fmt.Sprintf("%s • %d duplicated (%d extra)", desc, i.summary.Report.Len(), i.summary.Report.Total())
}

// duplicateItem wraps [models.DuplicateEntry] to implement [list.Item].
type duplicateItem struct {
	entry models.DuplicateEntry
}

func (i duplicateItem) FilterValue() string { return i.entry.Canonical.Label() }
func (i duplicateItem) Title() string       { return i.entry.Canonical.Label() }
func (i duplicateItem) Description() string {
	return fmt.Sprintf("first at #%d • %d extra • %s", i.entry.Canonical.Position+1, i.entry.Surplus, i.entry.Canonical.Identity)
}
