package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/spotclean/internal/tasks"
)

const (
	spotifyGreen = "#1DB954"
	okGreen      = "#04B575"
	errRed       = "#FF4D4D"
	warnOrange   = "#FFA500"
	mutedGray    = "#626262"
)

var styles = newTheme()

// theme holds the styles of the cleanup screens. Removal batches use the warning color and reinsertion batches
// the success color.
type theme struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	hint  lipgloss.Style
	phase map[tasks.Phase]lipgloss.Style
}

func newTheme() *theme {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	t := &theme{
		title: fg(spotifyGreen).Bold(true).MarginBottom(1),
		ok:    fg(okGreen).Bold(true),
		err:   fg(errRed).Bold(true),
		warn:  fg(warnOrange),
		hint:  fg(mutedGray).Italic(true),
	}
	t.phase = map[tasks.Phase]lipgloss.Style{
		tasks.Probe:         t.hint,
		tasks.ReadPlaylist:  t.hint,
		tasks.Analyze:       t.hint,
		tasks.RemoveBatch:   t.warn,
		tasks.ReinsertBatch: t.ok,
	}
	return t
}

// progress renders the status line for a cleaner update.
func (t *theme) progress(u tasks.ProgressUpdate) string {
	var label string
	switch u.Phase {
	case tasks.Probe:
		label = "Checking Spotify session..."
	case tasks.ReadPlaylist, tasks.Analyze:
		label = "Reading playlist..."
	case tasks.RemoveBatch:
		label = fmt.Sprintf("Removing entries (batch %d/%d)", u.Step, u.Total)
	case tasks.ReinsertBatch:
		label = fmt.Sprintf("Restoring tracks (batch %d/%d)", u.Step, u.Total)
	default:
		return "Processing..."
	}
	return t.phase[u.Phase].Render(label)
}
