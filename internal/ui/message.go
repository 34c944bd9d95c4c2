package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsScanned MsgKind = iota
	MsgProgressUpdate
	MsgCleanupComplete
)

type scanResult struct {
	summaries []models.PlaylistSummary
	err       error
}

type cleanupResult struct {
	removed int
	err     error
}

// playlistsScannedMsg is the constructor for [MsgPlaylistsScanned]
func playlistsScannedMsg(summaries []models.PlaylistSummary, err error) Msg {
	return Msg{kind: MsgPlaylistsScanned, data: scanResult{summaries, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// cleanupCompleteMsg is the constructor for [MsgCleanupComplete]
func cleanupCompleteMsg(removed int, err error) Msg {
	return Msg{kind: MsgCleanupComplete, data: cleanupResult{removed, err}}
}
