// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for duplicate cleanup:
//  1. [ScanView] : Spinner while every playlist is read and analyzed
//  2. [PlaylistListView] : Browse playlists with their duplicate counts
//  3. [DuplicateListView] : Inspect the duplicated tracks of one playlist
//  4. [ConfirmView] : Confirm collapsing all duplicates, or removing the extra copies of one track
//  5. [CleanupView] : Monitor real-time progress updates
//  6. [ResultView] : Display the number of entries removed
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the tasks.Cleaner, providing non-blocking status reporting during cleanup.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, x, esc, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
