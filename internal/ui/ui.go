package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ScanView ViewState = iota
	PlaylistListView
	DuplicateListView
	ConfirmView
	CleanupView
	ResultView
)

// pendingAction is the cleanup awaiting confirmation. An empty identity means collapse every duplicate.
type pendingAction struct {
	identity string
	label    string
}

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	cleaner       *tasks.Cleaner
	width         int
	height        int
	spinner       spinner.Model
	playlistList  list.Model
	summaries     []models.PlaylistSummary
	duplicateList list.Model
	selected      *models.PlaylistSummary
	action        pendingAction
	progressChan  chan tasks.ProgressUpdate
	progress      tasks.ProgressUpdate
	outcome       cleanupResult
	err           error
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model driven by cleaner.
func NewModel(ctx context.Context, cleaner *tasks.Cleaner) *Model {
	return &Model{
		ctx:     ctx,
		view:    ScanView,
		cleaner: cleaner,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and scans every playlist for duplicates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.scanPlaylists())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Zero-value lists have no delegate and cannot be sized.
		if m.playlistList.Items() != nil {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.duplicateList.Items() != nil {
			m.duplicateList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != ScanView && m.view != CleanupView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.view {
		case ScanView, CleanupView:
			if key.Matches(msg, m.keys.quit) && msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case DuplicateListView:
			return m.handleDuplicateListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsScanned:
		res := msg.data.(scanResult)
		if res.err != nil {
			m.err = res.err
			m.view = ResultView
			return m, nil
		}
		m.summaries = res.summaries
		items := make([]list.Item, len(res.summaries))
		for i, s := range res.summaries {
			items[i] = playlistItem{summary: s}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Spotify Playlists"
		m.playlistList.SetSize(max(m.width-4, 0), max(m.height-8, 0))
		m.view = PlaylistListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgCleanupComplete:
		m.outcome = msg.data.(cleanupResult)
		m.err = m.outcome.err
		m.progressChan = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ScanView:
		return fmt.Sprintf("%s Scanning playlists for duplicates...", m.spinner.View())
	case PlaylistListView:
		return m.renderPlaylistList()
	case DuplicateListView:
		return m.renderDuplicateList()
	case ConfirmView:
		return m.renderConfirm()
	case CleanupView:
		return m.renderCleanup()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.openPlaylist(pl.summary)
			return m, nil
		}
	}
	return m.updateLists(msg)
}

func (m *Model) openPlaylist(summary models.PlaylistSummary) {
	m.selected = &summary
	items := make([]list.Item, len(summary.Report.Entries))
	for i, e := range summary.Report.Entries {
		items[i] = duplicateItem{entry: e}
	}
	m.duplicateList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.duplicateList.Title = fmt.Sprintf("Duplicates in '%s'", summary.Playlist.Name)
	m.duplicateList.SetSize(max(m.width-4, 0), max(m.height-8, 0))
	m.view = DuplicateListView
}

func (m *Model) handleDuplicateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.duplicateList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.selected.Report.Empty() {
			return m, nil
		}
		m.action = pendingAction{}
		m.view = ConfirmView
		return m, nil
	case key.Matches(msg, m.keys.single):
		if d, ok := m.duplicateList.SelectedItem().(duplicateItem); ok {
			m.action = pendingAction{identity: d.entry.Canonical.Identity, label: d.entry.Canonical.Label()}
			m.view = ConfirmView
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = DuplicateListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = CleanupView
		m.progress = tasks.ProgressUpdate{}
		return m, tea.Batch(m.spinner.Tick, m.startCleanup())
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = ScanView
		m.selected = nil
		m.outcome = cleanupResult{}
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, m.scanPlaylists())
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case DuplicateListView:
		m.duplicateList, cmd = m.duplicateList.Update(msg)
	}
	return m, cmd
}

func (m *Model) scanPlaylists() tea.Cmd {
	return func() tea.Msg {
		summaries, err := m.cleaner.ListPlaylistsWithDuplicates(m.ctx, nil)
		return playlistsScannedMsg(summaries, err)
	}
}

// startCleanup runs the pending action in the background. The worker records its outcome before closing the
// progress channel, so waitForProgress reads it only after the close is observed.
func (m *Model) startCleanup() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	m.progressChan = progress
	playlistID := m.selected.Playlist.ID
	action := m.action
	identities := m.selected.Report.Identities()

	go func() {
		var removed int
		var err error
		if action.identity != "" {
			removed, err = m.cleaner.RemoveSpecificDuplicates(m.ctx, playlistID, action.identity, progress)
		} else {
			removed, err = m.cleaner.CollapseAllDuplicates(m.ctx, playlistID, identities, progress)
		}
		m.outcome = cleanupResult{removed: removed, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return cleanupCompleteMsg(m.outcome.removed, m.outcome.err)
		}

		update, ok := <-progress
		if !ok {
			return cleanupCompleteMsg(m.outcome.removed, m.outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderDuplicateList() string {
	collapseKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "collapse all"))
	helpKeys := []key.Binding{collapseKey, m.keys.single, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.selected != nil && m.selected.Report.Empty() {
		return fmt.Sprintf("%s\n\n%s", styles.ok.Render("No duplicates in this playlist."), helpView)
	}
	return fmt.Sprintf("%s\n\n%s", m.duplicateList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	name := m.selected.Playlist.Name

	var title, info string
	if m.action.identity != "" {
		title = styles.title.Render(fmt.Sprintf("Remove extra copies of '%s'?", m.action.label))
		info = fmt.Sprintf("\nPlaylist: %s\nThe first occurrence is kept.\n", name)
	} else {
		title = styles.title.Render(fmt.Sprintf("Collapse all duplicates in '%s'?", name))
		info = fmt.Sprintf("\nTracks affected: %d\nEntries removed: %d\nOne copy of each track is restored at its earliest position.\n",
			m.selected.Report.Len(), m.selected.Report.Total()+m.selected.Report.Len())
	}

	warning := styles.warn.Render("Changes are applied in batches and are not rolled back on failure.")
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, info, warning, helpView)
}

func (m *Model) renderCleanup() string {
	title := styles.title.Render("Cleaning Playlist")
	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), styles.progress(m.progress), m.progress.Message)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		msg := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
		if m.selected != nil {
			msg += "\n\n" + styles.hint.Render("Some batches may have been applied. Rescan to see the current state.")
		}
		return fmt.Sprintf("%s\n\n%s", msg, helpView)
	}

	if m.selected == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Cleanup Complete!")
	var b strings.Builder
	fmt.Fprintf(&b, "\nPlaylist: %s\nEntries removed: %d", m.selected.Playlist.Name, m.outcome.removed)
	if m.action.identity == "" && m.outcome.removed > 0 {
		fmt.Fprintf(&b, "\nTracks restored: %d", m.selected.Report.Len())
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, b.String(), helpView)
}
