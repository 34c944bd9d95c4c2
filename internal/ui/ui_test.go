package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/tasks"
	tu "github.com/desertthunder/spotclean/internal/testing"
)

func newTestModel(t *testing.T, fake *tu.FakePlaylistAPI) *Model {
	t.Helper()
	cleaner := tasks.NewCleaner(fake, log.New(io.Discard), 100, nil)
	m := NewModel(context.Background(), cleaner)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(m.scanPlaylists()())
	return m
}

func press(m *Model, k string) {
	switch k {
	case "enter":
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	default:
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

// finish drains progress until the cleanup completes.
func finish(t *testing.T, m *Model) {
	t.Helper()
	for range 100 {
		if m.view != CleanupView {
			return
		}
		m.Update(m.waitForProgress()())
	}
	t.Fatal("cleanup did not complete")
}

func scenarioFake() *tu.FakePlaylistAPI {
	fake := tu.NewFakePlaylistAPI()
	fake.AddPlaylist("pl1", "Road Trip", tu.Tracks("A", "B", "A", "C", "A")...)
	fake.AddPlaylist("pl2", "Focus", tu.Tracks("D", "E")...)
	return fake
}

func TestModel(t *testing.T) {
	t.Run("Scan lists playlists", func(t *testing.T) {
		m := newTestModel(t, scenarioFake())

		if m.view != PlaylistListView {
			t.Fatalf("expected playlist list view, got %d", m.view)
		}
		if len(m.summaries) != 2 {
			t.Errorf("expected 2 summaries, got %d", len(m.summaries))
		}
		if !strings.Contains(m.View(), "Spotify Playlists") {
			t.Errorf("unexpected view: %s", m.View())
		}
	})

	t.Run("Collapse all", func(t *testing.T) {
		fake := scenarioFake()
		m := newTestModel(t, fake)

		press(m, "enter")
		if m.view != DuplicateListView || m.selected.Playlist.ID != "pl1" {
			t.Fatalf("expected duplicates of pl1, got view %d", m.view)
		}

		press(m, "enter")
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Collapse all duplicates in 'Road Trip'?") {
			t.Errorf("unexpected confirm view: %s", m.View())
		}

		press(m, "y")
		finish(t, m)

		if m.err != nil {
			t.Fatalf("unexpected error: %v", m.err)
		}
		if m.outcome.removed != 3 {
			t.Errorf("expected 3 removed, got %d", m.outcome.removed)
		}
		if got := strings.Join(fake.Contents("pl1"), ","); got != "A,B,C" {
			t.Errorf("expected A,B,C, got %s", got)
		}
		if !strings.Contains(m.View(), "Cleanup Complete") {
			t.Errorf("unexpected result view: %s", m.View())
		}
	})

	t.Run("Remove extra copies of one track", func(t *testing.T) {
		fake := scenarioFake()
		m := newTestModel(t, fake)

		press(m, "enter")
		press(m, "x")
		if m.view != ConfirmView || m.action.identity != "A" {
			t.Fatalf("expected confirm for A, got view %d action %+v", m.view, m.action)
		}

		press(m, "y")
		finish(t, m)

		if m.outcome.removed != 2 {
			t.Errorf("expected 2 removed, got %d", m.outcome.removed)
		}
		if got := strings.Join(fake.Contents("pl1"), ","); got != "A,B,C" {
			t.Errorf("expected A,B,C, got %s", got)
		}
	})

	t.Run("Decline returns to duplicates", func(t *testing.T) {
		fake := scenarioFake()
		m := newTestModel(t, fake)

		press(m, "enter")
		press(m, "enter")
		press(m, "n")
		if m.view != DuplicateListView {
			t.Errorf("expected duplicate list view, got %d", m.view)
		}
		press(m, "esc")
		if m.view != PlaylistListView {
			t.Errorf("expected playlist list view, got %d", m.view)
		}
		if len(fake.CallsTo(tu.MethodRemove)) != 0 {
			t.Error("declining must not remove anything")
		}
	})

	t.Run("Cleanup failure", func(t *testing.T) {
		fake := scenarioFake()
		m := newTestModel(t, fake)
		fake.FailOn(tu.MethodUser, 1, tu.ErrUnauthorized)

		press(m, "enter")
		press(m, "enter")
		press(m, "y")
		finish(t, m)

		if m.err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(m.View(), "Rescan") {
			t.Errorf("expected rescan hint, got: %s", m.View())
		}

		press(m, "r")
		if m.view != ScanView {
			t.Errorf("expected scan view after rescan, got %d", m.view)
		}
	})

	t.Run("Scan failure", func(t *testing.T) {
		fake := scenarioFake()
		fake.FailOn(tu.MethodPlaylists, 1, errors.New("offline"))
		m := newTestModel(t, fake)

		if m.view != ResultView {
			t.Fatalf("expected result view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "offline") {
			t.Errorf("expected error in view, got: %s", m.View())
		}
	})
}

func TestItems(t *testing.T) {
	clean := playlistItem{summary: models.PlaylistSummary{Playlist: models.Playlist{Name: "Focus", TrackCount: 2}}}
	if clean.Description() != "2 tracks • no duplicates" {
		t.Errorf("unexpected description %q", clean.Description())
	}

	dup := duplicateItem{entry: models.DuplicateEntry{
		Canonical: models.TrackRecord{Identity: "abc", Position: 4, Name: "Song", Artists: "Band"},
		Surplus:   2,
	}}
	if dup.Title() != "Band - Song" {
		t.Errorf("unexpected title %q", dup.Title())
	}
	if dup.Description() != "first at #5 • 2 extra • abc" {
		t.Errorf("unexpected description %q", dup.Description())
	}
}

func TestProgressLine(t *testing.T) {
	tc := []struct {
		update tasks.ProgressUpdate
		want   string
	}{
		{tasks.ProgressUpdate{Phase: tasks.Probe}, "Checking Spotify session..."},
		{tasks.ProgressUpdate{Phase: tasks.Analyze}, "Reading playlist..."},
		{tasks.ProgressUpdate{Phase: tasks.RemoveBatch, Step: 2, Total: 3}, "Removing entries (batch 2/3)"},
		{tasks.ProgressUpdate{Phase: tasks.ReinsertBatch, Step: 1, Total: 1}, "Restoring tracks (batch 1/1)"},
		{tasks.ProgressUpdate{Phase: tasks.Done}, "Processing..."},
	}

	for _, tt := range tc {
		if got := styles.progress(tt.update); !strings.Contains(got, tt.want) {
			t.Errorf("progress(%v) = %q, want %q", tt.update.Phase, got, tt.want)
		}
	}
}
