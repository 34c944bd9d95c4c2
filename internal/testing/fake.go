package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/services"
)

var _ services.PlaylistAPI = (*FakePlaylistAPI)(nil)

// Method names recorded in the call log.
const (
	MethodItems     = "PlaylistItems"
	MethodMetadata  = "PlaylistMetadata"
	MethodRemove    = "RemoveItems"
	MethodAdd       = "AddItems"
	MethodUser      = "CurrentUser"
	MethodPlaylists = "UserPlaylists"
)

// FakeItem is one slot of a fake playlist.
type FakeItem struct {
	Identity string
	Locator  string
	Media    string
}

// Track returns a playable item whose locator is derived from id.
func Track(id string) FakeItem {
	return FakeItem{Identity: id, Locator: "spotify:track:" + id, Media: "track"}
}

// Tracks returns one playable item per id.
func Tracks(ids ...string) []FakeItem {
	items := make([]FakeItem, len(ids))
	for i, id := range ids {
		items[i] = Track(id)
	}
	return items
}

// Other returns a non-track item such as an episode or local file.
func Other(media string) FakeItem {
	return FakeItem{Media: media, Locator: "spotify:" + media + ":x"}
}

func (i FakeItem) entry() models.PlaylistEntry {
	if i.Identity == "" {
		return models.NewOtherEntry(i.Media)
	}
	return models.NewTrackEntry(i.Identity, i.Locator, "", "")
}

// Call is one accepted request made against the fake.
type Call struct {
	Method     string
	PlaylistID string
	Snapshot   string
	Position   int
	Count      int
}

type fakePlaylist struct {
	meta     models.Playlist
	items    []FakeItem
	snapshot int
}

func (p *fakePlaylist) snapshotID() string {
	return "snap-" + strconv.Itoa(p.snapshot)
}

type failure struct {
	nth int
	err error
}

// FakePlaylistAPI is an in-memory [services.PlaylistAPI] with Spotify's positional semantics.
//
// Removals are validated against the snapshot id they carry and applied atomically. Insertions place items
// contiguously at a position no greater than the playlist size. Every mutation advances the snapshot.
type FakePlaylistAPI struct {
	// PageSize bounds item and playlist pages. Zero means 50.
	PageSize int
	// User is returned by CurrentUser. Nil means a default user.
	User *services.SpotifyUser
	// OnCall runs after a call is accepted and before it is applied. n is the 1-based count for method.
	OnCall func(method string, n int)

	mu        sync.Mutex
	playlists map[string]*fakePlaylist
	order     []string
	calls     []Call
	counts    map[string]int
	failures  map[string]failure
}

// NewFakePlaylistAPI returns an empty fake.
func NewFakePlaylistAPI() *FakePlaylistAPI {
	return &FakePlaylistAPI{
		playlists: make(map[string]*fakePlaylist),
		counts:    make(map[string]int),
		failures:  make(map[string]failure),
	}
}

// AddPlaylist registers a playlist with the given items.
func (f *FakePlaylistAPI) AddPlaylist(id, name string, items ...FakeItem) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.playlists[id]; !ok {
		f.order = append(f.order, id)
	}
	f.playlists[id] = &fakePlaylist{
		meta:  models.Playlist{ID: id, Name: name, Owner: "tester"},
		items: append([]FakeItem(nil), items...),
	}
}

// FailOn makes the nth call (1-based) to method return err.
func (f *FakePlaylistAPI) FailOn(method string, nth int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = failure{nth: nth, err: err}
}

// Append adds items to the end of a playlist without logging a call, like an edit made by another client.
func (f *FakePlaylistAPI) Append(playlistID string, items ...FakeItem) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.playlists[playlistID]; ok {
		p.items = append(p.items, items...)
		p.snapshot++
	}
}

// Contents returns the identities of a playlist in order; other media appear as "<media>".
func (f *FakePlaylistAPI) Contents(playlistID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.playlists[playlistID]
	if !ok {
		return nil
	}
	out := make([]string, len(p.items))
	for i, it := range p.items {
		if it.Identity == "" {
			out[i] = "<" + it.Media + ">"
			continue
		}
		out[i] = it.Identity
	}
	return out
}

// Calls returns a copy of the call log.
func (f *FakePlaylistAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the logged calls of one method.
func (f *FakePlaylistAPI) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakePlaylistAPI) pageSize() int {
	if f.PageSize <= 0 {
		return services.DefaultPageSize
	}
	return f.PageSize
}

// accept records a call and applies cancellation, failure injection and the OnCall hook.
//
// It must be called without f.mu held.
func (f *FakePlaylistAPI) accept(ctx context.Context, call Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.counts[call.Method]++
	n := f.counts[call.Method]
	fail, hasFail := f.failures[call.Method]
	hook := f.OnCall
	f.mu.Unlock()

	if hook != nil {
		hook(call.Method, n)
	}
	if hasFail && fail.nth == n {
		return fail.err
	}
	return nil
}

func notFound(id string) error {
	return &services.APIError{StatusCode: http.StatusNotFound, Message: "playlist " + id + " not found"}
}

func badRequest(format string, args ...any) error {
	return &services.APIError{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func parseOffset(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, ok := strings.CutPrefix(token, "offset:")
	if !ok {
		return 0, badRequest("invalid page token %q", token)
	}
	return strconv.Atoi(raw)
}

func (f *FakePlaylistAPI) PlaylistItems(ctx context.Context, playlistID, pageToken string) (*services.ItemPage, error) {
	if err := f.accept(ctx, Call{Method: MethodItems, PlaylistID: playlistID}); err != nil {
		return nil, err
	}

	offset, err := parseOffset(pageToken)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.playlists[playlistID]
	if !ok {
		return nil, notFound(playlistID)
	}

	end := min(offset+f.pageSize(), len(p.items))
	page := &services.ItemPage{Total: len(p.items)}
	for _, it := range p.items[min(offset, end):end] {
		page.Entries = append(page.Entries, it.entry())
	}
	if end < len(p.items) {
		page.Next = "offset:" + strconv.Itoa(end)
	}
	return page, nil
}

func (f *FakePlaylistAPI) PlaylistMetadata(ctx context.Context, playlistID string) (*models.PlaylistMetadata, error) {
	if err := f.accept(ctx, Call{Method: MethodMetadata, PlaylistID: playlistID}); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.playlists[playlistID]
	if !ok {
		return nil, notFound(playlistID)
	}
	return &models.PlaylistMetadata{TotalCount: len(p.items), SnapshotID: p.snapshotID()}, nil
}

// RemoveItems validates every position against snapshotID, then removes them all at once.
func (f *FakePlaylistAPI) RemoveItems(ctx context.Context, playlistID, snapshotID string, items []models.TrackRecord) (string, error) {
	call := Call{Method: MethodRemove, PlaylistID: playlistID, Snapshot: snapshotID, Count: len(items)}
	if err := f.accept(ctx, call); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.playlists[playlistID]
	if !ok {
		return "", notFound(playlistID)
	}
	if len(items) > services.MaxBatchSize {
		return "", badRequest("too many items: %d", len(items))
	}
	if snapshotID != p.snapshotID() {
		return "", badRequest("snapshot %s is stale, current is %s", snapshotID, p.snapshotID())
	}

	drop := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it.Position < 0 || it.Position >= len(p.items) {
			return "", badRequest("position %d out of range", it.Position)
		}
		if p.items[it.Position].Locator != it.Locator {
			return "", badRequest("item at position %d is not %s", it.Position, it.Locator)
		}
		drop[it.Position] = struct{}{}
	}

	kept := p.items[:0:0]
	for i, it := range p.items {
		if _, ok := drop[i]; !ok {
			kept = append(kept, it)
		}
	}
	p.items = kept
	p.snapshot++
	return p.snapshotID(), nil
}

func (f *FakePlaylistAPI) AddItems(ctx context.Context, playlistID string, locators []string, position int) (string, error) {
	call := Call{Method: MethodAdd, PlaylistID: playlistID, Position: position, Count: len(locators)}
	if err := f.accept(ctx, call); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.playlists[playlistID]
	if !ok {
		return "", notFound(playlistID)
	}
	if len(locators) > services.MaxBatchSize {
		return "", badRequest("too many items: %d", len(locators))
	}
	if position < 0 || position > len(p.items) {
		return "", badRequest("position %d out of range", position)
	}

	inserted := make([]FakeItem, len(locators))
	for i, loc := range locators {
		id, _ := strings.CutPrefix(loc, "spotify:track:")
		inserted[i] = FakeItem{Identity: id, Locator: loc, Media: "track"}
	}

	tail := append([]FakeItem(nil), p.items[position:]...)
	p.items = append(append(p.items[:position], inserted...), tail...)
	p.snapshot++
	return p.snapshotID(), nil
}

func (f *FakePlaylistAPI) CurrentUser(ctx context.Context) (*services.SpotifyUser, error) {
	if err := f.accept(ctx, Call{Method: MethodUser}); err != nil {
		return nil, err
	}
	if f.User != nil {
		return f.User, nil
	}
	return &services.SpotifyUser{ID: "tester", DisplayName: "Test User"}, nil
}

func (f *FakePlaylistAPI) UserPlaylists(ctx context.Context, pageToken string) (*services.PlaylistPage, error) {
	if err := f.accept(ctx, Call{Method: MethodPlaylists}); err != nil {
		return nil, err
	}

	offset, err := parseOffset(pageToken)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	end := min(offset+f.pageSize(), len(f.order))
	page := &services.PlaylistPage{Total: len(f.order)}
	for _, id := range f.order[min(offset, end):end] {
		p := f.playlists[id]
		meta := p.meta
		meta.TrackCount = len(p.items)
		meta.SnapshotID = p.snapshotID()
		page.Playlists = append(page.Playlists, meta)
	}
	if end < len(f.order) {
		page.Next = "offset:" + strconv.Itoa(end)
	}
	return page, nil
}

// ErrUnauthorized is a 401 response as returned by the Spotify client.
var ErrUnauthorized error = &services.APIError{StatusCode: http.StatusUnauthorized, Message: "The access token expired"}

// IsBadRequest reports whether err is a 400 response, as produced by stale snapshots or bad positions.
func IsBadRequest(err error) bool {
	var apiErr *services.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}
