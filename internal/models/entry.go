package models

// EntryKind tags a [PlaylistEntry] with its capability.
type EntryKind int

const (
	// OtherMedia occupies a position but carries no track identity (episodes, local files, unavailable items).
	OtherMedia EntryKind = iota
	// PlayableTrack is a catalog track with an identity and a locator.
	PlayableTrack
)

func (k EntryKind) String() string {
	switch k {
	case PlayableTrack:
		return "track"
	case OtherMedia:
		return "other"
	default:
		return ""
	}
}

// PlaylistEntry is one slot of a playlist read.
//
// The zero value is an [OtherMedia] entry at position 0. Track data is only reachable through [PlaylistEntry.Track],
// so callers can never read an identity off an entry that does not have one.
type PlaylistEntry struct {
	kind     EntryKind
	position int
	track    TrackRecord
	media    string
}

// NewTrackEntry builds a [PlayableTrack] entry.
func NewTrackEntry(identity, locator, name, artists string) PlaylistEntry {
	return PlaylistEntry{
		kind:  PlayableTrack,
		track: TrackRecord{Identity: identity, Locator: locator, Name: name, Artists: artists},
		media: "track",
	}
}

// NewOtherEntry builds an [OtherMedia] entry. mediaType is informational (e.g. "episode", "local").
func NewOtherEntry(mediaType string) PlaylistEntry {
	return PlaylistEntry{kind: OtherMedia, media: mediaType}
}

func (e PlaylistEntry) Kind() EntryKind   { return e.kind }
func (e PlaylistEntry) Position() int     { return e.position }
func (e PlaylistEntry) MediaType() string { return e.media }

// WithPosition returns a copy of the entry pinned to position p.
func (e PlaylistEntry) WithPosition(p int) PlaylistEntry {
	e.position = p
	e.track.Position = p
	return e
}

// Track returns the entry's track record and true when the entry is a [PlayableTrack].
func (e PlaylistEntry) Track() (TrackRecord, bool) {
	if e.kind != PlayableTrack {
		return TrackRecord{}, false
	}
	return e.track, true
}
