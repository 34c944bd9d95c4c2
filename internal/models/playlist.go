package models

import "strings"

// Playlist represents a playlist owned by or followed by the current user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	SnapshotID  string `json:"snapshot_id,omitempty"`
}

// PlaylistMetadata is the part of a playlist needed to address positions: its size and the snapshot both refer to.
type PlaylistMetadata struct {
	TotalCount int
	SnapshotID string
}

// PlaylistSummary pairs a playlist with the duplicates found in it.
type PlaylistSummary struct {
	Playlist Playlist        `json:"playlist"`
	Report   DuplicateReport `json:"duplicates"`
}

// TrackRecord is one playable entry at a specific offset in a specific read of a playlist.
type TrackRecord struct {
	Identity string `json:"id"`
	Locator  string `json:"uri"`
	Position int    `json:"position"`
	Name     string `json:"name,omitempty"`
	Artists  string `json:"artists,omitempty"`
}

// Key returns the case-insensitive identity key of the record.
func (t TrackRecord) Key() string {
	return IdentityKey(t.Identity)
}

// Label formats the record for display, falling back to the identity when no name is known.
func (t TrackRecord) Label() string {
	switch {
	case t.Name == "":
		return t.Identity
	case t.Artists == "":
		return t.Name
	default:
		return t.Artists + " - " + t.Name
	}
}

// IdentityKey normalizes a track identity for comparison.
func IdentityKey(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
