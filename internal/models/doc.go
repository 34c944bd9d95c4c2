// Package models defines domain entities and persistence interfaces for spotclean.
//
// The package contains two categories of types:
//
// 1. Transient values computed fresh for every operation:
//   - [Playlist] : Basic playlist metadata from Spotify
//   - [PlaylistEntry] : One slot of a playlist, either a playable track or other media
//   - [TrackRecord] : A playable track pinned to the position it was read at
//   - [DuplicateReport] : Canonical occurrence and surplus count per duplicated track
//   - [ReinsertionPlan] : Batched placements that restore one copy of each collapsed track
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CleanupRun] : Outcome of a mutating cleanup against one playlist
//
// Positions are only meaningful against the snapshot they were read from.
// Nothing in the first category is cached between operations.
package models
