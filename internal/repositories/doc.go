// Package repositories implements SQLite persistence for cleanup run history.
//
// [RunRepository] implements models.RunHistory. Runs are soft deleted via deleted_at and excluded from queries once
// deleted. Listings take a typed models.RunFilter.
//
// History is write-mostly: the cleaner records a run when a mutation starts and updates it when the mutation
// finishes. Nothing in detection or planning reads it back, so playlists are always re-read before they are changed.
//
// The [NextSequence] function atomically increments per-table sequence counters kept in dedicated sequence tables.
package repositories
