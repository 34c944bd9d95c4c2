// Package tasks orchestrates duplicate cleanup against a Spotify playlist with real-time progress reporting.
//
// # Core Operations
//
// [Cleaner] exposes four operations:
//
//  1. [Cleaner.ListPlaylistsWithDuplicates] : duplicate summary for every playlist of the current user
//  2. [Cleaner.PlaylistDuplicates] : duplicate report for one playlist
//  3. [Cleaner.RemoveSpecificDuplicates] : keep the first occurrence of one track, remove the rest
//  4. [Cleaner.CollapseAllDuplicates] : remove every occurrence of each listed track, then restore one copy at
//     its earliest original position
//
// Mutating operations validate their input, then probe the session with [Cleaner.Probe] before reading anything.
// Each re-reads the playlist and plans against that read with the pure functions in package dedupe.
//
// # Positions and snapshots
//
// [TrackReader] assigns a position to every entry, including episodes and local files, so removal offsets match
// the remote playlist. [BatchExecutor] removes in descending position order and chains snapshot IDs from one
// request to the next. Batches run strictly in sequence and are never rolled back; a failure after N batches
// leaves N applied, and re-running detection converges.
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate]. Updates use select with default to prevent
// blocking.
//
// # Run History
//
// The optional [RunRecorder] (repositories.RunRepository) stores every mutating run. Recording errors are logged
// and otherwise ignored.
package tasks
