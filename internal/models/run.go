package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunMode names the kind of cleanup a [CleanupRun] performed.
type RunMode string

const (
	ModeSpecific RunMode = "specific"
	ModeCollapse RunMode = "collapse"
)

// RunStatus is the lifecycle state of a [CleanupRun].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

var (
	_ Record = (*CleanupRun)(nil)

	errMissingPlaylist = errors.New("playlist id is required")
)

// CleanupRun records the outcome of one mutating cleanup against a playlist.
//
// Runs are history only: detection and planning never read them back.
type CleanupRun struct {
	id           string
	sequence     int
	playlistID   string
	mode         RunMode
	identities   []string
	removed      int
	reinserted   int
	status       RunStatus
	errorMessage string
	startedAt    *time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewCleanupRun creates a pending run for playlistID.
func NewCleanupRun(playlistID string, mode RunMode, identities []string) *CleanupRun {
	now := time.Now()
	return &CleanupRun{
		playlistID: playlistID,
		mode:       mode,
		identities: append([]string(nil), identities...),
		status:     RunPending,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (r *CleanupRun) ID() string              { return r.id }
func (r *CleanupRun) Sequence() int           { return r.sequence }
func (r *CleanupRun) PlaylistID() string      { return r.playlistID }
func (r *CleanupRun) Mode() RunMode           { return r.mode }
func (r *CleanupRun) Identities() []string    { return r.identities }
func (r *CleanupRun) Removed() int            { return r.removed }
func (r *CleanupRun) Reinserted() int         { return r.reinserted }
func (r *CleanupRun) Status() RunStatus       { return r.status }
func (r *CleanupRun) ErrorMessage() string    { return r.errorMessage }
func (r *CleanupRun) StartedAt() *time.Time   { return r.startedAt }
func (r *CleanupRun) CompletedAt() *time.Time { return r.completedAt }
func (r *CleanupRun) CreatedAt() time.Time    { return r.createdAt }
func (r *CleanupRun) UpdatedAt() time.Time    { return r.updatedAt }
func (r *CleanupRun) DeletedAt() *time.Time   { return r.deletedAt }

func (r *CleanupRun) SetID(id string)              { r.id = id }
func (r *CleanupRun) SetSequence(seq int)          { r.sequence = seq }
func (r *CleanupRun) SetUpdatedAt(t time.Time)     { r.updatedAt = t }
func (r *CleanupRun) SetCreatedAt(t time.Time)     { r.createdAt = t }
func (r *CleanupRun) SetDeletedAt(t *time.Time)    { r.deletedAt = t }
func (r *CleanupRun) SetIdentities(ids []string)   { r.identities = ids }
func (r *CleanupRun) SetCounts(removed, added int) { r.removed, r.reinserted = removed, added }

// SetTimes restores lifecycle timestamps when loading from storage.
func (r *CleanupRun) SetTimes(started, completed *time.Time) {
	r.startedAt, r.completedAt = started, completed
}

// SetStatus restores a stored status without touching timestamps.
func (r *CleanupRun) SetStatus(status RunStatus, message string) {
	r.status, r.errorMessage = status, message
}

// Start marks the run as running.
func (r *CleanupRun) Start() {
	now := time.Now()
	r.status = RunRunning
	r.startedAt = &now
	r.updatedAt = now
}

// Finish marks the run completed, failed or cancelled depending on err.
func (r *CleanupRun) Finish(removed, reinserted int, err error, cancelled bool) {
	now := time.Now()
	r.removed, r.reinserted = removed, reinserted
	r.completedAt = &now
	r.updatedAt = now

	switch {
	case err == nil:
		r.status = RunCompleted
		r.errorMessage = ""
	case cancelled:
		r.status = RunCancelled
		r.errorMessage = err.Error()
	default:
		r.status = RunFailed
		r.errorMessage = err.Error()
	}
}

// IdentityList joins identities for storage.
func (r *CleanupRun) IdentityList() string {
	return strings.Join(r.identities, ",")
}

// ParseIdentityList is the inverse of [CleanupRun.IdentityList].
func ParseIdentityList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Validate checks required fields and enum values.
func (r *CleanupRun) Validate() error {
	if strings.TrimSpace(r.playlistID) == "" {
		return errMissingPlaylist
	}

	switch r.mode {
	case ModeSpecific, ModeCollapse:
	default:
		return fmt.Errorf("invalid run mode %q", r.mode)
	}

	if _, err := ParseRunStatus(string(r.status)); err != nil {
		return err
	}

	if r.removed < 0 || r.reinserted < 0 {
		return fmt.Errorf("counts must not be negative")
	}
	return nil
}
