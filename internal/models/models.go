// package models defines the data model for the playlist cleaner
package models

import (
	"fmt"
	"time"
)

// Record is a persisted entity with a per-table sequence number and soft deletion.
type Record interface {
	ID() string
	Sequence() int
	CreatedAt() time.Time
	UpdatedAt() time.Time
	DeletedAt() *time.Time
	Validate() error
}

// RunHistory stores the outcome of mutating cleanups.
//
// RecordStart and RecordFinish bracket one mutation. Get and List never return soft-deleted runs.
type RunHistory interface {
	RecordStart(run *CleanupRun) error
	RecordFinish(run *CleanupRun) error
	Get(id string) (*CleanupRun, error)
	Delete(id string) error
	List(filter RunFilter) ([]*CleanupRun, error)
}

// RunFilter narrows a history listing. Zero fields match every run; a zero Limit returns all of them.
type RunFilter struct {
	PlaylistID string
	Status     RunStatus
	Mode       RunMode
	Limit      int
}

// Validate rejects unknown statuses and modes and a negative limit.
func (f RunFilter) Validate() error {
	if f.Status != "" {
		if _, err := ParseRunStatus(string(f.Status)); err != nil {
			return err
		}
	}
	switch f.Mode {
	case "", ModeSpecific, ModeCollapse:
	default:
		return fmt.Errorf("unknown run mode %q", f.Mode)
	}
	if f.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", f.Limit)
	}
	return nil
}

// ParseRunStatus maps s onto a [RunStatus].
func ParseRunStatus(s string) (RunStatus, error) {
	switch status := RunStatus(s); status {
	case RunPending, RunRunning, RunCompleted, RunFailed, RunCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("unknown run status %q", s)
	}
}
