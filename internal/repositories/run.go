package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/shared"
)

var _ models.RunHistory = (*RunRepository)(nil)

const runColumns = `
	id, sequence, playlist_id, mode, identities, removed, reinserted, status,
	error_message, started_at, completed_at, created_at, updated_at, deleted_at
`

// RunRepository implements [models.RunHistory] on SQLite.
//
// Handles run CRUD operations with soft delete support and playlist/status/mode queries.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.CleanupRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "cleanup_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	query := `INSERT INTO cleanup_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`

	_, err = r.db.Exec(query,
		run.ID(),
		run.Sequence(),
		run.PlaylistID(),
		string(run.Mode()),
		run.IdentityList(),
		run.Removed(),
		run.Reinserted(),
		string(run.Status()),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.CleanupRun, error) {
	query := `SELECT ` + runColumns + ` FROM cleanup_runs WHERE id = ? AND deleted_at IS NULL`
	return scanRun(r.db.QueryRow(query, id))
}

// Update persists the mutable fields of a run: counts, status and lifecycle timestamps.
func (r *RunRepository) Update(run *models.CleanupRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE cleanup_runs
		SET identities = ?, removed = ?, reinserted = ?, status = ?, error_message = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.IdentityList(),
		run.Removed(),
		run.Reinserted(),
		string(run.Status()),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return expectAffected(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE cleanup_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return expectAffected(result, id)
}

// List retrieves runs matching filter, newest first, excluding soft-deleted runs.
func (r *RunRepository) List(filter models.RunFilter) ([]*models.CleanupRun, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	query := `SELECT ` + runColumns + ` FROM cleanup_runs WHERE deleted_at IS NULL`
	args := []any{}

	for _, c := range []struct{ column, value string }{
		{"playlist_id", filter.PlaylistID},
		{"status", string(filter.Status)},
		{"mode", string(filter.Mode)},
	} {
		if c.value != "" {
			query += " AND " + c.column + " = ?"
			args = append(args, c.value)
		}
	}

	query += " ORDER BY sequence DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.CleanupRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// RecordStart persists a new run and marks it running.
func (r *RunRepository) RecordStart(run *models.CleanupRun) error {
	run.Start()
	return r.Create(run)
}

// RecordFinish persists the final state of a run.
func (r *RunRepository) RecordFinish(run *models.CleanupRun) error {
	return r.Update(run)
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a single row from either [sql.Row] or [sql.Rows] into a [models.CleanupRun]
func scanRun(row scanner) (*models.CleanupRun, error) {
	var (
		id           string
		sequence     int
		playlistID   string
		mode         string
		identities   string
		removed      int
		reinserted   int
		status       string
		errorMessage sql.NullString
		startedAt    sql.NullTime
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &playlistID, &mode, &identities, &removed, &reinserted, &status,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewCleanupRun(playlistID, models.RunMode(mode), models.ParseIdentityList(identities))
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetCounts(removed, reinserted)
	run.SetStatus(models.RunStatus(status), errorMessage.String)
	run.SetTimes(nullTime(startedAt), nullTime(completedAt))
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	run.SetDeletedAt(nullTime(deletedAt))

	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func expectAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run %s not found or already deleted", shared.ErrRecordNotFound, id)
	}
	return nil
}
