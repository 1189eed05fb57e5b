package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

const uniqueViolation = "23505"

// ListAssignments retrieves the assignments of a site inside the window
func (d *DB) ListAssignments(ctx context.Context, siteID string, window model.DateRange, filter db.AssignmentFilter) ([]model.Assignment, error) {
	query := `
		SELECT id, site_id, assignment_date, shift_id, worker_id, is_locked, status
		FROM assignment
		WHERE site_id = $1 AND assignment_date BETWEEN $2 AND $3`
	args := []any{siteID, window.Start, window.End()}

	if filter.LockedOnly {
		query += ` AND is_locked`
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY assignment_date, shift_id, worker_id`

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var status string
		if err := rows.Scan(&a.ID, &a.SiteID, &a.Date, &a.ShiftID, &a.WorkerID, &a.Locked, &status); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Date = model.DateOnly(a.Date)
		a.Status = model.AssignmentStatus(status)
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

// CommitAssignments deletes every non-locked assignment in the window and inserts the new set
// in a single transaction. Locked assignments are never touched.
func (d *DB) CommitAssignments(ctx context.Context, siteID string, window model.DateRange, assignments []model.Assignment) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM assignment
		WHERE site_id = $1 AND assignment_date BETWEEN $2 AND $3 AND NOT is_locked
	`, siteID, window.Start, window.End())
	if err != nil {
		return fmt.Errorf("failed to delete draft assignments: %w", err)
	}

	for _, a := range assignments {
		a.SiteID = siteID
		a.Date = model.DateOnly(a.Date)
		if !window.Contains(a.Date) {
			return fmt.Errorf("assignment on %s is outside %s", model.FormatDate(a.Date), window)
		}
		if err := insertAssignment(ctx, tx, a); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertAssignment(ctx context.Context, tx pgx.Tx, a model.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = model.StatusDraft
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO assignment (id, site_id, assignment_date, shift_id, worker_id, is_locked, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.SiteID, a.Date, a.ShiftID, a.WorkerID, a.Locked, string(a.Status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: worker %s on %s %s", db.ErrDuplicateAssignment, a.WorkerID, a.ShiftID, model.FormatDate(a.Date))
		}
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// PublishAssignments marks every draft assignment in the window as published
func (d *DB) PublishAssignments(ctx context.Context, siteID string, window model.DateRange) (int, error) {
	tag, err := d.pool.Exec(ctx, `
		UPDATE assignment SET status = 'published'
		WHERE site_id = $1 AND assignment_date BETWEEN $2 AND $3 AND status <> 'published'
	`, siteID, window.Start, window.End())
	if err != nil {
		return 0, fmt.Errorf("failed to publish assignments: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListSchedule retrieves the assignments of a site joined with shift and worker names
func (d *DB) ListSchedule(ctx context.Context, siteID string, window model.DateRange, status model.AssignmentStatus) ([]db.ScheduleEntry, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT a.id, a.site_id, a.assignment_date, a.shift_id, a.worker_id, a.is_locked, a.status,
		       s.name, s.start_time, w.name
		FROM assignment a
		JOIN shift s ON s.id = a.shift_id
		JOIN worker w ON w.id = a.worker_id
		WHERE a.site_id = $1 AND a.assignment_date BETWEEN $2 AND $3`)
	args := []any{siteID, window.Start, window.End()}
	if status != "" {
		args = append(args, string(status))
		sb.WriteString(` AND a.status = $4`)
	}
	sb.WriteString(` ORDER BY a.assignment_date, s.start_time, s.position, w.name`)

	rows, err := d.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var entries []db.ScheduleEntry
	for rows.Next() {
		var e db.ScheduleEntry
		var status, start string
		if err := rows.Scan(&e.ID, &e.SiteID, &e.Date, &e.ShiftID, &e.WorkerID, &e.Locked, &status,
			&e.ShiftName, &start, &e.WorkerName); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		e.Date = model.DateOnly(e.Date)
		e.Status = model.AssignmentStatus(status)
		if e.ShiftStart, err = model.ParseTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("shift %s has invalid start: %w", e.ShiftID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule: %w", err)
	}

	return entries, nil
}
