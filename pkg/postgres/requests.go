package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// ListRequests retrieves the work/off requests of a site inside the window
func (d *DB) ListRequests(ctx context.Context, siteID string, window model.DateRange) ([]model.Request, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT site_id, worker_id, request_date, type
		FROM request
		WHERE site_id = $1 AND request_date BETWEEN $2 AND $3
		ORDER BY request_date, worker_id
	`, siteID, window.Start, window.End())
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		var r model.Request
		var requestType string
		if err := rows.Scan(&r.SiteID, &r.WorkerID, &r.Date, &requestType); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		r.Date = model.DateOnly(r.Date)
		r.Type = model.RequestType(requestType)
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}

// SetRequest inserts or replaces a worker's request for a date
func (d *DB) SetRequest(ctx context.Context, request model.Request) error {
	if !request.Type.IsValid() {
		return fmt.Errorf("invalid request type %q", request.Type)
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO request (site_id, worker_id, request_date, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (site_id, worker_id, request_date) DO UPDATE SET type = EXCLUDED.type
	`, request.SiteID, request.WorkerID, model.DateOnly(request.Date), string(request.Type))
	if err != nil {
		return fmt.Errorf("failed to upsert request: %w", err)
	}
	return nil
}

// ReplaceWorkerDay clears the worker's assignment and request for the date, then stores the given ones
func (d *DB) ReplaceWorkerDay(ctx context.Context, siteID, workerID string, date time.Time, assignment *model.Assignment, request *model.Request) error {
	if request != nil && !request.Type.IsValid() {
		return fmt.Errorf("invalid request type %q", request.Type)
	}
	date = model.DateOnly(date)

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM assignment WHERE site_id = $1 AND worker_id = $2 AND assignment_date = $3
	`, siteID, workerID, date)
	if err != nil {
		return fmt.Errorf("failed to clear assignment: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM request WHERE site_id = $1 AND worker_id = $2 AND request_date = $3
	`, siteID, workerID, date)
	if err != nil {
		return fmt.Errorf("failed to clear request: %w", err)
	}

	if assignment != nil {
		a := *assignment
		a.SiteID, a.WorkerID, a.Date = siteID, workerID, date
		if err := insertAssignment(ctx, tx, a); err != nil {
			return err
		}
	}

	if request != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO request (site_id, worker_id, request_date, type) VALUES ($1, $2, $3, $4)
		`, siteID, workerID, date, string(request.Type))
		if err != nil {
			return fmt.Errorf("failed to insert request: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
