package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// ListSiteWorkers retrieves the workers of a site with their category priority
func (d *DB) ListSiteWorkers(ctx context.Context, siteID string) ([]model.Worker, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT w.id, w.name, COALESCE(c.priority, $2)
		FROM site_worker sw
		JOIN worker w ON w.id = sw.worker_id
		LEFT JOIN worker_category c ON c.id = sw.category_id
		WHERE sw.site_id = $1
		ORDER BY w.name, w.id
	`, siteID, model.DefaultCategoryPriority)
	if err != nil {
		return nil, fmt.Errorf("failed to query site workers: %w", err)
	}
	defer rows.Close()

	var workers []model.Worker
	for rows.Next() {
		var w model.Worker
		if err := rows.Scan(&w.ID, &w.Name, &w.CategoryPriority); err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workers: %w", err)
	}

	return workers, nil
}

// UpsertWorker inserts or updates a worker
func (d *DB) UpsertWorker(ctx context.Context, worker model.Worker) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO worker (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, worker.ID, worker.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert worker: %w", err)
	}
	return nil
}

// AddWorkerToSite links a worker to a site with an optional category
func (d *DB) AddWorkerToSite(ctx context.Context, siteID, workerID, categoryID string) error {
	var category *string
	if categoryID != "" {
		category = &categoryID
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO site_worker (site_id, worker_id, category_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (site_id, worker_id) DO UPDATE SET category_id = EXCLUDED.category_id
	`, siteID, workerID, category)
	if err != nil {
		return fmt.Errorf("failed to add worker to site: %w", err)
	}
	return nil
}
