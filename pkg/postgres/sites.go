package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// GetSite retrieves a single site
func (d *DB) GetSite(ctx context.Context, siteID string) (*model.Site, error) {
	var site model.Site
	err := d.pool.QueryRow(ctx, `
		SELECT id, name, description FROM site WHERE id = $1
	`, siteID).Scan(&site.ID, &site.Name, &site.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("site %s: %w", siteID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query site: %w", err)
	}
	return &site, nil
}

// UpsertSite inserts or updates a site
func (d *DB) UpsertSite(ctx context.Context, site model.Site) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO site (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
	`, site.ID, site.Name, site.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert site: %w", err)
	}
	return nil
}

// UpsertCategory inserts or updates a worker category
func (d *DB) UpsertCategory(ctx context.Context, category db.Category) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO worker_category (id, name, priority)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, priority = EXCLUDED.priority
	`, category.ID, category.Name, category.Priority)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}
