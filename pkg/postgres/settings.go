package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// GetWorkerSettings retrieves a worker's settings override, or nil if none is stored
func (d *DB) GetWorkerSettings(ctx context.Context, workerID string) (*model.SettingsOverride, error) {
	var o model.SettingsOverride
	var ranking, availability []byte
	err := d.pool.QueryRow(ctx, `
		SELECT max_consecutive_shifts, min_days_off, night_preference, target_shifts,
		       target_shifts_variance, preferred_block_size, shift_ranking, availability
		FROM worker_settings
		WHERE worker_id = $1
	`, workerID).Scan(&o.MaxConsecutive, &o.MinDaysOff, &o.NightPreference, &o.TargetShifts,
		&o.TargetVariance, &o.PreferredBlockLength, &ranking, &availability)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query worker settings: %w", err)
	}

	if o.ShiftRanking, err = db.DecodeShiftRanking(ranking); err != nil {
		return nil, fmt.Errorf("worker %s: %w", workerID, err)
	}
	if o.Availability, err = db.DecodeAvailability(availability); err != nil {
		return nil, fmt.Errorf("worker %s: %w", workerID, err)
	}
	if err := db.ValidateOverride(o); err != nil {
		return nil, fmt.Errorf("worker %s has invalid settings: %w", workerID, err)
	}

	return &o, nil
}

// SetWorkerSettings replaces a worker's settings override
func (d *DB) SetWorkerSettings(ctx context.Context, workerID string, settings model.SettingsOverride) error {
	if err := db.ValidateOverride(settings); err != nil {
		return fmt.Errorf("invalid settings for worker %s: %w", workerID, err)
	}

	availability, err := db.EncodeAvailability(settings.Availability)
	if err != nil {
		return fmt.Errorf("failed to encode availability: %w", err)
	}
	var ranking []string
	if len(settings.ShiftRanking) > 0 {
		ranking = settings.ShiftRanking
	}

	_, err = d.pool.Exec(ctx, `
		INSERT INTO worker_settings (worker_id, max_consecutive_shifts, min_days_off, night_preference,
			target_shifts, target_shifts_variance, preferred_block_size, shift_ranking, availability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (worker_id) DO UPDATE SET
			max_consecutive_shifts = EXCLUDED.max_consecutive_shifts,
			min_days_off = EXCLUDED.min_days_off,
			night_preference = EXCLUDED.night_preference,
			target_shifts = EXCLUDED.target_shifts,
			target_shifts_variance = EXCLUDED.target_shifts_variance,
			preferred_block_size = EXCLUDED.preferred_block_size,
			shift_ranking = EXCLUDED.shift_ranking,
			availability = EXCLUDED.availability
	`, workerID, settings.MaxConsecutive, settings.MinDaysOff, settings.NightPreference,
		settings.TargetShifts, settings.TargetVariance, settings.PreferredBlockLength, ranking, availability)
	if err != nil {
		return fmt.Errorf("failed to upsert worker settings: %w", err)
	}
	return nil
}

// GetGlobalDefaults reads the global_settings table as a partial override
func (d *DB) GetGlobalDefaults(ctx context.Context) (*model.SettingsOverride, error) {
	rows, err := d.pool.Query(ctx, `SELECT key, value FROM global_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query global settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan global setting: %w", err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating global settings: %w", err)
	}

	return db.DecodeGlobalSettings(values)
}

// SetGlobalDefaults stores every set field of the override
func (d *DB) SetGlobalDefaults(ctx context.Context, settings model.SettingsOverride) error {
	if err := db.ValidateOverride(settings); err != nil {
		return fmt.Errorf("invalid global settings: %w", err)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, value := range db.EncodeGlobalSettings(settings) {
		_, err := tx.Exec(ctx, `
			INSERT INTO global_settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("failed to upsert global setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
