package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/shift-rota/pkg/core/model"
)

// ListActiveShifts retrieves the non-archived shifts of a site in declaration order
func (d *DB) ListActiveShifts(ctx context.Context, siteID string) ([]model.Shift, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, site_id, name, start_time, end_time, required_staff, active_days
		FROM shift
		WHERE site_id = $1 AND NOT archived
		ORDER BY position, id
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		var s model.Shift
		var start, end string
		var activeDays int16
		if err := rows.Scan(&s.ID, &s.SiteID, &s.Name, &start, &end, &s.RequiredStaff, &activeDays); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		if s.Start, err = model.ParseTimeOfDay(start); err != nil {
			return nil, fmt.Errorf("shift %s has invalid start: %w", s.ID, err)
		}
		if s.End, err = model.ParseTimeOfDay(end); err != nil {
			return nil, fmt.Errorf("shift %s has invalid end: %w", s.ID, err)
		}
		s.ActiveDays = model.WeekdayMask(activeDays)
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}

// UpsertShift inserts or updates a shift. Position sets the declaration order within the site.
func (d *DB) UpsertShift(ctx context.Context, shift model.Shift, position int) error {
	activeDays := shift.ActiveDays
	if activeDays == 0 {
		activeDays = model.AllWeekdays
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO shift (id, site_id, name, start_time, end_time, required_staff, active_days, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			site_id = EXCLUDED.site_id,
			name = EXCLUDED.name,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			required_staff = EXCLUDED.required_staff,
			active_days = EXCLUDED.active_days,
			position = EXCLUDED.position,
			archived = FALSE
	`, shift.ID, shift.SiteID, shift.Name, shift.Start.String(), shift.End.String(),
		shift.RequiredStaff, int16(activeDays), position)
	if err != nil {
		return fmt.Errorf("failed to upsert shift: %w", err)
	}
	return nil
}
