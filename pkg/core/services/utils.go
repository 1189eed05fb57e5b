package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// MaxWindowDays caps the length of a generation or read window
const MaxWindowDays = 366

// ValidationError reports bad caller input. Nothing has been read or written when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError returns true if err is or wraps a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// MonthWindow returns the window covering every day of the given month
func MonthWindow(year int, month time.Month) (model.DateRange, error) {
	if month < time.January || month > time.December {
		return model.DateRange{}, invalid("month", "must be between 1 and 12, got %d", int(month))
	}
	if year < 1970 || year > 9999 {
		return model.DateRange{}, invalid("year", "out of range: %d", year)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return model.NewDateRangeBetween(start, start.AddDate(0, 1, -1)), nil
}

func validateWindow(siteID string, window model.DateRange) error {
	if strings.TrimSpace(siteID) == "" {
		return invalid("siteId", "is required")
	}
	if window.Start.IsZero() {
		return invalid("startDate", "is required")
	}
	if window.Days <= 0 {
		return invalid("days", "must be positive, got %d", window.Days)
	}
	if window.Days > MaxWindowDays {
		return invalid("days", "must be at most %d, got %d", MaxWindowDays, window.Days)
	}
	return nil
}

// siteNotFound converts a missing site into a validation failure
func siteNotFound(siteID string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return invalid("siteId", "site %s does not exist", siteID)
	}
	return fmt.Errorf("failed to fetch site: %w", err)
}
