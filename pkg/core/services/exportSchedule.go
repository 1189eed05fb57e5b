package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/export"
)

// ExportFormat selects the file type written by ExportSchedule
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type for the format
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportFilename names the export file. Whole calendar months are named schedule_<year>_<month>,
// other windows schedule_<start>_<end>.
func ExportFilename(window model.DateRange, format ExportFormat) string {
	start := window.Start
	if start.Day() == 1 && window.End().AddDate(0, 0, 1).Day() == 1 && window.End().Month() == start.Month() {
		return fmt.Sprintf("schedule_%d_%d.%s", start.Year(), int(start.Month()), format)
	}
	return fmt.Sprintf("schedule_%s_%s.%s", model.FormatDate(start), model.FormatDate(window.End()), format)
}

// ExportSchedule writes the stored schedule for a window to w. CSV has one row per assignment;
// XLSX has one row per date and one column per shift.
func ExportSchedule(
	ctx context.Context,
	database ViewScheduleStore,
	logger *zap.Logger,
	siteID string,
	window model.DateRange,
	status model.AssignmentStatus,
	format ExportFormat,
	w io.Writer,
) error {
	if format != FormatCSV && format != FormatXLSX {
		return invalid("format", "must be %q or %q, got %q", FormatCSV, FormatXLSX, format)
	}

	view, err := ViewSchedule(ctx, database, logger, siteID, window, status)
	if err != nil {
		return err
	}

	logger.Debug("Exporting schedule", zap.String("format", string(format)), zap.Int("entries", len(view.Entries)))

	switch format {
	case FormatXLSX:
		err = export.WriteXLSX(w, export.BuildGrid(window, view.Shifts, view.Entries))
	default:
		err = export.WriteCSV(w, view.Entries)
	}
	if err != nil {
		return fmt.Errorf("failed to export schedule: %w", err)
	}
	return nil
}
