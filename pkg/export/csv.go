package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// CSVHeader is the header row written by WriteCSV
var CSVHeader = []string{"date", "shift", "worker"}

// WriteCSV writes one row per assignment
func WriteCSV(w io.Writer, entries []db.ScheduleEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{model.FormatDate(e.Date), e.ShiftName, e.WorkerName}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
