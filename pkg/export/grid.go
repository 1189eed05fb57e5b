package export

import (
	"strings"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/db"
)

// Grid is a schedule laid out with one row per date and one column per shift.
// Cells list the assigned worker names.
type Grid struct {
	Header []string
	Rows   [][]string
}

// BuildGrid lays out entries for every date in window. Shifts set the column order;
// entries for shifts not in the list are dropped.
func BuildGrid(window model.DateRange, shifts []model.Shift, entries []db.ScheduleEntry) Grid {
	header := make([]string, 0, len(shifts)+1)
	header = append(header, "Date")
	column := make(map[string]int, len(shifts))
	for i, s := range shifts {
		header = append(header, s.Name)
		column[s.ID] = i + 1
	}

	names := make(map[string][][]string)
	for _, e := range entries {
		col, ok := column[e.ShiftID]
		if !ok {
			continue
		}
		key := model.FormatDate(e.Date)
		if names[key] == nil {
			names[key] = make([][]string, len(header))
		}
		names[key][col] = append(names[key][col], e.WorkerName)
	}

	rows := make([][]string, 0, window.Days)
	for _, d := range window.Dates() {
		key := model.FormatDate(d)
		row := make([]string, len(header))
		row[0] = key
		for col := 1; col < len(header); col++ {
			if names[key] != nil {
				row[col] = strings.Join(names[key][col], ", ")
			}
		}
		rows = append(rows, row)
	}

	return Grid{Header: header, Rows: rows}
}

// Values returns the header followed by the rows
func (g Grid) Values() [][]string {
	values := make([][]string, 0, len(g.Rows)+1)
	values = append(values, g.Header)
	return append(values, g.Rows...)
}
