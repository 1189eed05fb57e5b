package sheetsclient

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/export"
)

const tabDateLayout = "Mon Jan 02 2006"

// PublishSchedule writes the grid to a tab named after the window, e.g.
// "Mon Mar 10 2025 - Sun Mar 16 2025". The tab is created if missing, otherwise its
// contents are replaced.
func (c *Client) PublishSchedule(ctx context.Context, spreadsheetID string, window model.DateRange, grid export.Grid) error {
	title := TabTitle(window)

	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	exists := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			exists = true
			break
		}
	}

	if !exists {
		if err := c.createSheet(ctx, spreadsheetID, title); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	} else {
		_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, title, &sheets.ClearValuesRequest{}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	}

	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("%s!A1", title),
		&sheets.ValueRange{Values: toValues(grid)},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write schedule to tab: %w", err)
	}

	return nil
}

// TabTitle formats the window as "Mon Jan 02 2006 - Mon Jan 02 2006"
func TabTitle(window model.DateRange) string {
	return fmt.Sprintf("%s - %s", window.Start.Format(tabDateLayout), window.End().Format(tabDateLayout))
}

func toValues(grid export.Grid) [][]interface{} {
	rows := grid.Values()
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}
