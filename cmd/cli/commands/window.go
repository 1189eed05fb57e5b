package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/core/services"
)

// now is replaced in tests
var now = time.Now

// addSiteFlag adds the --site flag every schedule command takes
func addSiteFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("site", "s", "", "Site ID (required)")
	cmd.MarkFlagRequired("site")
}

// addWindowFlags adds --site plus the window selection flags
func addWindowFlags(cmd *cobra.Command) {
	addSiteFlag(cmd)
	cmd.Flags().String("start", "", "First date of the window (YYYY-MM-DD), used with --days")
	cmd.Flags().Int("days", 0, "Number of days in the window, used with --start")
	cmd.Flags().Int("month", 0, "Month of the window (1-12). Defaults to next month.")
	cmd.Flags().Int("year", 0, "Year of the window, used with --month. Defaults to this year.")
}

// siteFromFlags reads --site. Required flags are not enforced in interactive mode,
// so it is checked here too.
func siteFromFlags(cmd *cobra.Command) (string, error) {
	siteID, _ := cmd.Flags().GetString("site")
	if siteID == "" {
		return "", errors.New("--site is required")
	}
	return siteID, nil
}

// windowFromFlags resolves the window from --start/--days or --month/--year.
// With neither set the window is the whole of next month.
func windowFromFlags(cmd *cobra.Command) (string, model.DateRange, error) {
	siteID, err := siteFromFlags(cmd)
	if err != nil {
		return "", model.DateRange{}, err
	}

	start, _ := cmd.Flags().GetString("start")
	days, _ := cmd.Flags().GetInt("days")
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")

	if start != "" {
		if month != 0 || year != 0 {
			return "", model.DateRange{}, errors.New("use either --start/--days or --month/--year, not both")
		}
		startDate, err := model.ParseDate(start)
		if err != nil {
			return "", model.DateRange{}, fmt.Errorf("--start must be a date (YYYY-MM-DD): %w", err)
		}
		if days <= 0 {
			return "", model.DateRange{}, errors.New("--days must be positive when --start is set")
		}
		return siteID, model.NewDateRange(startDate, days), nil
	}
	if days != 0 {
		return "", model.DateRange{}, errors.New("--days requires --start")
	}

	today := now()
	if month == 0 {
		if year != 0 {
			return "", model.DateRange{}, errors.New("--year requires --month")
		}
		next := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		year, month = next.Year(), int(next.Month())
	}
	if year == 0 {
		year = today.Year()
	}

	window, err := services.MonthWindow(year, time.Month(month))
	if err != nil {
		return "", model.DateRange{}, err
	}
	return siteID, window, nil
}
