package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/shift-rota/pkg/core/services"
)

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Mark a window's schedule as published and write it to the rota sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, window, err := windowFromFlags(cmd)
			if err != nil {
				return err
			}

			app.Logger.Debug("publish command",
				zap.String("site_id", siteID),
				zap.String("window", window.String()))

			publisher, err := app.Publisher()
			if err != nil {
				return err
			}

			result, err := services.PublishSchedule(app.Ctx, app.Database, publisher, app.Cfg, app.Logger, siteID, window)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✅ Published %d assignments for %s\n\n", result.Published, window)
			printGrid(out, result.Grid)

			if result.SheetWritten {
				fmt.Fprintf(out, "📄 Written to tab %q of spreadsheet %s\n\n", sheetsclient.TabTitle(window), app.Cfg.Publish.SpreadsheetID)
			} else {
				fmt.Fprintln(out, "💡 No spreadsheet configured. Set publish.spreadsheetID to write published schedules to Google Sheets.")
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	addWindowFlags(cmd)
	return cmd
}
