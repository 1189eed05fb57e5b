package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/core/services"
)

// ExportCmd creates the export command
func ExportCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored schedule to CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, window, err := windowFromFlags(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			outPath, _ := cmd.Flags().GetString("out")
			status, _ := cmd.Flags().GetString("status")

			exportFormat := services.ExportFormat(format)
			if outPath == "" {
				outPath = services.ExportFilename(window, exportFormat)
			}

			app.Logger.Debug("export command",
				zap.String("site_id", siteID),
				zap.String("window", window.String()),
				zap.String("format", format),
				zap.String("out", outPath))

			if outPath == "-" {
				return services.ExportSchedule(app.Ctx, app.Database, app.Logger, siteID, window,
					model.AssignmentStatus(status), exportFormat, cmd.OutOrStdout())
			}

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			if err := services.ExportSchedule(app.Ctx, app.Database, app.Logger, siteID, window,
				model.AssignmentStatus(status), exportFormat, f); err != nil {
				f.Close()
				os.Remove(outPath)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Schedule exported to %s\n\n", outPath)
			return nil
		},
	}

	addWindowFlags(cmd)
	cmd.Flags().StringP("format", "f", string(services.FormatCSV), "Export format: csv or xlsx")
	cmd.Flags().StringP("out", "o", "", "Output file (defaults to schedule_<window>.<format>, - for stdout)")
	cmd.Flags().String("status", "", "Only export draft or published assignments")
	return cmd
}
