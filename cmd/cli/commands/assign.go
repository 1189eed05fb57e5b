package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/core/services"
)

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <date> <worker_id> [shift_id|OFF]",
		Short: "Lock a worker onto a shift, mark them off, or clear their day",
		Long: `Replace whatever a worker has on a date.
  assign 2025-03-04 alice day   locks alice onto the day shift (kept by generate)
  assign 2025-03-04 alice OFF   records an off request
  assign 2025-03-04 alice       clears the day`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, err := siteFromFlags(cmd)
			if err != nil {
				return err
			}
			date, err := model.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}
			workerID := args[1]
			var shiftID string
			if len(args) > 2 {
				shiftID = args[2]
			}

			app.Logger.Debug("assign command",
				zap.String("site_id", siteID),
				zap.String("date", args[0]),
				zap.String("worker_id", workerID),
				zap.String("shift_id", shiftID))

			result, err := services.SetManualAssignment(app.Ctx, app.Database, app.Logger, siteID, workerID, date, shiftID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case result.Assignment != nil:
				fmt.Fprintf(out, "\n🔒 %s locked onto %s on %s\n\n", workerID, result.Assignment.ShiftID, model.FormatDate(date))
			case result.Request != nil:
				fmt.Fprintf(out, "\n✅ %s marked off on %s\n\n", workerID, model.FormatDate(date))
			default:
				fmt.Fprintf(out, "\n✅ Cleared %s on %s\n\n", workerID, model.FormatDate(date))
			}
			return nil
		},
	}

	addSiteFlag(cmd)
	return cmd
}

// RequestCmd creates the request command
func RequestCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request <date> <worker_id> <work|off>",
		Short: "Record a worker's request to work or be off on a date",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, err := siteFromFlags(cmd)
			if err != nil {
				return err
			}
			date, err := model.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}

			request := model.Request{
				SiteID:   siteID,
				WorkerID: args[1],
				Date:     date,
				Type:     model.RequestType(args[2]),
			}

			app.Logger.Debug("request command",
				zap.String("site_id", siteID),
				zap.String("date", args[0]),
				zap.String("worker_id", request.WorkerID),
				zap.String("type", args[2]))

			if err := services.SetRequest(app.Ctx, app.Database, app.Logger, request); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Recorded %s request for %s on %s\n\n", request.Type, request.WorkerID, model.FormatDate(date))
			return nil
		},
	}

	addSiteFlag(cmd)
	return cmd
}
