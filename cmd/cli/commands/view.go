package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/core/services"
	"github.com/jakechorley/shift-rota/pkg/export"
)

// ViewCmd creates the view command
func ViewCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the stored schedule and requests for a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, window, err := windowFromFlags(cmd)
			if err != nil {
				return err
			}
			status, _ := cmd.Flags().GetString("status")

			app.Logger.Debug("view command",
				zap.String("site_id", siteID),
				zap.String("window", window.String()),
				zap.String("status", status))

			view, err := services.ViewSchedule(app.Ctx, app.Database, app.Logger, siteID, window, model.AssignmentStatus(status))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n📅 %s (%s)\n\n", view.Site.Name, window)

			published := 0
			for _, e := range view.Entries {
				if e.Status == model.StatusPublished {
					published++
				}
			}
			fmt.Fprintf(out, "Assignments: %d (%s%d published%s)\n\n", len(view.Entries), colorGreen, published, colorReset)

			printGrid(out, export.BuildGrid(window, view.Shifts, view.Entries))

			if len(view.Requests) > 0 {
				requests := append([]model.Request(nil), view.Requests...)
				sort.Slice(requests, func(i, j int) bool {
					if !requests[i].Date.Equal(requests[j].Date) {
						return requests[i].Date.Before(requests[j].Date)
					}
					return requests[i].WorkerID < requests[j].WorkerID
				})

				fmt.Fprintf(out, "Requests (%d):\n", len(requests))
				for _, r := range requests {
					color := colorGreen
					if r.Type == model.RequestOff {
						color = colorYellow
					}
					fmt.Fprintf(out, "  • %s %s %s%s%s\n", model.FormatDate(r.Date), r.WorkerID, color, r.Type, colorReset)
				}
				fmt.Fprintln(out)
			}

			return nil
		},
	}

	addWindowFlags(cmd)
	cmd.Flags().String("status", "", "Only show draft or published assignments")
	return cmd
}
