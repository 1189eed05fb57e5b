package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/core/model"
	"github.com/jakechorley/shift-rota/pkg/core/services"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/export"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a schedule for a site",
		Long: `Run the randomized greedy search to assign workers to every shift in the window.
Locked assignments are kept. The schedule is only saved if every slot is filled cleanly,
unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			siteID, window, err := windowFromFlags(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seed, _ := cmd.Flags().GetInt64("seed")

			app.Logger.Debug("generate command",
				zap.String("site_id", siteID),
				zap.String("window", window.String()),
				zap.Bool("force", force),
				zap.Bool("dry_run", dryRun),
				zap.Int64("seed", seed))

			result, err := services.GenerateSchedule(app.Ctx, app.Database, app.Locker, app.Metrics, app.Cfg, app.Logger, services.GenerateParams{
				SiteID:    siteID,
				StartDate: window.Start,
				Days:      window.Days,
				Force:     force,
				DryRun:    dryRun,
				Seed:      seed,
			})
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			grid, err := assignmentGrid(app.Ctx, app.Database, siteID, window, result.Assignments)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			// Display header
			fmt.Fprintf(out, "\n🎯 Schedule Generation Results\n\n")
			fmt.Fprintf(out, "Run ID:   %s\n", result.RunID)
			fmt.Fprintf(out, "Site:     %s\n", result.SiteID)
			fmt.Fprintf(out, "Window:   %s\n", result.Window)
			fmt.Fprintf(out, "Seed:     %d\n", result.Seed)
			fmt.Fprintf(out, "Runs:     %d\n", result.RunsEvaluated)
			fmt.Fprintf(out, "Score:    %d\n", result.Score)
			switch {
			case dryRun:
				fmt.Fprintf(out, "Mode:     🧪 DRY RUN (not saved)\n")
			case result.Committed && result.Complete:
				fmt.Fprintf(out, "Status:   ✅ SUCCESS (saved to database)\n")
			case result.Committed:
				fmt.Fprintf(out, "Status:   ⚠️  FORCED (saved with %d forced, %d unfilled)\n", result.ForcedSlots, result.UnfilledSlots)
			default:
				fmt.Fprintf(out, "Status:   ❌ FAILED (not saved)\n")
			}
			fmt.Fprintln(out)

			printConflicts(out, result.Conflicts)

			fmt.Fprintf(out, "📅 Schedule (* = locked):\n\n")
			printGrid(out, grid)

			// Summary message
			switch {
			case dryRun:
				fmt.Fprintln(out, "💡 This was a dry run. Use without --dry-run to save the schedule.")
			case result.Committed:
				fmt.Fprintln(out, "✅ Schedule has been saved to the database.")
			default:
				fmt.Fprintln(out, "💡 Some slots could not be filled. Adjust requests or settings, or use --force to save anyway.")
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	addWindowFlags(cmd)
	cmd.Flags().Bool("force", false, "Fill every slot, breaking soft rules where needed, and save the result")
	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	cmd.Flags().Int64("seed", 0, "Seed for the random search (0 picks one from the clock)")

	return cmd
}

// assignmentGrid lays out generated assignments using the site's shift and worker names
func assignmentGrid(ctx context.Context, database db.Database, siteID string, window model.DateRange, assignments []model.Assignment) (export.Grid, error) {
	shifts, err := database.ListActiveShifts(ctx, siteID)
	if err != nil {
		return export.Grid{}, fmt.Errorf("failed to list shifts: %w", err)
	}
	workers, err := database.ListSiteWorkers(ctx, siteID)
	if err != nil {
		return export.Grid{}, fmt.Errorf("failed to list workers: %w", err)
	}

	shiftsByID := make(map[string]model.Shift, len(shifts))
	for _, s := range shifts {
		shiftsByID[s.ID] = s
	}
	workerNames := make(map[string]string, len(workers))
	for _, w := range workers {
		workerNames[w.ID] = w.Name
	}

	entries := make([]db.ScheduleEntry, 0, len(assignments))
	for _, a := range assignments {
		name := workerNames[a.WorkerID]
		if name == "" {
			name = a.WorkerID
		}
		if a.Locked {
			name += "*"
		}
		entries = append(entries, db.ScheduleEntry{
			Assignment: a,
			ShiftName:  shiftsByID[a.ShiftID].Name,
			ShiftStart: shiftsByID[a.ShiftID].Start,
			WorkerName: name,
		})
	}

	return export.BuildGrid(window, shifts, entries), nil
}
