package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrator is implemented by stores with a schema to manage
type migrator interface {
	RunMigrations(ctx context.Context) ([]string, error)
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := app.Database.(migrator)
			if !ok {
				return errors.New("migrate requires a Postgres database (set databaseURL or DATABASE_URL)")
			}

			app.Logger.Info("Running migrations")
			applied, err := m.RunMigrations(app.Ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			app.Logger.Info("Migrations complete", zap.Int("applied", len(applied)))

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "\n✅ Database is already up to date")
				return nil
			}
			fmt.Fprintf(out, "\n✅ Applied %d migrations:\n", len(applied))
			for _, name := range applied {
				fmt.Fprintf(out, "  • %s\n", name)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
