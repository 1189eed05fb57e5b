package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/cmd/cli/commands"
	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/lock"
	"github.com/jakechorley/shift-rota/pkg/metrics"
	"github.com/jakechorley/shift-rota/pkg/postgres"
	"github.com/jakechorley/shift-rota/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	memory  bool
)

func main() {
	app := &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Shift Rota CLI - Generate and manage staff schedules",
		Long:  `A CLI tool for generating shift schedules, recording requests and locked assignments, and publishing rotas.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")
	rootCmd.PersistentFlags().BoolVar(&memory, "memory", false, "Use an in-memory database (state is lost on exit)")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.SeedCmd(app))
	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.AssignCmd(app))
	rootCmd.AddCommand(commands.RequestCmd(app))
	rootCmd.AddCommand(commands.ViewCmd(app))
	rootCmd.AddCommand(commands.PublishCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, locker and metrics
func initApp(app *commands.AppContext) error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	// .env is optional; values in the real environment win
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	// Initialize logger
	app.Logger, err = logging.New(env, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Initialize database
	if memory {
		app.Logger.Warn("Using in-memory database - nothing will be saved")
		app.Database = db.NewMemoryDB()
	} else {
		if app.Cfg.DatabaseURL == "" {
			return fmt.Errorf("no database configured: set databaseURL or DATABASE_URL, or use --memory")
		}
		app.Logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.Database = pg
		app.Logger.Debug("Database connected successfully")
	}
	app.OnClose(app.Database.Close)

	// Initialize generation lock
	if app.Cfg.RedisAddr != "" {
		app.Logger.Info("Connecting to Redis", zap.String("addr", app.Cfg.RedisAddr))
		client := lock.NewRedisClient(app.Cfg.RedisAddr)
		if err := client.Ping(app.Ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.OnClose(func() { client.Close() })
		app.Locker = lock.NewRedisLocker(client, app.Cfg.LockTTL)
	} else {
		app.Logger.Debug("No Redis configured - using in-process generation lock")
		app.Locker = lock.NewLocalLocker()
	}

	app.Metrics = metrics.NewNop()

	return nil
}
