package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/pkg/httpapi"
	"github.com/jakechorley/shift-rota/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the schedule API and Prometheus metrics until interrupted.
Use --seed-file to load a site on startup, which is handy with --memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.HTTPAddr
			}
			seedFile, _ := cmd.Flags().GetString("seed-file")

			if seedFile != "" {
				if err := seedFromFile(app, seedFile, cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			app.Metrics = metrics.NewPrometheus(reg, "")

			publisher, err := app.Publisher()
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    addr,
				Handler: httpapi.NewRouter(httpapi.Deps{
					Database:  app.Database,
					Locker:    app.Locker,
					Metrics:   app.Metrics,
					Publisher: publisher,
					Gatherer:  reg,
					Cfg:       app.Cfg,
					Logger:    app.Logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("HTTP server listening", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "\n🚀 Serving on %s (Ctrl+C to stop)\n\n", addr)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server failed: %w", err)
			case <-ctx.Done():
			}

			app.Logger.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "👋 Server stopped")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to httpAddr from config)")
	cmd.Flags().String("seed-file", "", "Seed file to load before serving")
	return cmd
}
