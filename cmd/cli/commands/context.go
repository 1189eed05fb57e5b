package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/shift-rota/internal/config"
	"github.com/jakechorley/shift-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/shift-rota/pkg/core/services"
	"github.com/jakechorley/shift-rota/pkg/db"
	"github.com/jakechorley/shift-rota/pkg/lock"
	"github.com/jakechorley/shift-rota/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Locker   lock.Locker
	Metrics  metrics.Recorder
	Logger   *zap.Logger
	Ctx      context.Context

	// publisher is created on first use since the OAuth flow may open a browser
	publisher services.SchedulePublisher
	closers   []func()
}

// Publisher returns the Google Sheets publisher, or nil if no spreadsheet is configured
func (app *AppContext) Publisher() (services.SchedulePublisher, error) {
	if app.publisher != nil {
		return app.publisher, nil
	}
	if app.Cfg.Publish.SpreadsheetID == "" {
		return nil, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.Logger.Debug("Sheets client initialized successfully")

	app.publisher = client
	return app.publisher, nil
}

// SetPublisher replaces the lazily created publisher
func (app *AppContext) SetPublisher(p services.SchedulePublisher) {
	app.publisher = p
}

// OnClose registers fn to run when the app shuts down. Functions run in reverse order.
func (app *AppContext) OnClose(fn func()) {
	app.closers = append(app.closers, fn)
}

// Close releases everything registered with OnClose
func (app *AppContext) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}
