package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/adapters/otel"
	"github.com/emiliopalmerini/bcilab/internal/adapters/turso"
	"github.com/emiliopalmerini/bcilab/internal/config"
	"github.com/emiliopalmerini/bcilab/internal/events"
	"github.com/emiliopalmerini/bcilab/internal/logging"
	"github.com/emiliopalmerini/bcilab/internal/migrate"
	"github.com/emiliopalmerini/bcilab/internal/ports"
	"github.com/emiliopalmerini/bcilab/internal/service"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *turso.DB
	Repos    *turso.Repositories
	Events   *events.Bus
	Metrics  ports.MetricsExporter
	Services *service.Services
	// User is the caller identity for this invocation.
	User string
}

// testAppOverride, when set, is returned by openApp instead of a new
// AppContext. Tests own its lifecycle.
var testAppOverride *AppContext

// NewAppContext loads configuration, connects to the database, applies
// pending migrations and wires the services.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if userFlag != "" {
		cfg.User = userFlag
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate.RunAllWithLogger(ctx, db.DB, logging.Component(log, "migrate")); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	metrics := otel.New(ctx, cfg.OTel, log)
	return newAppContext(cfg, log, db, metrics), nil
}

func newAppContext(cfg *config.Config, log *zap.Logger, db *turso.DB, metrics ports.MetricsExporter) *AppContext {
	repos := turso.NewRepositories(db.DB)
	bus := events.NewBus(logging.Component(log, "events"))
	return &AppContext{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Repos:   repos,
		Events:  bus,
		Metrics: metrics,
		Services: service.New(service.Deps{
			Experiments: repos.Experiments,
			Sessions:    repos.Sessions,
			Results:     repos.Results,
			Events:      bus,
			Metrics:     metrics,
			Logger:      log,
		}),
		User: cfg.User,
	}
}

// Close releases all resources held by the AppContext.
func (a *AppContext) Close() error {
	var errs []error
	if a.Events != nil {
		a.Events.Close()
	}
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Close(context.Background()))
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}

// openDB opens the configured database, or a throwaway in-memory one when
// --memory was given.
func openDB(ctx context.Context, cfg *config.Config) (*turso.DB, error) {
	if memoryFlag {
		return turso.NewMemoryDB(ctx)
	}
	dbURL, err := cfg.DatabaseURL()
	if err != nil {
		return nil, err
	}
	return turso.NewDB(ctx, dbURL, cfg.Database.AuthToken)
}

// openApp returns the AppContext for a command and its release function.
func openApp(ctx context.Context) (*AppContext, func(), error) {
	if testAppOverride != nil {
		return testAppOverride, func() {}, nil
	}
	app, err := NewAppContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	return app, func() { _ = app.Close() }, nil
}
