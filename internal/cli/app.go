package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtest/internal/adapters/badger"
	"github.com/emiliopalmerini/abtest/internal/adapters/memory"
	"github.com/emiliopalmerini/abtest/internal/adapters/otel"
	"github.com/emiliopalmerini/abtest/internal/adapters/turso"
	"github.com/emiliopalmerini/abtest/internal/adapters/zaplog"
	"github.com/emiliopalmerini/abtest/internal/dispatch"
	"github.com/emiliopalmerini/abtest/internal/experiment"
	"github.com/emiliopalmerini/abtest/internal/infrastructure/config"
	"github.com/emiliopalmerini/abtest/internal/infrastructure/logging"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

const closeTimeout = 5 * time.Second

// testAppOverride lets tests inject a pre-built AppContext.
var testAppOverride *AppContext

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config   *config.Config
	Log      *zap.SugaredLogger
	Store    ports.AssignmentStore
	Sink     ports.EventSink
	Assigner *experiment.Assigner
	DB       *turso.DB

	closers []func() error
}

// NewAppContext loads configuration from the environment and wires the
// store, sinks and assigner.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	if testAppOverride != nil {
		return testAppOverride, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return NewAppContextFromConfig(ctx, cfg, log)
}

// NewAppContextFromConfig wires an AppContext from an explicit config.
func NewAppContextFromConfig(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*AppContext, error) {
	app := &AppContext{Config: cfg, Log: log}

	if err := app.openStore(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	sinks := dispatch.Tee{zaplog.NewSink(log)}
	if cfg.OTEL.Enabled {
		metrics, err := otel.NewSink(ctx, cfg.OTEL)
		if err != nil {
			log.Warnw("OTEL sink unavailable, continuing without metrics", "error", err)
		} else {
			sinks = append(sinks, metrics)
		}
	}
	app.Sink = dispatch.NewAsync(sinks, cfg.SinkBuffer, log)

	app.Assigner = experiment.New(app.Store, app.Sink,
		experiment.WithLogger(log),
		experiment.WithKeyPrefix(cfg.KeyPrefix),
	)
	return app, nil
}

func (a *AppContext) openStore(ctx context.Context) error {
	switch a.Config.Store {
	case config.StoreMemory:
		a.Store = memory.NewStore()

	case config.StoreBadger:
		s, err := badger.Open(badger.Config{
			Path:       a.Config.Badger.Path,
			SyncWrites: a.Config.Badger.SyncWrites,
			Logger:     a.Log,
		})
		if err != nil {
			return fmt.Errorf("failed to open profile store: %w", err)
		}
		a.Store = s
		a.closers = append(a.closers, s.Close)

	case config.StoreTurso:
		db, err := turso.NewDB(ctx, a.Config.Database)
		if err != nil {
			return err
		}
		a.DB = db
		a.Store = db.Assignments()
		a.closers = append(a.closers, db.Close)

	default:
		return fmt.Errorf("unknown store %q", a.Config.Store)
	}
	return nil
}

// Close drains the sinks and releases the store.
func (a *AppContext) Close() error {
	var errs []error
	if a.Sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		errs = append(errs, a.Sink.Close(ctx))
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// RequireSchema fails when the turso store still has pending migrations.
func (a *AppContext) RequireSchema(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.CheckSchema(ctx); err != nil {
		return fmt.Errorf("%w; run `abtest migrate` first", err)
	}
	return nil
}

// Lister returns the store as a lister, if it supports listing.
func (a *AppContext) Lister() (ports.AssignmentLister, bool) {
	l, ok := a.Store.(ports.AssignmentLister)
	return l, ok
}
