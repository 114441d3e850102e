package turso

import (
	"context"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/abtest/internal/infrastructure/config"
	"github.com/emiliopalmerini/abtest/internal/infrastructure/database"
	"github.com/emiliopalmerini/abtest/internal/migrate"
)

// ErrSchemaOutdated means the database is missing migrations.
var ErrSchemaOutdated = errors.New("database schema is not up to date")

// DB is a libsql connection holding the assignments table.
type DB struct {
	*database.Client
}

// NewDB connects using the database configuration.
func NewDB(ctx context.Context, cfg config.Database) (*DB, error) {
	client, err := database.New(ctx, cfg.URL, cfg.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &DB{Client: client}, nil
}

// Assignments returns the assignment store backed by this connection.
func (d *DB) Assignments() *AssignmentStore {
	return NewAssignmentStore(d.DB)
}

// CheckSchema returns ErrSchemaOutdated when pending or half-applied
// migrations would leave the assignments table missing or stale.
func (d *DB) CheckSchema(ctx context.Context) error {
	runner, err := migrate.NewRunner(d.DB, nil)
	if err != nil {
		return err
	}

	version, dirty, err := runner.Version(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("%w: version %d is dirty", ErrSchemaOutdated, version)
	}
	if latest := runner.Latest(); version < latest {
		return fmt.Errorf("%w: at version %d, latest is %d", ErrSchemaOutdated, version, latest)
	}
	return nil
}
