// Package migrate applies the embedded libsql migrations and tracks the
// schema version in schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtest/migrations"
)

// Migration is a single schema step with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Load reads NNN_name.up.sql / NNN_name.down.sql pairs from fsys, sorted by
// version. A missing down file leaves DownSQL empty.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var result []Migration
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := upPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}

		version, _ := strconv.Atoi(m[1])
		up, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		down, _ := fs.ReadFile(fsys, fmt.Sprintf("%s_%s.down.sql", m[1], m[2]))

		result = append(result, Migration{
			Version: version,
			Name:    m[2],
			UpSQL:   string(up),
			DownSQL: string(down),
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

// Runner applies migrations to one database.
type Runner struct {
	db         *sql.DB
	migrations []Migration
	log        *zap.SugaredLogger
}

// NewRunner loads the embedded migrations. log may be nil.
func NewRunner(db *sql.DB, log *zap.SugaredLogger) (*Runner, error) {
	all, err := Load(migrations.FS)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{db: db, migrations: all, log: log}, nil
}

// Latest returns the highest known migration version.
func (r *Runner) Latest() int {
	if len(r.migrations) == 0 {
		return 0
	}
	return r.migrations[len(r.migrations)-1].Version
}

// Version returns the current schema version and dirty flag.
func (r *Runner) Version(ctx context.Context) (int, bool, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, false, err
	}

	var version, dirty int
	err := r.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, dirty == 1, nil
}

// Up applies every pending migration and returns how many ran.
func (r *Runner) Up(ctx context.Context) (int, error) {
	current, err := r.clean(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}
		if err := r.apply(ctx, m, true); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// To migrates up or down until the schema is at target.
func (r *Runner) To(ctx context.Context, target int) error {
	current, err := r.clean(ctx)
	if err != nil {
		return err
	}

	if target >= current {
		for _, m := range r.migrations {
			if m.Version <= current || m.Version > target {
				continue
			}
			if err := r.apply(ctx, m, true); err != nil {
				return err
			}
		}
		return nil
	}

	for i := len(r.migrations) - 1; i >= 0; i-- {
		m := r.migrations[i]
		if m.Version > current || m.Version <= target {
			continue
		}
		if m.DownSQL == "" {
			return fmt.Errorf("no down migration for version %d", m.Version)
		}
		if err := r.apply(ctx, m, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) clean(ctx context.Context) (int, error) {
	current, dirty, err := r.Version(ctx)
	if err != nil {
		return 0, err
	}
	if dirty {
		return 0, fmt.Errorf("database is in dirty state at version %d", current)
	}
	return current, nil
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (r *Runner) setVersion(ctx context.Context, version int, dirty bool) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version <= 0 {
		return nil
	}
	d := 0
	if dirty {
		d = 1
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, d)
	return err
}

func (r *Runner) apply(ctx context.Context, m Migration, up bool) error {
	direction, body, target := "up", m.UpSQL, m.Version
	if !up {
		direction, body, target = "down", m.DownSQL, m.Version-1
	}
	r.log.Infow("applying migration", "version", m.Version, "name", m.Name, "direction", direction)

	if err := r.setVersion(ctx, m.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", m.Version, direction, err, stmt)
		}
	}

	if err := r.setVersion(ctx, target, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

// RunAll applies every pending embedded migration.
func RunAll(ctx context.Context, db *sql.DB) error {
	r, err := NewRunner(db, nil)
	if err != nil {
		return err
	}
	_, err = r.Up(ctx)
	return err
}
