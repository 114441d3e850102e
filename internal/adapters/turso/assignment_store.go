package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/infrastructure/database"
)

const maxRetries = 2

// querier is the subset of *sql.DB the store needs.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AssignmentStore keeps assignments in the libsql assignments table.
type AssignmentStore struct {
	db  querier
	now func() time.Time
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db, now: time.Now}
}

func (s *AssignmentStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := database.WithRetry(ctx, maxRetries, func() (string, error) {
		var v string
		err := s.db.QueryRowContext(ctx, `SELECT value FROM assignments WHERE key = ?`, key).Scan(&v)
		return v, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get assignment: %w", err)
	}
	return value, true, nil
}

// Set upserts unconditionally; the last writer wins.
func (s *AssignmentStore) Set(ctx context.Context, key, value string) error {
	_, err := database.WithRetry(ctx, maxRetries, func() (sql.Result, error) {
		return s.db.ExecContext(ctx, `
			INSERT INTO assignments (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value, s.now().UTC().Format(time.RFC3339))
	})
	if err != nil {
		return fmt.Errorf("failed to set assignment: %w", err)
	}
	return nil
}

// List returns valid assignments under prefix, ordered by experiment name.
// The whole query is retried so a stale stream never yields a partial list.
func (s *AssignmentStore) List(ctx context.Context, prefix string) ([]domain.Assignment, error) {
	out, err := database.WithRetry(ctx, maxRetries, func() ([]domain.Assignment, error) {
		return s.list(ctx, prefix)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return out, nil
}

func (s *AssignmentStore) list(ctx context.Context, prefix string) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM assignments WHERE substr(key, 1, ?) = ? ORDER BY key`,
		utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Assignment
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		v, ok := domain.ParseVariant(raw)
		if !ok {
			continue
		}
		out = append(out, domain.Assignment{Experiment: key[len(prefix):], Variant: v})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
