package ports

import (
	"context"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// AssignmentStore is the durable key-value store holding variant
// assignments. Get reports ok=false for a missing key.
type AssignmentStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// AssignmentLister is implemented by stores that can enumerate their keys.
// Entries whose value is not a valid variant are skipped.
type AssignmentLister interface {
	List(ctx context.Context, prefix string) ([]domain.Assignment, error)
}
