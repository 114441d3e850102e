package ports

import (
	"context"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// EventSink receives tracked events and fresh-assignment notices.
// Delivery is best effort: there is no acknowledgement and no retry.
type EventSink interface {
	// Emit forwards a tracked event.
	Emit(ctx context.Context, ev domain.TrackedEvent)
	// Assigned notes that an experiment received a freshly drawn variant.
	Assigned(ctx context.Context, experiment string, v domain.Variant)
	// Close flushes pending events and releases resources.
	Close(ctx context.Context) error
}
