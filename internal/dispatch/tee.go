package dispatch

import (
	"context"
	"errors"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

// Tee fans every event out to several sinks in order.
type Tee []ports.EventSink

func (t Tee) Emit(ctx context.Context, ev domain.TrackedEvent) {
	for _, s := range t {
		s.Emit(ctx, ev)
	}
}

func (t Tee) Assigned(ctx context.Context, experiment string, v domain.Variant) {
	for _, s := range t {
		s.Assigned(ctx, experiment, v)
	}
}

// Close closes every sink and joins their errors.
func (t Tee) Close(ctx context.Context) error {
	var errs []error
	for _, s := range t {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
