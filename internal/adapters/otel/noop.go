package otel

import (
	"context"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

// NoOpSink is an event sink that does nothing.
type NoOpSink struct{}

// NewNoOpSink creates a new no-op sink for graceful degradation.
func NewNoOpSink() *NoOpSink {
	return &NoOpSink{}
}

func (s *NoOpSink) Emit(context.Context, domain.TrackedEvent) {}

func (s *NoOpSink) Assigned(context.Context, string, domain.Variant) {}

func (s *NoOpSink) Close(context.Context) error {
	return nil
}
