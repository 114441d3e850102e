// Package experiment assigns callers to experiment variants and tags their
// interaction events with the assignment.
package experiment

import (
	"context"
	"maps"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

// DefaultKeyPrefix namespaces assignment keys in the store.
const DefaultKeyPrefix = "ab_test_"

// Assigner resolves and persists variants. It holds no per-experiment state
// of its own; the store is authoritative.
type Assigner struct {
	store  ports.AssignmentStore
	sink   ports.EventSink
	log    *zap.SugaredLogger
	prefix string
	random func() float64
	now    func() time.Time
}

// Option configures an Assigner.
type Option func(*Assigner)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Assigner) { a.log = l }
}

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(a *Assigner) { a.prefix = prefix }
}

// WithRandom sets the source of uniform draws in [0,1).
func WithRandom(fn func() float64) Option {
	return func(a *Assigner) { a.random = fn }
}

// WithClock sets the clock used to timestamp tracked events.
func WithClock(fn func() time.Time) Option {
	return func(a *Assigner) { a.now = fn }
}

// New creates an Assigner over the given store and sink.
func New(store ports.AssignmentStore, sink ports.EventSink, opts ...Option) *Assigner {
	a := &Assigner{
		store:  store,
		sink:   sink,
		log:    zap.NewNop().Sugar(),
		prefix: DefaultKeyPrefix,
		random: rand.Float64,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the storage key for an experiment name.
func (a *Assigner) Key(name string) string {
	return a.prefix + name
}

// Resolve returns the variant for name, drawing and persisting one on first
// use. A stored assignment always wins over alternatePct. Store failures are
// logged and never returned.
func (a *Assigner) Resolve(ctx context.Context, name string, alternatePct float64) domain.Variant {
	key := a.Key(name)

	if v, ok := a.lookup(ctx, name, key); ok {
		return v
	}

	v := domain.DefaultVariant
	if a.random()*100 < alternatePct {
		v = domain.AlternateVariant
	}

	// Written before the value is handed out so the next caller takes the
	// stable path.
	if err := a.store.Set(ctx, key, string(v)); err != nil {
		a.log.Warnw("failed to persist assignment", "experiment", name, "variant", v, "error", err)
	}

	a.log.Debugw("variant assigned", "experiment", name, "variant", v)
	a.sink.Assigned(ctx, name, v)

	return v
}

// Declare resolves name once and returns a handle bound to the result.
func (a *Assigner) Declare(ctx context.Context, name string, alternatePct float64) *Test {
	return &Test{
		assigner: a,
		name:     name,
		variant:  a.Resolve(ctx, name, alternatePct),
	}
}

// Track emits eventName for the currently persisted variant of name. It never
// draws or writes; an unassigned experiment is tagged with the default
// variant.
func (a *Assigner) Track(ctx context.Context, name, eventName string, extra map[string]any) {
	v, ok := a.lookup(ctx, name, a.Key(name))
	if !ok {
		v = domain.DefaultVariant
	}
	a.emit(ctx, name, v, eventName, extra)
}

func (a *Assigner) lookup(ctx context.Context, name, key string) (domain.Variant, bool) {
	raw, found, err := a.store.Get(ctx, key)
	if err != nil {
		a.log.Warnw("failed to read assignment", "experiment", name, "error", err)
		return "", false
	}
	if !found {
		return "", false
	}
	return domain.ParseVariant(raw)
}

// emit copies extra so the event stays a snapshot once the sink delivers it
// asynchronously.
func (a *Assigner) emit(ctx context.Context, name string, v domain.Variant, eventName string, extra map[string]any) {
	a.sink.Emit(ctx, domain.TrackedEvent{
		Experiment: name,
		Variant:    v,
		Event:      eventName,
		OccurredAt: a.now(),
		Payload:    maps.Clone(extra),
	})
}

// Test is a caller's declared interest in one experiment.
type Test struct {
	assigner *Assigner
	name     string
	variant  domain.Variant
}

// Name returns the experiment name.
func (t *Test) Name() string { return t.name }

// Variant returns the variant resolved at declaration.
func (t *Test) Variant() domain.Variant { return t.variant }

// Track emits eventName tagged with this test's variant.
func (t *Test) Track(ctx context.Context, eventName string, extra map[string]any) {
	t.assigner.emit(ctx, t.name, t.variant, eventName, extra)
}
