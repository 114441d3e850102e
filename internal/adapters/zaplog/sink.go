// Package zaplog writes tracked events to a zap logger, the local console
// equivalent of an analytics beacon.
package zaplog

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

type Sink struct {
	log *zap.SugaredLogger
}

func NewSink(log *zap.SugaredLogger) *Sink {
	return &Sink{log: log.Named("abtest")}
}

// Emit logs the flattened event record. Keys are sorted so output is stable.
func (s *Sink) Emit(_ context.Context, ev domain.TrackedEvent) {
	rec := ev.Record()
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, rec[k])
	}
	s.log.Infow("experiment event", kv...)
}

func (s *Sink) Assigned(_ context.Context, experiment string, v domain.Variant) {
	s.log.Infow("user assigned to variant", "experiment", experiment, "variant", string(v))
}

// Close flushes buffered log entries. Sync errors on terminals are ignored.
func (s *Sink) Close(context.Context) error {
	_ = s.log.Sync()
	return nil
}
