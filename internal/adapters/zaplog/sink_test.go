package zaplog

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/emiliopalmerini/abtest/internal/domain"
	"github.com/emiliopalmerini/abtest/internal/ports"
)

var _ ports.EventSink = (*Sink)(nil)

func observed() (*Sink, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewSink(zap.New(core).Sugar()), logs
}

func TestSink_Emit(t *testing.T) {
	sink, logs := observed()

	sink.Emit(context.Background(), domain.TrackedEvent{
		Experiment: "exp",
		Variant:    domain.VariantB,
		Event:      "clicked",
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:    map[string]any{"count": 3},
	})

	entries := logs.FilterMessage("experiment event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "abtest" {
		t.Errorf("logger name = %q", entries[0].LoggerName)
	}

	fields := entries[0].ContextMap()
	want := map[string]any{
		"experiment": "exp",
		"variant":    "B",
		"event":      "clicked",
		"timestamp":  "2026-01-02T03:04:05.000Z",
		"count":      int64(3),
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("field %q = %#v, want %#v", k, fields[k], v)
		}
	}
}

func TestSink_Assigned(t *testing.T) {
	sink, logs := observed()

	sink.Assigned(context.Background(), "exp", domain.VariantA)

	entries := logs.FilterMessage("user assigned to variant").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["experiment"] != "exp" || fields["variant"] != "A" {
		t.Errorf("fields = %v", fields)
	}
}

func TestSink_Close(t *testing.T) {
	sink, _ := observed()
	if err := sink.Close(context.Background()); err != nil {
		t.Errorf("Close returned %v", err)
	}
}
