package domain

import "time"

// TimestampLayout matches JavaScript's Date.toISOString output.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Reserved record fields. Payload keys with the same name overwrite them.
const (
	FieldExperiment = "experiment"
	FieldVariant    = "variant"
	FieldEvent      = "event"
	FieldTimestamp  = "timestamp"
)

// TrackedEvent is a labeled interaction tagged with the variant that was
// active when it happened.
type TrackedEvent struct {
	Experiment string
	Variant    Variant
	Event      string
	OccurredAt time.Time
	Payload    map[string]any
}

// Timestamp returns OccurredAt as an ISO-8601 UTC string.
func (e TrackedEvent) Timestamp() string {
	return e.OccurredAt.UTC().Format(TimestampLayout)
}

// Record flattens the event into a single map. Payload entries are merged
// last, so a payload key that collides with a reserved field wins.
func (e TrackedEvent) Record() map[string]any {
	rec := make(map[string]any, 4+len(e.Payload))
	rec[FieldExperiment] = e.Experiment
	rec[FieldVariant] = string(e.Variant)
	rec[FieldEvent] = e.Event
	rec[FieldTimestamp] = e.Timestamp()
	for k, v := range e.Payload {
		rec[k] = v
	}
	return rec
}
