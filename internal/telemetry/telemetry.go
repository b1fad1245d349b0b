package telemetry

import (
	"context"
	"time"

	"photobatch/internal/logging"
	"photobatch/internal/metrics"
)

// dispatchTimeout bounds a single fire-and-forget delivery attempt.
const dispatchTimeout = 5 * time.Second

// Event carries the aggregate counters recorded once per completed batch.
type Event struct {
	CompletedAt time.Time

	Files     int
	Succeeded int
	Failed    int

	// FormatCounts maps source MIME type to item count.
	FormatCounts map[string]int

	ArchiveBytes int

	// Stage timings for the batch that produced this event.
	ResizeDuration  time.Duration
	EncodeDuration  time.Duration
	ArchiveDuration time.Duration

	// SessionDuration is how long the session had been active at
	// completion.
	SessionDuration time.Duration
}

// Sink receives usage events. Implementations must treat Record as
// best-effort: a sink failure never affects pipeline state.
type Sink interface {
	Record(ctx context.Context, ev Event) error
	Close() error
}

// Dispatch delivers an event to the sink in the background. Failures are
// logged and counted, never surfaced to the caller.
func Dispatch(sink Sink, ev Event) {
	if sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := sink.Record(ctx, ev); err != nil {
			metrics.TelemetryEventsTotal.WithLabelValues("error").Inc()
			logging.Warn("Telemetry record failed: %v", err)
			return
		}
		metrics.TelemetryEventsTotal.WithLabelValues("success").Inc()
	}()
}

// Noop is a Sink that discards every event.
type Noop struct{}

// Record implements Sink.
func (Noop) Record(context.Context, Event) error { return nil }

// Close implements Sink.
func (Noop) Close() error { return nil }
