// Package metrics defines the Prometheus metrics exported by the service:
// HTTP request counters, per-stage pipeline timings (normalize, thumbnail,
// resize), batch outcomes, archive sizes, and session state.
//
// All metrics are registered with promauto at package load. Call
// InitializeMetrics once at startup to pre-populate label combinations so
// the full series set is visible from the first scrape.
package metrics
