// Package telemetry implements the fire-and-forget usage reporting
// collaborator. One Event with aggregate counters is dispatched per
// completed batch; delivery failures are logged and never affect the
// pipeline.
package telemetry
