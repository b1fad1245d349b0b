// Package session holds the wizard's state for the lifetime of one upload
// batch: the accepted items with their in-memory raster and thumbnail
// handles, naming metadata, progress counters, the auto-expiring error
// list, and the finished archive.
//
// The wizard lifecycle is a one-way state machine:
//
//	idle -> loading -> awaiting-metadata -> awaiting-confirmation ->
//	processing -> complete -> idle (reset)
//
// loading -> awaiting-metadata and processing -> complete happen
// automatically when the pipeline finishes; every other edge is an explicit
// user action. Reset releases all resource handles and is rejected while an
// operation is in flight.
package session
