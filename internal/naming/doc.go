// Package naming derives output filenames from per-item metadata and batch
// ordinals, and maintains the industry-code registry used to validate that
// metadata. Filename synthesis is a pure string function; all validation is
// the caller's responsibility at the form boundary.
package naming
