// Package batch sequences the pipeline over the session's ordered item
// collection: the ingest stage (validate, normalize, thumbnail) and the
// processing stage (resize, encode, name, archive). Per-item failures are
// isolated and reported; the batch always runs to the end of the list, and
// progress counts failed items too.
package batch
