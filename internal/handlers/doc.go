// Package handlers exposes the wizard over HTTP: upload intake, item and
// thumbnail listing, metadata assignment, confirmation, batch processing,
// archive download, and reset. Handlers translate domain errors into
// status codes (state machine violations become 409s) and hold no state of
// their own.
package handlers
