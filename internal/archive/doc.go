// Package archive provides the in-memory ZIP builder that collects the
// batch's renamed JPEG output. Entries sit flat at the archive root.
package archive
