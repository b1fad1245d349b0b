// Package pipeline implements the per-image transformation stages of the
// batch processor: HEIC/HEIF normalization to JPEG, preview thumbnail
// generation, and the aspect-preserving resize-and-pad onto a fixed white
// canvas.
//
// All stages operate on in-memory byte slices and decoded rasters; nothing
// touches the filesystem. Decode failures are reported as *DecodeError and
// HEIC conversion failures as *ConversionError so callers can skip the
// affected item and keep the batch going.
//
// HEIC support requires libvips. Call Init once at startup; when libvips is
// unavailable the rest of the pipeline still works and only HEIC inputs fail
// with a conversion error.
package pipeline
