package pipeline

import "fmt"

// DecodeError reports that an item's bytes could not be rasterized.
// It is per-item and recoverable: the orchestrator drops the item and
// continues with the rest of the batch.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ConversionError reports a failed HEIC/HEIF normalization. Handled the
// same way as DecodeError.
type ConversionError struct {
	Name string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Name, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
