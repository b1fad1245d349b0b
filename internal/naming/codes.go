package naming

import (
	"context"
	"fmt"
	"sync"

	"photobatch/internal/logging"
)

// Code is one industry code entry: the short code used in filenames and its
// display name.
type Code struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// defaultCodes is the built-in list used whenever the external lookup is
// unavailable.
var defaultCodes = []Code{
	{Code: "hos", Name: "病院"},
	{Code: "htl", Name: "ホテル"},
	{Code: "sal", Name: "サロン"},
	{Code: "tra", Name: "しつけ教室"},
	{Code: "caf", Name: "カフェ"},
	{Code: "run", Name: "ドッグラン"},
}

// LookupFunc fetches the industry-code list from an external source.
type LookupFunc func(ctx context.Context) ([]Code, error)

// LookupError reports that the external metadata source was unavailable.
// It is non-fatal: the registry falls back to the built-in list.
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("industry code lookup: %v", e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Registry resolves the current industry-code list. A successful external
// lookup is cached for the lifetime of the registry; failures fall back to
// the built-in defaults and never propagate to the batch.
type Registry struct {
	lookup LookupFunc

	mu    sync.Mutex
	codes []Code
}

// NewRegistry returns a registry backed by the given lookup. A nil lookup
// serves the built-in list directly.
func NewRegistry(lookup LookupFunc) *Registry {
	return &Registry{lookup: lookup}
}

// Codes returns the active industry-code list.
func (r *Registry) Codes(ctx context.Context) []Code {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.codes != nil {
		return append([]Code(nil), r.codes...)
	}
	if r.lookup == nil {
		return append([]Code(nil), defaultCodes...)
	}

	codes, err := r.lookup(ctx)
	if err != nil || len(codes) == 0 {
		if err == nil {
			err = fmt.Errorf("empty code list")
		}
		lerr := &LookupError{Err: err}
		logging.Warn("%v, falling back to built-in list", lerr)
		return append([]Code(nil), defaultCodes...)
	}

	r.codes = codes
	logging.Info("Industry code lookup succeeded: %d codes", len(codes))
	return append([]Code(nil), r.codes...)
}

// Known reports whether code is present in the active list.
func (r *Registry) Known(ctx context.Context, code string) bool {
	for _, c := range r.Codes(ctx) {
		if c.Code == code {
			return true
		}
	}
	return false
}
