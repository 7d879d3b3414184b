package resolver

import "fmt"

// ResolutionError reports why one item could not be mapped to a source.
type ResolutionError struct {
	ItemID string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.ItemID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
