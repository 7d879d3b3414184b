package streams

import "fmt"

// FetchError reports a transport fault while fetching descriptors for a source.
type FetchError struct {
	SourceID string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch streams for %s: %v", e.SourceID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
