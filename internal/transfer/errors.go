package transfer

import (
	"errors"
	"fmt"
)

// ErrCancelled marks a transfer stopped by context cancellation. It is not a
// failure and callers should report it separately.
var ErrCancelled = errors.New("transfer cancelled")

// TransferError reports a failed transfer.
type TransferError struct {
	SourceID    string
	Destination string
	Err         error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer %s to %s: %v", e.SourceID, e.Destination, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// IsCancelled reports whether err stems from a cancelled transfer.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
