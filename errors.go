package raycast

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroDirection is returned by NewRay when the direction has no length.
	ErrZeroDirection = errors.New("ray direction must be non-zero")

	// ErrInvalidHandle is the common parent of every handle misuse error.
	ErrInvalidHandle = errors.New("invalid query handle")

	// ErrUnknownHandle means the handle was never issued by this service.
	ErrUnknownHandle = fmt.Errorf("%w: unknown", ErrInvalidHandle)

	// ErrHandleConsumed means the result was already fetched.
	ErrHandleConsumed = fmt.Errorf("%w: already fetched", ErrInvalidHandle)
)
