package modlist

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid list name")
	// ErrNotFound is returned for unknown list or mod ids.
	ErrNotFound = errors.New("not found")
	// ErrCatalogUnavailable is returned when a remote catalog call fails.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrMalformedResponse is returned when the catalog answers with an
	// unexpected payload. It also matches ErrCatalogUnavailable.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrCatalogUnavailable)
)

// Reason identifies which naming rule a ValidationError violates.
type Reason string

const (
	ReasonEmpty     Reason = "empty"
	ReasonTooLong   Reason = "tooLong"
	ReasonDuplicate Reason = "duplicate"
)

// ValidationError reports a rejected list name.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "list name cannot be empty"
	case ReasonTooLong:
		return fmt.Sprintf("list name must be at most %d characters", MaxNameLength)
	case ReasonDuplicate:
		return "a list with that name already exists"
	default:
		return fmt.Sprintf("invalid list name (%s)", e.Reason)
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsReason reports whether err is a ValidationError with the given reason.
func IsReason(err error, reason Reason) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Reason == reason
}
