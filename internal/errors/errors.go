package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the reservation paths. Repositories map storage-level
// failures onto these; services decide which are retried and which propagate.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("concurrent update conflict")
	ErrRetryExhausted = errors.New("retry budget exhausted")
	ErrIDCollision    = errors.New("generated identifier already exists")
)

// SeatsUnavailableError reports the specific seats that could not be
// reserved, not just that the booking failed.
type SeatsUnavailableError struct {
	ShowtimeID string
	Seats      []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("seats not available for showtime %s: %s",
		e.ShowtimeID, strings.Join(e.Seats, ", "))
}

// SlotUnavailableError reports a parking slot that is already booked.
type SlotUnavailableError struct {
	VehicleType string
	SlotNumber  string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("parking slot %s is not available for %s",
		e.SlotNumber, e.VehicleType)
}

// ValidationError reports user-correctable input problems.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsUserError reports whether err should surface to the caller verbatim
// rather than as an internal failure.
func IsUserError(err error) bool {
	var su *SeatsUnavailableError
	var pu *SlotUnavailableError
	var ve *ValidationError
	return errors.As(err, &su) || errors.As(err, &pu) || errors.As(err, &ve) ||
		errors.Is(err, ErrNotFound)
}
