package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChanges rejects an edit that would send an empty patch.
	ErrNoChanges = errors.New("no changes to save")
	// ErrMutationPending rejects a mutation while the same one is in flight.
	ErrMutationPending = errors.New("mutation already in progress")
	// ErrAppointmentNotFound is returned when the appointment is not among the
	// host's upcoming appointments.
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// MutationError is a failed backend mutation with the message to show.
type MutationError struct {
	Op      string
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *MutationError) Unwrap() error { return e.Err }
