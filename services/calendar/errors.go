package calendar

import "errors"

// User-facing fetch failures.
const (
	MsgSlotsUnavailable        = "Failed to load available slots. Please try again."
	MsgAppointmentsUnavailable = "Failed to load appointments. Please try again."
)

var (
	// ErrSlotsUnavailable wraps any failure to fetch availability.
	ErrSlotsUnavailable = errors.New("available slots unavailable")
	// ErrAppointmentsUnavailable wraps any failure to fetch appointments.
	ErrAppointmentsUnavailable = errors.New("appointments unavailable")
	// ErrDayUnavailable rejects reschedule days outside the working week or
	// already in the past.
	ErrDayUnavailable = errors.New("day is not available for rescheduling")
)
