// Package appointments orchestrates create, edit and delete of appointments:
// local validation, the in-flight guard, the backend call, user-facing
// messages, and invalidation of every cached appointment read.
package appointments

import (
	"context"
	"errors"
	"sort"
	"time"

	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/services/backend"
	"slotbook/services/cache"
	"slotbook/services/guests"
	"slotbook/utils"

	"go.uber.org/zap"
)

// Outcomes of a successful mutation.
const (
	OutcomeBooked      = "booked"
	OutcomeRescheduled = "rescheduled"
	OutcomeUpdated     = "updated"
	OutcomeDeleted     = "deleted"
)

const (
	msgBooked      = "Appointment booked successfully!"
	msgRescheduled = "Appointment rescheduled successfully!"
	msgUpdated     = "Appointment updated successfully!"
	msgDeleted     = "Appointment deleted successfully"

	fallbackCreate = "Failed to book appointment"
	fallbackEdit   = "Failed to update appointment"
	fallbackDelete = "Failed to delete appointment"
)

// Result is the outcome of a successful mutation.
type Result struct {
	Outcome     string              `json:"outcome"`
	Message     string              `json:"message"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

// AppointmentService is the mutation surface used by handlers.
type AppointmentService interface {
	CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest) (*Result, error)
	EditAppointment(ctx context.Context, original models.Appointment, form EditForm) (*Result, error)
	DeleteAppointment(ctx context.Context, id string) (*Result, error)
	FindAppointment(ctx context.Context, sharableID, id string) (*models.Appointment, error)
}

// DefaultAppointmentService implements AppointmentService. The context
// passed to each method carries the host's backend cookies.
type DefaultAppointmentService struct {
	Backend backend.API
	Cache   *cache.QueryCache
	Locker  *cache.Locker
	// PageSize is the page length used when scanning the upcoming list.
	PageSize int
	// ListTTL is how long a fetched page stays fresh.
	ListTTL time.Duration
}

// CreateAppointment books a slot. Guest entries are checked against the
// primary email before anything is sent.
func (s *DefaultAppointmentService) CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest) (*Result, error) {
	prepared, gerr := guests.PrepareForSubmission(req.Guests, req.Email)
	req.Guests = prepared
	if err := validationFailure(utils.ValidateStruct(req), gerr); err != nil {
		return nil, err
	}

	var created *models.Appointment
	err := s.mutate(ctx, "create", req.SlotID, fallbackCreate, func(ctx context.Context) error {
		a, err := s.Backend.CreateAppointment(ctx, req)
		created = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeBooked, Message: msgBooked, Appointment: created}, nil
}

// DeleteAppointment cancels an appointment. A failure leaves every cached
// read in place so the host can retry.
func (s *DefaultAppointmentService) DeleteAppointment(ctx context.Context, id string) (*Result, error) {
	var deleted *models.DeleteAppointmentResponse
	err := s.mutate(ctx, "delete", id, fallbackDelete, func(ctx context.Context) error {
		res, err := s.Backend.DeleteAppointment(ctx, id)
		deleted = res
		return err
	})
	if err != nil {
		return nil, err
	}
	res := &Result{Outcome: OutcomeDeleted, Message: msgDeleted}
	if deleted != nil && deleted.Appointment.ID != "" {
		res.Appointment = &deleted.Appointment
	}
	return res, nil
}

// mutate runs call under the action's in-flight guard, detached from
// cancellation of ctx, and invalidates the appointments scope on success.
func (s *DefaultAppointmentService) mutate(ctx context.Context, action, target, fallback string, call func(context.Context) error) error {
	logger := utils.GetLogger().With(zap.String("action", action), zap.String("target", target))
	// A started mutation outlives the request that asked for it.
	detached := context.WithoutCancel(ctx)

	if s.Locker != nil {
		release, err := s.Locker.Acquire(detached, cache.LockKey(action, target))
		switch {
		case errors.Is(err, cache.ErrLocked):
			return ErrMutationPending
		case err != nil:
			logger.Warn("Mutation guard unavailable, continuing without it", zap.Error(err))
		default:
			defer release()
		}
	}

	if err := call(detached); err != nil {
		logger.Warn("Appointment mutation failed", zap.Error(err))
		return &MutationError{Op: action, Message: apierr.Message(err, fallback), Err: err}
	}

	if err := s.Cache.InvalidateScope(detached, cache.ScopeAppointments); err != nil {
		logger.Error("Failed to invalidate appointment reads", zap.Error(err))
	}
	logger.Info("Appointment mutation succeeded")
	return nil
}

// validationFailure merges field errors and guest errors into a single
// ValidationFailure, or returns nil when there are none.
func validationFailure(fieldErr, guestErr error) error {
	if fieldErr == nil && guestErr == nil {
		return nil
	}
	vf := &apierr.ValidationFailure{}
	var gf *apierr.ValidationFailure
	if errors.As(guestErr, &gf) {
		vf.Message = gf.Message
		vf.GuestErrors = gf.GuestErrors
	}
	if fieldErr != nil {
		vf.Fields = utils.FieldErrors(fieldErr)
		if vf.Message == "" {
			vf.Message = firstMessage(vf.Fields)
		}
		if vf.Message == "" {
			vf.Message = fieldErr.Error()
		}
	}
	return vf
}

func firstMessage(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return fields[keys[0]]
}
