package appointments

import (
	"context"
	"slices"

	"slotbook/models"
	"slotbook/services/cache"
	"slotbook/services/guests"
	"slotbook/utils"
)

// EditForm is the full state of the edit form. SlotID is the slot the host
// picked, or empty to keep the current one.
type EditForm struct {
	SlotID string   `json:"slotId"`
	Name   string   `json:"name" binding:"required,min=2"`
	Email  string   `json:"email" binding:"required,email"`
	Phone  string   `json:"phone"`
	Reason string   `json:"reason" binding:"max=500"`
	Guests []string `json:"guests"`
}

// FormFor pre-fills an EditForm from an appointment.
func FormFor(a models.Appointment) EditForm {
	return EditForm{
		SlotID: a.SlotID,
		Name:   a.Name,
		Email:  a.Email,
		Phone:  a.Phone,
		Reason: a.Reason,
		Guests: append([]string{}, a.Guests...),
	}
}

func slotChanged(original models.Appointment, form EditForm) bool {
	return form.SlotID != "" && form.SlotID != original.SlotID
}

func guestsChanged(original models.Appointment, form EditForm) bool {
	return !slices.Equal(guests.Sanitize(form.Guests), original.Guests)
}

// HasChanges reports whether form differs from original in any field the
// backend stores. Guest lists are compared element by element after blank
// entries are dropped.
func HasChanges(original models.Appointment, form EditForm) bool {
	return slotChanged(original, form) ||
		form.Name != original.Name ||
		form.Email != original.Email ||
		form.Phone != original.Phone ||
		form.Reason != original.Reason ||
		guestsChanged(original, form)
}

// BuildPatch returns the sparse patch for form: only changed fields are set,
// and NewSlotID only when a different slot was picked.
func BuildPatch(original models.Appointment, form EditForm) models.EditAppointmentRequest {
	var patch models.EditAppointmentRequest
	if slotChanged(original, form) {
		patch.NewSlotID = ptr(form.SlotID)
	}
	if form.Name != original.Name {
		patch.Name = ptr(form.Name)
	}
	if form.Email != original.Email {
		patch.Email = ptr(form.Email)
	}
	if form.Phone != original.Phone {
		patch.Phone = ptr(form.Phone)
	}
	if form.Reason != original.Reason {
		patch.Reason = ptr(form.Reason)
	}
	if guestsChanged(original, form) {
		g := guests.Sanitize(form.Guests)
		patch.Guests = &g
	}
	return patch
}

func ptr[T any](v T) *T { return &v }

// EditAppointment applies form to original. The outcome is "rescheduled"
// when the patch moves the appointment and "updated" otherwise.
func (s *DefaultAppointmentService) EditAppointment(ctx context.Context, original models.Appointment, form EditForm) (*Result, error) {
	prepared, gerr := guests.PrepareForSubmission(form.Guests, form.Email)
	if gerr == nil {
		form.Guests = prepared
	}
	if err := validationFailure(utils.ValidateStruct(form), gerr); err != nil {
		return nil, err
	}
	if !HasChanges(original, form) {
		return nil, ErrNoChanges
	}
	patch := BuildPatch(original, form)

	var edited *models.EditAppointmentResponse
	err := s.mutate(ctx, "edit", original.ID, fallbackEdit, func(ctx context.Context) error {
		res, err := s.Backend.EditAppointment(ctx, original.ID, patch)
		edited = res
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Outcome: OutcomeUpdated, Message: msgUpdated}
	if patch.IsReschedule() {
		res.Outcome, res.Message = OutcomeRescheduled, msgRescheduled
	}
	if edited != nil && edited.Appointment.ID != "" {
		res.Appointment = &edited.Appointment
	}
	return res, nil
}

// FindAppointment looks id up in the host's upcoming appointments, page by
// page, through the read cache.
func (s *DefaultAppointmentService) FindAppointment(ctx context.Context, sharableID, id string) (*models.Appointment, error) {
	limit := s.PageSize
	if limit <= 0 {
		limit = 100
	}
	for page := 1; ; page++ {
		q := models.AppointmentQuery{SharableID: sharableID, Type: models.AppointmentsFuture, Page: page, Limit: limit}
		res, err := cache.Fetch(ctx, s.Cache, cache.AppointmentsKey(sharableID, q.Type, page, limit), s.ListTTL,
			func(ctx context.Context) (*models.AppointmentsResponse, error) {
				return s.Backend.Appointments(ctx, q)
			})
		if err != nil {
			return nil, err
		}
		for i := range res.Appointments {
			if res.Appointments[i].ID == id {
				a := res.Appointments[i]
				return &a, nil
			}
		}
		if !res.Pagination.HasNextPage {
			return nil, ErrAppointmentNotFound
		}
	}
}
