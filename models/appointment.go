package models

import "time"

// Appointment statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// MaxReasonLength bounds the free-text reason of an appointment.
const MaxReasonLength = 500

// AppointmentType filters the appointment list.
type AppointmentType string

const (
	AppointmentsPast   AppointmentType = "past"
	AppointmentsFuture AppointmentType = "future"
)

// Valid reports whether t is one of the known list filters.
func (t AppointmentType) Valid() bool {
	return t == AppointmentsPast || t == AppointmentsFuture
}

// AppointmentSlot is the denormalized slot snapshot stored on an appointment.
type AppointmentSlot struct {
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Date      string `json:"date" binding:"required"`
}

// StartAt parses StartTime.
func (s AppointmentSlot) StartAt() (time.Time, error) {
	return parseInstant(s.StartTime)
}

// EndAt parses EndTime.
func (s AppointmentSlot) EndAt() (time.Time, error) {
	return parseInstant(s.EndTime)
}

// Appointment is a booking bound to one slot.
type Appointment struct {
	ID        string          `json:"_id" binding:"required"`
	UserID    string          `json:"userId" binding:"required"`
	SlotID    string          `json:"slotId" binding:"required"`
	Name      string          `json:"name"`
	Email     string          `json:"email" binding:"required,email"`
	Phone     string          `json:"phone,omitempty"`
	Guests    []string        `json:"guests,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Status    string          `json:"status" binding:"required,oneof=pending done"`
	Slot      AppointmentSlot `json:"slot" binding:"required"`
	CreatedAt string          `json:"createdAt" binding:"required"`
	UpdatedAt string          `json:"updatedAt" binding:"required"`
	IsDeleted bool            `json:"isDeleted,omitempty"`
}

// CreateAppointmentRequest is the payload sent to the backend to book a slot.
type CreateAppointmentRequest struct {
	SharableID string   `json:"sharableId" binding:"required,uuid"`
	SlotID     string   `json:"slotId" binding:"required"`
	Name       string   `json:"name" binding:"required,min=2"`
	Email      string   `json:"email" binding:"required,email"`
	Phone      string   `json:"phone,omitempty"`
	Guests     []string `json:"guests,omitempty" binding:"omitempty,dive,email"`
	Reason     string   `json:"reason,omitempty" binding:"max=500"`
}

// EditAppointmentRequest is a sparse patch: nil fields are left untouched.
type EditAppointmentRequest struct {
	NewSlotID *string   `json:"newSlotId,omitempty"`
	Name      *string   `json:"name,omitempty" binding:"omitempty,min=2"`
	Email     *string   `json:"email,omitempty" binding:"omitempty,email"`
	Phone     *string   `json:"phone,omitempty"`
	Guests    *[]string `json:"guests,omitempty" binding:"omitempty,dive,email"`
	Reason    *string   `json:"reason,omitempty" binding:"omitempty,max=500"`
}

// HasFields reports whether the patch carries at least one field.
func (r EditAppointmentRequest) HasFields() bool {
	return r.NewSlotID != nil || r.Name != nil || r.Email != nil ||
		r.Phone != nil || r.Guests != nil || r.Reason != nil
}

// IsReschedule reports whether the patch moves the appointment to another slot.
func (r EditAppointmentRequest) IsReschedule() bool {
	return r.NewSlotID != nil && *r.NewSlotID != ""
}

// EditAppointmentResponse is returned by the backend after a PATCH.
type EditAppointmentResponse struct {
	Message     string      `json:"message"`
	Appointment Appointment `json:"appointment"`
}

// DeleteAppointmentResponse is returned by the backend after a DELETE.
type DeleteAppointmentResponse struct {
	Message     string      `json:"message"`
	Appointment Appointment `json:"appointment"`
}

// AppointmentQuery selects one page of a host's appointments.
type AppointmentQuery struct {
	SharableID string          `form:"sharableId"`
	Type       AppointmentType `form:"filter"`
	Page       int             `form:"page"`
	Limit      int             `form:"limit"`
}

// AppointmentsResponse is one page of appointments.
type AppointmentsResponse struct {
	Appointments []Appointment `json:"appointments" binding:"dive"`
	Pagination   Pagination    `json:"pagination"`
}
