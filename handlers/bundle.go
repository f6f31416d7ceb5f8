package handlers

import (
	"time"

	"slotbook/services/appointments"
	"slotbook/services/calendar"
	"slotbook/services/session"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Sessions backs the session middleware on protected groups.
	Sessions *session.Manager

	// Auth endpoints
	SignupHandler gin.HandlerFunc
	LoginHandler  gin.HandlerFunc
	LogoutHandler gin.HandlerFunc
	MeHandler     gin.HandlerFunc

	// Calendar endpoints
	WeekHandler       gin.HandlerFunc
	ExportWeekHandler gin.HandlerFunc

	// Appointment endpoints
	ListAppointmentsHandler  gin.HandlerFunc
	CreateAppointmentHandler gin.HandlerFunc
	EditAppointmentHandler   gin.HandlerFunc
	DeleteAppointmentHandler gin.HandlerFunc
	RescheduleOptionsHandler gin.HandlerFunc

	// Guest endpoints
	ValidateGuestsHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires every handler onto the services.
func NewHandlerBundle(sessions *session.Manager, cal calendar.CalendarService, appts appointments.AppointmentService, cookieTTL time.Duration) *HandlerBundle {
	authHandler := NewAuthHandler(sessions, cookieTTL)
	calendarHandler := NewCalendarHandler(cal)
	appointmentHandler := NewAppointmentHandler(appts, calendarHandler)

	return &HandlerBundle{
		Sessions: sessions,

		SignupHandler: authHandler.Signup,
		LoginHandler:  authHandler.Login,
		LogoutHandler: authHandler.Logout,
		MeHandler:     authHandler.Me,

		WeekHandler:       calendarHandler.Week,
		ExportWeekHandler: calendarHandler.ExportWeek,

		ListAppointmentsHandler:  appointmentHandler.List,
		CreateAppointmentHandler: appointmentHandler.Create,
		EditAppointmentHandler:   appointmentHandler.Edit,
		DeleteAppointmentHandler: appointmentHandler.Delete,
		RescheduleOptionsHandler: appointmentHandler.RescheduleOptions,

		ValidateGuestsHandler: ValidateGuests,
		HealthHandler:         Health,
	}
}
