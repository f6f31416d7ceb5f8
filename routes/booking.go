package routes

import (
	"slotbook/handlers"
	"slotbook/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the calendar and appointment endpoints.
// Calendars and booking are public; everything touching appointment
// details needs the host session.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	cal := r.Group("/api/calendar")
	{
		cal.GET("/:sharableId", middleware.SessionMiddleware(hb.Sessions, true), hb.WeekHandler)
		cal.GET("/:sharableId/week.ics", middleware.SessionMiddleware(hb.Sessions, false), hb.ExportWeekHandler)
	}

	appts := r.Group("/api/appointments")
	{
		appts.POST("", hb.CreateAppointmentHandler)

		host := appts.Group("")
		host.Use(middleware.SessionMiddleware(hb.Sessions, false))
		host.GET("", hb.ListAppointmentsHandler)
		host.PATCH("/:id", hb.EditAppointmentHandler)
		host.DELETE("/:id", hb.DeleteAppointmentHandler)
		host.GET("/:id/reschedule-options", hb.RescheduleOptionsHandler)
	}
}
