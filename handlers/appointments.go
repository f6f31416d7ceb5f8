package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"slotbook/models"
	"slotbook/services/appointments"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the appointment list and its mutations.
type AppointmentHandler struct {
	Appointments appointments.AppointmentService
	// Calendars serves the read side and decides the viewer's timezone.
	Calendars *CalendarHandler
}

// NewAppointmentHandler creates an AppointmentHandler.
func NewAppointmentHandler(appts appointments.AppointmentService, cal *CalendarHandler) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appts, Calendars: cal}
}

// decodeJSON reads the body without running binding rules; the services
// validate fields and guests together.
func decodeJSON(c *gin.Context, dst any) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return false
	}
	return true
}

// List returns one page of the host's past or future appointments.
func (h *AppointmentHandler) List(c *gin.Context) {
	sess := requireSession(c)
	if sess == nil {
		return
	}
	var q models.AppointmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	if q.Type != "" && !q.Type.Valid() {
		utils.JSONError(c, http.StatusBadRequest, "Invalid filter", "filter must be past or future")
		return
	}
	q.SharableID = sess.User.SharableID
	res, err := h.Calendars.Calendar.Appointments(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Create books a slot on behalf of a visitor.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if !decodeJSON(c, &req) {
		return
	}
	res, err := h.Appointments.CreateAppointment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RequestLogger(c).Info("Appointment booked",
		zap.String("sharableId", req.SharableID), zap.String("slotId", req.SlotID))
	c.JSON(http.StatusCreated, res)
}

// Edit applies the submitted form to one of the host's appointments. Fields
// left out of the body keep their current values.
func (h *AppointmentHandler) Edit(c *gin.Context) {
	sess := requireSession(c)
	if sess == nil {
		return
	}
	original, err := h.Appointments.FindAppointment(c.Request.Context(), sess.User.SharableID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	form := appointments.FormFor(*original)
	if !decodeJSON(c, &form) {
		return
	}
	res, err := h.Appointments.EditAppointment(c.Request.Context(), *original, form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete removes one of the host's appointments.
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if requireSession(c) == nil {
		return
	}
	res, err := h.Appointments.DeleteAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RescheduleOptions lists the days an appointment can move to and, with
// dayId, the slots of that day.
func (h *AppointmentHandler) RescheduleOptions(c *gin.Context) {
	sess := requireSession(c)
	if sess == nil {
		return
	}
	var dayID *int
	if raw := c.Query("dayId"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid day", err.Error())
			return
		}
		dayID = &d
	}
	sharableID := sess.User.SharableID
	appt, err := h.Appointments.FindAppointment(c.Request.Context(), sharableID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	opts, err := h.Calendars.Calendar.RescheduleOptions(c.Request.Context(), *appt, sharableID, dayID, h.Calendars.view(c, sharableID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}
