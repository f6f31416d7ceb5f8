package handlers

import (
	"errors"
	"net/http"

	"slotbook/middleware"
	"slotbook/services/apierr"
	"slotbook/services/appointments"
	"slotbook/services/calendar"
	"slotbook/services/session"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgNotAuthenticated = "Not authenticated"

// respondError maps a service error onto a status and a single user-facing
// message.
func respondError(c *gin.Context, err error) {
	logger := utils.RequestLogger(c)

	var vf *apierr.ValidationFailure
	var me *appointments.MutationError
	switch {
	case errors.As(err, &vf):
		c.JSON(http.StatusUnprocessableEntity, utils.ErrorResponse{
			Error:       vf.Error(),
			Fields:      vf.Fields,
			GuestErrors: vf.GuestErrors,
		})
	case errors.Is(err, appointments.ErrNoChanges):
		utils.JSONError(c, http.StatusBadRequest, "No changes to save", "")
	case errors.Is(err, appointments.ErrMutationPending):
		utils.JSONError(c, http.StatusConflict, "This change is already being saved", "")
	case errors.Is(err, appointments.ErrAppointmentNotFound):
		utils.JSONError(c, http.StatusNotFound, "Appointment not found", "")
	case errors.Is(err, calendar.ErrDayUnavailable):
		utils.JSONError(c, http.StatusUnprocessableEntity, "This day cannot be selected", "")
	case errors.As(err, &me):
		status := apierr.Status(err)
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		logger.Warn("Mutation failed", zap.String("op", me.Op), zap.Error(me.Err))
		c.JSON(status, utils.ErrorResponse{Error: me.Message})
	case session.IsUnauthenticated(err) || apierr.IsAuth(err):
		utils.JSONError(c, http.StatusUnauthorized, msgNotAuthenticated, "")
	case errors.Is(err, calendar.ErrSlotsUnavailable):
		logger.Error("Slots fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, utils.ErrorResponse{Error: calendar.MsgSlotsUnavailable})
	case errors.Is(err, calendar.ErrAppointmentsUnavailable):
		logger.Error("Appointments fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, utils.ErrorResponse{Error: calendar.MsgAppointmentsUnavailable})
	case apierr.IsNetwork(err):
		logger.Error("Booking backend unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse{
			Error:   "Could not reach the booking service",
			Details: "Please try again.",
		})
	case isBackendFailure(err):
		logger.Error("Backend request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, utils.ErrorResponse{
			Error:   "The booking service is unavailable",
			Details: "Please try again.",
		})
	default:
		logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse{
			Error:   "Something went wrong",
			Details: "Please try again.",
		})
	}
}

func isBackendFailure(err error) bool {
	var tf *apierr.TransportFailure
	var uf *apierr.UnknownFailure
	return errors.As(err, &tf) || errors.As(err, &uf)
}

// bindJSON binds and validates the request body, answering 400 for
// unreadable bodies and 422 for field errors.
func bindJSON(c *gin.Context, dst any) bool {
	// Registers the custom rules and json field names on gin's validator.
	utils.GetValidator()
	if err := c.ShouldBindJSON(dst); err != nil {
		if fields := utils.FieldErrors(err); fields != nil {
			c.JSON(http.StatusUnprocessableEntity, utils.ErrorResponse{
				Error:  firstFieldError(fields),
				Fields: fields,
			})
			return false
		}
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return false
	}
	return true
}

func firstFieldError(fields map[string]string) string {
	first := ""
	for k := range fields {
		if first == "" || k < first {
			first = k
		}
	}
	return fields[first]
}

// requireSession returns the resolved session or answers 401.
func requireSession(c *gin.Context) *session.Session {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: msgNotAuthenticated})
	}
	return sess
}
