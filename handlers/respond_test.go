package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"slotbook/services/apierr"
	"slotbook/services/appointments"
	"slotbook/services/calendar"
	"slotbook/services/session"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &apierr.ValidationFailure{Message: "Invalid email address", GuestErrors: []string{"Invalid email address"}}, http.StatusUnprocessableEntity, "Invalid email address"},
		{"no changes", appointments.ErrNoChanges, http.StatusBadRequest, "No changes to save"},
		{"pending", appointments.ErrMutationPending, http.StatusConflict, "This change is already being saved"},
		{"not found", appointments.ErrAppointmentNotFound, http.StatusNotFound, "Appointment not found"},
		{"day", fmt.Errorf("%w: 0", calendar.ErrDayUnavailable), http.StatusUnprocessableEntity, "This day cannot be selected"},
		{"mutation 4xx", &appointments.MutationError{Op: "create", Message: "Slot is already booked", Err: &apierr.TransportFailure{Status: 409}}, http.StatusConflict, "Slot is already booked"},
		{"mutation 5xx", &appointments.MutationError{Op: "edit", Message: "Internal Server Error", Err: &apierr.TransportFailure{Status: 500}}, http.StatusBadGateway, "Internal Server Error"},
		{"mutation network", &appointments.MutationError{Op: "delete", Message: "Failed to delete appointment", Err: &apierr.UnknownFailure{Network: true}}, http.StatusBadGateway, "Failed to delete appointment"},
		{"expired", session.ErrSessionExpired, http.StatusUnauthorized, msgNotAuthenticated},
		{"slots", fmt.Errorf("%w: %w", calendar.ErrSlotsUnavailable, &apierr.UnknownFailure{Network: true}), http.StatusBadGateway, calendar.MsgSlotsUnavailable},
		{"appointments", fmt.Errorf("%w: %w", calendar.ErrAppointmentsUnavailable, &apierr.TransportFailure{Status: 500}), http.StatusBadGateway, calendar.MsgAppointmentsUnavailable},
		{"list auth", fmt.Errorf("%w: %w", calendar.ErrAppointmentsUnavailable, &apierr.TransportFailure{Status: 401}), http.StatusUnauthorized, msgNotAuthenticated},
		{"unreachable", fmt.Errorf("load: %w", &apierr.UnknownFailure{Err: errors.New("dial tcp: refused"), Network: true}), http.StatusServiceUnavailable, "Could not reach the booking service"},
		{"malformed", apierr.Malformed("user", errors.New("missing id")), http.StatusBadGateway, "The booking service is unavailable"},
		{"backend", &apierr.TransportFailure{Status: 503}, http.StatusBadGateway, "The booking service is unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body utils.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tt.msg {
				t.Fatalf("error = %q, want %q", body.Error, tt.msg)
			}
		})
	}
}
