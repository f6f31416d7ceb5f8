// Package backend talks to the external booking API. Every response is
// checked against the expected shape before it is handed on, and every
// failure is translated into one of the apierr variants.
package backend

import (
	"context"
	"net/http"

	"slotbook/models"
)

// Backend routes, relative to the configured base URL.
const (
	routeSignup          = "/auth/signup"
	routeLogin           = "/auth/login"
	routeLogout          = "/auth/logout"
	routeMe              = "/auth/me"
	routeAppointments    = "/appointments"
	routeAvailableSlots  = "/appointments/available"
	routeAppointmentByID = "/appointments/{id}"
)

// API is the booking backend as seen by the rest of the service.
type API interface {
	AvailableSlots(ctx context.Context, sharableID string, weekOffset int) ([]models.DaySlots, error)
	Appointments(ctx context.Context, q models.AppointmentQuery) (*models.AppointmentsResponse, error)
	CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error)
	EditAppointment(ctx context.Context, id string, req models.EditAppointmentRequest) (*models.EditAppointmentResponse, error)
	DeleteAppointment(ctx context.Context, id string) (*models.DeleteAppointmentResponse, error)

	Signup(ctx context.Context, req models.SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)

	Ping(ctx context.Context) error
}

// AuthResult is the identity returned by signup or login together with the
// cookies the backend set to keep that login alive.
type AuthResult struct {
	User    models.User
	Cookies []*http.Cookie
}

type cookiesKey struct{}

// WithCookies attaches the backend session cookies of the calling host to
// ctx. Requests made with the returned context carry them.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	if len(cookies) == 0 {
		return ctx
	}
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

// CookiesFrom returns the cookies attached by WithCookies.
func CookiesFrom(ctx context.Context) []*http.Cookie {
	c, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return c
}
