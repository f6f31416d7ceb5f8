package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"slotbook/config"
	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// RetryWait is the initial backoff between read retries.
	RetryWait time.Duration
}

// OptionsFromConfig reads Options from the loaded application config.
func OptionsFromConfig() Options {
	return Options{
		BaseURL:    config.AppConfig.BackendURL,
		Timeout:    config.AppConfig.BackendTimeout,
		RetryCount: config.AppConfig.ReadRetryCount,
	}
}

// Client is the resty-backed API implementation. Reads go through a client
// that retries on network errors and 5xx responses; mutations and the
// identity probe go through one that never retries.
type Client struct {
	reads  *resty.Client
	writes *resty.Client
}

var _ API = (*Client)(nil)

// errorBody is the structured error payload the backend sends with non-2xx
// responses.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 200 * time.Millisecond
	}

	reads := newResty(opts).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(4 * opts.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{reads: reads, writes: newResty(opts)}
}

// newResty builds a client without a cookie jar: backend cookies belong to
// one session and travel only through the request context.
func newResty(opts Options) *resty.Client {
	return resty.New().
		SetCookieJar(nil).
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
}

func (c *Client) request(ctx context.Context, rc *resty.Client) *resty.Request {
	return rc.R().
		SetContext(ctx).
		SetCookies(CookiesFrom(ctx)).
		SetError(&errorBody{})
}

// AvailableSlots fetches one week of a host's slots.
func (c *Client) AvailableSlots(ctx context.Context, sharableID string, weekOffset int) ([]models.DaySlots, error) {
	var days []models.DaySlots
	resp, err := c.request(ctx, c.reads).
		SetQueryParams(map[string]string{
			"sharableId": sharableID,
			"weekOffset": strconv.Itoa(weekOffset),
		}).
		SetResult(&days).
		Get(routeAvailableSlots)
	if err := translate(resp, err); err != nil {
		return nil, err
	}
	if days == nil {
		return nil, apierr.Malformed("available slots", errors.New("expected an array"))
	}
	for i := range days {
		if err := utils.ValidateStruct(days[i]); err != nil {
			return nil, apierr.Malformed("available slots", err)
		}
	}
	return days, nil
}

// Appointments fetches one page of a host's appointments.
func (c *Client) Appointments(ctx context.Context, q models.AppointmentQuery) (*models.AppointmentsResponse, error) {
	var out models.AppointmentsResponse
	resp, err := c.request(ctx, c.reads).
		SetQueryParams(map[string]string{
			"sharableId": q.SharableID,
			"type":       string(q.Type),
			"page":       strconv.Itoa(q.Page),
			"limit":      strconv.Itoa(q.Limit),
		}).
		SetResult(&out).
		Get(routeAppointments)
	if err := translate(resp, err); err != nil {
		return nil, err
	}
	if out.Appointments == nil {
		return nil, apierr.Malformed("appointments", errors.New("missing appointments"))
	}
	if err := utils.ValidateStruct(out); err != nil {
		return nil, apierr.Malformed("appointments", err)
	}
	if err := out.Pagination.Check(); err != nil {
		return nil, apierr.Malformed("appointments", err)
	}
	return &out, nil
}

// CreateAppointment books a slot.
func (c *Client) CreateAppointment(ctx context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	var out models.Appointment
	resp, err := c.request(ctx, c.writes).
		SetBody(req).
		SetResult(&out).
		Post(routeAppointments)
	if err := translate(resp, err); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(out); err != nil {
		return nil, apierr.Malformed("created appointment", err)
	}
	return &out, nil
}

// EditAppointment sends a sparse patch.
func (c *Client) EditAppointment(ctx context.Context, id string, req models.EditAppointmentRequest) (*models.EditAppointmentResponse, error) {
	var out models.EditAppointmentResponse
	resp, err := c.request(ctx, c.writes).
		SetPathParam("id", id).
		SetBody(req).
		SetResult(&out).
		Patch(routeAppointmentByID)
	if err := translate(resp, err); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(out.Appointment); err != nil {
		return nil, apierr.Malformed("edited appointment", err)
	}
	return &out, nil
}

// DeleteAppointment cancels an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, id string) (*models.DeleteAppointmentResponse, error) {
	var out models.DeleteAppointmentResponse
	resp, err := c.request(ctx, c.writes).
		SetPathParam("id", id).
		SetResult(&out).
		Delete(routeAppointmentByID)
	if err := translate(resp, err); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(out.Appointment); err != nil {
		return nil, apierr.Malformed("deleted appointment", err)
	}
	return &out, nil
}

// Signup registers a host.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*AuthResult, error) {
	return c.authenticate(ctx, routeSignup, req)
}

// Login signs a host in.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	return c.authenticate(ctx, routeLogin, req)
}

func (c *Client) authenticate(ctx context.Context, route string, body any) (*AuthResult, error) {
	var user models.User
	resp, err := c.request(ctx, c.writes).
		SetBody(body).
		SetResult(&user).
		Post(route)
	if err := translate(resp, err); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(user); err != nil {
		return nil, apierr.Malformed("user", err)
	}
	return &AuthResult{User: user, Cookies: resp.Cookies()}, nil
}

// Logout ends the backend session carried by ctx.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.request(ctx, c.writes).Post(routeLogout)
	return translate(resp, err)
}

// Me returns the host behind the cookies in ctx. It is never retried.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	resp, err := c.request(ctx, c.writes).
		SetResult(&user).
		Get(routeMe)
	if err := translate(resp, err); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(user); err != nil {
		return nil, apierr.Malformed("user", err)
	}
	return &user, nil
}

// Ping reports whether the backend answers at all. Any HTTP response,
// including 401 from the identity route, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.writes.R().SetContext(ctx).Get(routeMe)
	if err != nil {
		return &apierr.UnknownFailure{Err: err, Network: true}
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return &apierr.TransportFailure{Status: resp.StatusCode(), StatusText: resp.Status()}
	}
	return nil
}

// translate maps a resty outcome onto the apierr variants.
func translate(resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &apierr.UnknownFailure{Err: err, Network: true}
		}
		if resp == nil || resp.RawResponse == nil {
			return &apierr.UnknownFailure{Err: err, Network: true}
		}
		return &apierr.UnknownFailure{Err: fmt.Errorf("decode backend response: %w", err)}
	}
	if !resp.IsError() {
		return nil
	}
	tf := &apierr.TransportFailure{
		Status:     resp.StatusCode(),
		StatusText: http.StatusText(resp.StatusCode()),
	}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		tf.ServerError = body.Error
		tf.ServerMessage = body.Message
	}
	utils.GetLogger().Debug("Backend returned an error",
		zap.String("url", resp.Request.URL),
		zap.Int("status", tf.Status),
		zap.String("error", tf.ServerError))
	return tf
}
