// Package fakebackend is an in-memory booking backend for tests and the
// local dev backend. It keeps slots and appointments consistent the way the
// real API does: booking a slot marks it taken, rescheduling frees the old
// slot, deleting frees it.
package fakebackend

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/services/backend"
)

const cookieName = "token"

// Host is a registered account.
type Host struct {
	User     models.User
	Password string
}

// Fake implements backend.API.
type Fake struct {
	mu     sync.Mutex
	hosts  map[string]Host
	weeks  map[string]map[int][]models.DaySlots
	appts  []models.Appointment
	calls  map[string]int
	fail   map[string]error
	nextID int
	now    func() time.Time
}

var _ backend.API = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{
		hosts: map[string]Host{},
		weeks: map[string]map[int][]models.DaySlots{},
		calls: map[string]int{},
		fail:  map[string]error{},
		now:   time.Now,
	}
}

// AddHost registers a host.
func (f *Fake) AddHost(user models.User, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hosts[user.Email] = Host{User: user, Password: password}
}

// SetWeek installs the slots a host offers in the week at offset.
func (f *Fake) SetWeek(sharableID string, offset int, days []models.DaySlots) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.weeks[sharableID] == nil {
		f.weeks[sharableID] = map[int][]models.DaySlots{}
	}
	f.weeks[sharableID][offset] = days
}

// AddAppointment stores an appointment as is, bypassing slot checks.
func (f *Fake) AddAppointment(a models.Appointment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appts = append(f.appts, a)
}

// FailNext makes the next call of op return err. Ops are the API method
// names, e.g. "CreateAppointment".
func (f *Fake) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

// Calls reports how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Appointment returns the stored appointment with id.
func (f *Fake) Appointment(id string) (models.Appointment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

func (f *Fake) enter(op string) error {
	f.calls[op]++
	if err, ok := f.fail[op]; ok {
		delete(f.fail, op)
		return err
	}
	return nil
}

func transport(status int, msg string) error {
	return &apierr.TransportFailure{Status: status, StatusText: http.StatusText(status), ServerError: msg}
}

func (f *Fake) booked(slotID string) bool {
	for _, a := range f.appts {
		if a.SlotID == slotID && !a.IsDeleted {
			return true
		}
	}
	return false
}

func (f *Fake) findSlot(slotID string) (string, models.Slot, bool) {
	for sharableID, weeks := range f.weeks {
		for _, days := range weeks {
			for _, d := range days {
				for _, s := range d.Slots {
					if s.ID == slotID {
						return sharableID, s, true
					}
				}
			}
		}
	}
	return "", models.Slot{}, false
}

func (f *Fake) hostBySharable(sharableID string) (Host, bool) {
	for _, h := range f.hosts {
		if h.User.SharableID == sharableID {
			return h, true
		}
	}
	return Host{}, false
}

func (f *Fake) caller(ctx context.Context) (Host, bool) {
	for _, c := range backend.CookiesFrom(ctx) {
		if c.Name != cookieName {
			continue
		}
		for _, h := range f.hosts {
			if h.User.UserID == c.Value {
				return h, true
			}
		}
	}
	return Host{}, false
}

// AvailableSlots implements backend.API.
func (f *Fake) AvailableSlots(_ context.Context, sharableID string, weekOffset int) ([]models.DaySlots, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AvailableSlots"); err != nil {
		return nil, err
	}
	if _, ok := f.hostBySharable(sharableID); !ok {
		return nil, transport(http.StatusNotFound, "Host not found")
	}
	days := f.weeks[sharableID][weekOffset]
	out := make([]models.DaySlots, 0, len(days))
	for _, d := range days {
		slots := make([]models.Slot, len(d.Slots))
		for i, s := range d.Slots {
			s.IsBooked = s.IsBooked || f.booked(s.ID)
			slots[i] = s
		}
		out = append(out, models.DaySlots{DayID: d.DayID, Slots: slots})
	}
	return out, nil
}

// Appointments implements backend.API. Pending appointments are "future",
// done ones are "past".
func (f *Fake) Appointments(ctx context.Context, q models.AppointmentQuery) (*models.AppointmentsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Appointments"); err != nil {
		return nil, err
	}
	h, ok := f.caller(ctx)
	if !ok {
		return nil, transport(http.StatusUnauthorized, "Not authenticated")
	}
	if h.User.SharableID != q.SharableID {
		return nil, transport(http.StatusForbidden, "Forbidden")
	}
	want := models.StatusPending
	if q.Type == models.AppointmentsPast {
		want = models.StatusDone
	}
	var list []models.Appointment
	for _, a := range f.appts {
		if a.UserID == h.User.UserID && !a.IsDeleted && a.Status == want {
			list = append(list, a)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Slot.StartTime < list[j].Slot.StartTime })

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	end := start + limit
	if start > len(list) {
		start = len(list)
	}
	if end > len(list) {
		end = len(list)
	}
	return &models.AppointmentsResponse{
		Appointments: append([]models.Appointment{}, list[start:end]...),
		Pagination:   models.NewPagination(page, limit, len(list)),
	}, nil
}

// CreateAppointment implements backend.API.
func (f *Fake) CreateAppointment(_ context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateAppointment"); err != nil {
		return nil, err
	}
	h, ok := f.hostBySharable(req.SharableID)
	if !ok {
		return nil, transport(http.StatusNotFound, "Host not found")
	}
	owner, slot, ok := f.findSlot(req.SlotID)
	if !ok || owner != req.SharableID {
		return nil, transport(http.StatusNotFound, "Slot not found")
	}
	if slot.IsBooked || f.booked(slot.ID) {
		return nil, transport(http.StatusConflict, "Slot is already booked")
	}
	f.nextID++
	stamp := f.now().UTC().Format(time.RFC3339)
	a := models.Appointment{
		ID:        fmt.Sprintf("appt-%d", f.nextID),
		UserID:    h.User.UserID,
		SlotID:    slot.ID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Guests:    req.Guests,
		Reason:    req.Reason,
		Status:    models.StatusPending,
		Slot:      models.AppointmentSlot{StartTime: slot.StartTime, EndTime: slot.EndTime, Date: slot.Date},
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	f.appts = append(f.appts, a)
	return &a, nil
}

// EditAppointment implements backend.API.
func (f *Fake) EditAppointment(ctx context.Context, id string, req models.EditAppointmentRequest) (*models.EditAppointmentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("EditAppointment"); err != nil {
		return nil, err
	}
	if !req.HasFields() {
		return nil, transport(http.StatusBadRequest, "At least one field must be provided to update the appointment")
	}
	h, ok := f.caller(ctx)
	if !ok {
		return nil, transport(http.StatusUnauthorized, "Not authenticated")
	}
	for i := range f.appts {
		a := &f.appts[i]
		if a.ID != id || a.IsDeleted {
			continue
		}
		if a.UserID != h.User.UserID {
			return nil, transport(http.StatusForbidden, "Forbidden")
		}
		if req.IsReschedule() && *req.NewSlotID != a.SlotID {
			_, slot, found := f.findSlot(*req.NewSlotID)
			if !found {
				return nil, transport(http.StatusNotFound, "Slot not found")
			}
			if slot.IsBooked || f.booked(slot.ID) {
				return nil, transport(http.StatusConflict, "Slot is already booked")
			}
			a.SlotID = slot.ID
			a.Slot = models.AppointmentSlot{StartTime: slot.StartTime, EndTime: slot.EndTime, Date: slot.Date}
		}
		if req.Name != nil {
			a.Name = *req.Name
		}
		if req.Email != nil {
			a.Email = *req.Email
		}
		if req.Phone != nil {
			a.Phone = *req.Phone
		}
		if req.Guests != nil {
			a.Guests = append([]string{}, (*req.Guests)...)
		}
		if req.Reason != nil {
			a.Reason = *req.Reason
		}
		a.UpdatedAt = f.now().UTC().Format(time.RFC3339)
		return &models.EditAppointmentResponse{Message: "Appointment updated", Appointment: *a}, nil
	}
	return nil, transport(http.StatusNotFound, "Appointment not found")
}

// DeleteAppointment implements backend.API.
func (f *Fake) DeleteAppointment(ctx context.Context, id string) (*models.DeleteAppointmentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteAppointment"); err != nil {
		return nil, err
	}
	h, ok := f.caller(ctx)
	if !ok {
		return nil, transport(http.StatusUnauthorized, "Not authenticated")
	}
	for i, a := range f.appts {
		if a.ID != id || a.IsDeleted {
			continue
		}
		if a.UserID != h.User.UserID {
			return nil, transport(http.StatusForbidden, "Forbidden")
		}
		f.appts = append(f.appts[:i], f.appts[i+1:]...)
		a.IsDeleted = true
		return &models.DeleteAppointmentResponse{Message: "Appointment deleted", Appointment: a}, nil
	}
	return nil, transport(http.StatusNotFound, "Appointment not found")
}

// Signup implements backend.API.
func (f *Fake) Signup(_ context.Context, req models.SignupRequest) (*backend.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Signup"); err != nil {
		return nil, err
	}
	if _, exists := f.hosts[req.Email]; exists {
		return nil, transport(http.StatusConflict, "Email already registered")
	}
	f.nextID++
	user := models.User{
		ID:         fmt.Sprintf("%d", f.nextID),
		Email:      req.Email,
		Name:       req.Name,
		UserID:     fmt.Sprintf("user-%d", f.nextID),
		SharableID: fmt.Sprintf("00000000-0000-4000-8000-%012d", f.nextID),
		Timezone:   req.Timezone,
	}
	f.hosts[req.Email] = Host{User: user, Password: req.Password}
	return &backend.AuthResult{User: user, Cookies: []*http.Cookie{{Name: cookieName, Value: user.UserID}}}, nil
}

// Login implements backend.API.
func (f *Fake) Login(_ context.Context, req models.LoginRequest) (*backend.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Login"); err != nil {
		return nil, err
	}
	h, ok := f.hosts[req.Email]
	if !ok || h.Password != req.Password {
		return nil, transport(http.StatusUnauthorized, "Invalid email or password")
	}
	return &backend.AuthResult{User: h.User, Cookies: []*http.Cookie{{Name: cookieName, Value: h.User.UserID}}}, nil
}

// Logout implements backend.API.
func (f *Fake) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("Logout")
}

// Me implements backend.API.
func (f *Fake) Me(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Me"); err != nil {
		return nil, err
	}
	h, ok := f.caller(ctx)
	if !ok {
		return nil, transport(http.StatusUnauthorized, "Not authenticated")
	}
	u := h.User
	return &u, nil
}

// Ping implements backend.API.
func (f *Fake) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enter("Ping")
}
