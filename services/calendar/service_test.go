package calendar

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"slotbook/models"
	"slotbook/services/apierr"
	"slotbook/services/backend"
	"slotbook/services/backend/fakebackend"
	"slotbook/services/cache"

	"github.com/alicebob/miniredis/v2"
	ical "github.com/arran4/golang-ical"
	"github.com/go-redis/redis/v8"
)

const sharableID = "11111111-1111-4111-8111-111111111111"

var (
	host = models.User{ID: "1", Email: "host@x.com", Name: "Host", UserID: "user-1", SharableID: sharableID}
	// Wednesday, January 17 2024.
	now = time.Date(2024, time.January, 17, 12, 0, 0, 0, time.UTC)
)

func slotAt(id string, day, hour int) models.Slot {
	start := time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
	return models.Slot{
		ID:        id,
		StartTime: start.Format(time.RFC3339),
		EndTime:   start.Add(30 * time.Minute).Format(time.RFC3339),
		Date:      start.Format("2006-01-02"),
	}
}

type fixture struct {
	mr      *miniredis.Miniredis
	fake    *fakebackend.Fake
	svc     *DefaultCalendarService
	hostCtx context.Context
	view    View
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	fake := fakebackend.New()
	fake.AddHost(host, "secret1")
	fake.SetWeek(sharableID, 0, []models.DaySlots{
		{DayID: 1, Slots: []models.Slot{slotAt("M1", 15, 9)}},
		{DayID: 3, Slots: []models.Slot{slotAt("W1", 17, 14), slotAt("W2", 17, 15)}},
		{DayID: 4, Slots: []models.Slot{slotAt("T1", 18, 9), slotAt("T2", 18, 10)}},
	})
	login, err := fake.Login(context.Background(), models.LoginRequest{Email: host.Email, Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	return fixture{
		mr:      mr,
		fake:    fake,
		svc:     NewCalendarService(fake, cache.NewQueryCache(client), time.Minute, 100),
		hostCtx: backend.WithCookies(context.Background(), login.Cookies),
		view:    View{Location: time.UTC, Now: func() time.Time { return now }},
	}
}

func (f fixture) book(t *testing.T, slotID string) models.Appointment {
	t.Helper()
	a, err := f.fake.CreateAppointment(context.Background(), models.CreateAppointmentRequest{
		SharableID: sharableID, SlotID: slotID, Name: "Pat", Email: "p@x.com", Reason: "checkup",
		Guests: []string{"g1@x.com"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return *a
}

func TestWeekPublicViewHidesAppointments(t *testing.T) {
	f := newFixture(t)
	f.book(t, "W1")

	grid, err := f.svc.Week(context.Background(), sharableID, 0, f.view)
	if err != nil {
		t.Fatal(err)
	}
	wed := grid.Days[2]
	if wed.DayID != 3 || len(wed.Slots) != 2 {
		t.Fatalf("wednesday = %+v", wed)
	}
	if !wed.Slots[0].IsBooked || wed.Slots[0].Appointment != nil {
		t.Fatalf("visitor sees %+v", wed.Slots[0])
	}
	if f.fake.Calls("Appointments") != 0 {
		t.Fatal("public view fetched the appointment list")
	}
}

func TestWeekHostViewMergesAppointments(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, "T2")

	view := f.view
	view.Host = true
	grid, err := f.svc.Week(f.hostCtx, sharableID, 0, view)
	if err != nil {
		t.Fatal(err)
	}
	thu := grid.Days[3]
	if thu.Slots[1].Appointment == nil || thu.Slots[1].Appointment.ID != a.ID {
		t.Fatalf("thursday = %+v", thu)
	}
	if !grid.Days[0].IsPast || grid.Days[3].IsPast {
		t.Fatal("past flags wrong")
	}
}

func TestWeekIsCachedUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Week(ctx, sharableID, 0, f.view); err != nil {
			t.Fatal(err)
		}
	}
	if n := f.fake.Calls("AvailableSlots"); n != 1 {
		t.Fatalf("AvailableSlots called %d times", n)
	}
	if err := f.svc.Cache.InvalidateScope(ctx, cache.ScopeAppointments); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Week(ctx, sharableID, 0, f.view); err != nil {
		t.Fatal(err)
	}
	if n := f.fake.Calls("AvailableSlots"); n != 2 {
		t.Fatalf("AvailableSlots called %d times after invalidation", n)
	}
}

func TestWeekFetchFailure(t *testing.T) {
	f := newFixture(t)
	f.fake.FailNext("AvailableSlots", &apierr.TransportFailure{Status: http.StatusBadGateway})
	_, err := f.svc.Week(context.Background(), sharableID, 0, f.view)
	if !errors.Is(err, ErrSlotsUnavailable) {
		t.Fatalf("err = %v", err)
	}
	// Failures are not cached; the next read goes to the backend again.
	if _, err := f.svc.Week(context.Background(), sharableID, 0, f.view); err != nil {
		t.Fatal(err)
	}
}

func TestWeekHostListFailure(t *testing.T) {
	f := newFixture(t)
	f.fake.FailNext("Appointments", &apierr.TransportFailure{Status: http.StatusInternalServerError})
	view := f.view
	view.Host = true
	if _, err := f.svc.Week(f.hostCtx, sharableID, 0, view); !errors.Is(err, ErrAppointmentsUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestAppointmentsDefaults(t *testing.T) {
	f := newFixture(t)
	f.book(t, "W1")
	res, err := f.svc.Appointments(f.hostCtx, models.AppointmentQuery{SharableID: sharableID})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Appointments) != 1 || res.Pagination.Page != 1 || res.Pagination.Limit != 10 {
		t.Fatalf("res = %+v", res)
	}
}

func TestRescheduleOptions(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, "T1")

	opts, err := f.svc.RescheduleOptions(f.hostCtx, a, sharableID, nil, f.view)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Days) != 5 || !opts.Days[0].Disabled || opts.Days[2].Disabled {
		t.Fatalf("days = %+v", opts.Days)
	}
	if len(opts.Slots) != 0 {
		t.Fatal("no day selected, no slots")
	}
	if !opts.Start.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) || opts.End.Day() != 21 {
		t.Fatalf("week = %s .. %s", opts.Start, opts.End)
	}
	if opts.Days[2].Label != "Wednesday, January 17, 2024" {
		t.Fatalf("label = %q", opts.Days[2].Label)
	}

	thursday := 4
	opts, err = f.svc.RescheduleOptions(f.hostCtx, a, sharableID, &thursday, f.view)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.Slots) != 2 || opts.Slots[0].ID != "T1" {
		t.Fatalf("slots = %+v", opts.Slots)
	}

	monday := 1
	if _, err := f.svc.RescheduleOptions(f.hostCtx, a, sharableID, &monday, f.view); !errors.Is(err, ErrDayUnavailable) {
		t.Fatalf("past day err = %v", err)
	}
	sunday := 0
	if _, err := f.svc.RescheduleOptions(f.hostCtx, a, sharableID, &sunday, f.view); !errors.Is(err, ErrDayUnavailable) {
		t.Fatalf("weekend err = %v", err)
	}
}

func TestExportWeek(t *testing.T) {
	f := newFixture(t)
	a := f.book(t, "W2")

	out, err := f.svc.ExportWeek(f.hostCtx, sharableID, 0, f.view)
	if err != nil {
		t.Fatal(err)
	}
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("export does not parse: %v\n%s", err, out)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	uid := events[0].GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value != a.ID+"@slotbook" {
		t.Fatalf("uid = %+v", uid)
	}
	if !strings.Contains(out, "mailto:g1@x.com") || !strings.Contains(out, "Appointment with Pat") {
		t.Fatalf("export missing details:\n%s", out)
	}
}
