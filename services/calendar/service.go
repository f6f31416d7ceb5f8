// Package calendar serves the read side: the merged week grid, appointment
// lists, reschedule options and calendar exports.
package calendar

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"slotbook/models"
	"slotbook/services/backend"
	"slotbook/services/cache"
	"slotbook/services/schedule"
	"slotbook/utils"

	"go.uber.org/zap"
)

// View says who is looking at a calendar.
type View struct {
	// Host is set when the owner of the calendar is signed in. Only hosts
	// see appointment details.
	Host     bool
	Location *time.Location
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (v View) calendar() *schedule.Calendar {
	return schedule.NewCalendar(v.Location, v.Now)
}

// CalendarService is the read surface used by handlers.
type CalendarService interface {
	Week(ctx context.Context, sharableID string, offset int, view View) (*schedule.WeekGrid, error)
	Appointments(ctx context.Context, q models.AppointmentQuery) (*models.AppointmentsResponse, error)
	RescheduleOptions(ctx context.Context, appt models.Appointment, sharableID string, dayID *int, view View) (*RescheduleOptions, error)
	ExportWeek(ctx context.Context, sharableID string, offset int, view View) (string, error)
}

// DefaultCalendarService implements CalendarService.
type DefaultCalendarService struct {
	Backend  backend.API
	Cache    *cache.QueryCache
	Memo     *schedule.IndexMemo
	QueryTTL time.Duration
	// PageSize is how many upcoming appointments the host grid merges.
	PageSize int
}

// NewCalendarService wires a DefaultCalendarService.
func NewCalendarService(api backend.API, qc *cache.QueryCache, ttl time.Duration, pageSize int) *DefaultCalendarService {
	return &DefaultCalendarService{
		Backend:  api,
		Cache:    qc,
		Memo:     schedule.NewIndexMemo(),
		QueryTTL: ttl,
		PageSize: pageSize,
	}
}

func (s *DefaultCalendarService) availableSlots(ctx context.Context, sharableID string, offset int) ([]models.DaySlots, error) {
	days, err := cache.Fetch(ctx, s.Cache, cache.AvailableSlotsKey(sharableID, offset), s.QueryTTL,
		func(ctx context.Context) ([]models.DaySlots, error) {
			return s.Backend.AvailableSlots(ctx, sharableID, offset)
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSlotsUnavailable, err)
	}
	return days, nil
}

// Appointments returns one page of the host's appointments.
func (s *DefaultCalendarService) Appointments(ctx context.Context, q models.AppointmentQuery) (*models.AppointmentsResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if !q.Type.Valid() {
		q.Type = models.AppointmentsFuture
	}
	res, err := cache.Fetch(ctx, s.Cache, cache.AppointmentsKey(q.SharableID, q.Type, q.Page, q.Limit), s.QueryTTL,
		func(ctx context.Context) (*models.AppointmentsResponse, error) {
			return s.Backend.Appointments(ctx, q)
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAppointmentsUnavailable, err)
	}
	return res, nil
}

// hostIndex returns the slot index of the host's upcoming appointments. The
// index is rebuilt whenever the appointments scope is invalidated or the
// fetched list differs from the one it was built from.
func (s *DefaultCalendarService) hostIndex(ctx context.Context, sharableID string) (schedule.AppointmentMap, error) {
	gen := s.Cache.Generation(ctx, cache.ScopeAppointments)
	res, err := s.Appointments(ctx, models.AppointmentQuery{
		SharableID: sharableID,
		Type:       models.AppointmentsFuture,
		Page:       1,
		Limit:      s.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return s.Memo.Get(sharableID, listVersion(gen, res.Appointments), res.Appointments), nil
}

func listVersion(gen int64, list []models.Appointment) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", gen)
	for _, a := range list {
		fmt.Fprintf(h, "|%s:%s:%s", a.ID, a.SlotID, a.UpdatedAt)
	}
	return int64(h.Sum64())
}

// Week builds the week grid at offset. Visitors get availability only;
// hosts also get their appointments merged in.
func (s *DefaultCalendarService) Week(ctx context.Context, sharableID string, offset int, view View) (*schedule.WeekGrid, error) {
	days, err := s.availableSlots(ctx, sharableID, offset)
	if err != nil {
		return nil, err
	}

	index := schedule.AppointmentMap{}
	if view.Host {
		if index, err = s.hostIndex(ctx, sharableID); err != nil {
			return nil, err
		}
	}

	grid := view.calendar().BuildWeekGrid(offset, days, index)
	for _, d := range grid.Discrepancies {
		utils.GetLogger().Warn("Slot booked locally but free on the server",
			zap.String("sharableId", sharableID),
			zap.Int("weekOffset", offset),
			zap.Int("dayId", d.DayID),
			zap.String("slotId", d.SlotID),
			zap.String("appointmentId", d.AppointmentID))
	}
	return &grid, nil
}

// DayOption is one selectable day of the reschedule picker.
type DayOption struct {
	schedule.Day
	Date string `json:"date"`
	// Label is the long local date, e.g. "Monday, January 15, 2024".
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// RescheduleOptions lists the days of the current week an appointment may
// move to and, when a day is selected, the slots of that day.
type RescheduleOptions struct {
	Range         string        `json:"range"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	CurrentSlotID string        `json:"currentSlotId"`
	Days          []DayOption   `json:"days"`
	SelectedDay   *int          `json:"selectedDay,omitempty"`
	Slots         []models.Slot `json:"slots"`
}

// RescheduleOptions computes the picker for appt. Only working days of the
// current week are offered, and days already past are disabled.
func (s *DefaultCalendarService) RescheduleOptions(ctx context.Context, appt models.Appointment, sharableID string, dayID *int, view View) (*RescheduleOptions, error) {
	cal := view.calendar()
	start, end := cal.CurrentWeekRange()
	out := &RescheduleOptions{
		Range:         cal.FormatWeekRange(0),
		Start:         start,
		End:           end,
		CurrentSlotID: appt.SlotID,
		Days:          make([]DayOption, 0, len(schedule.WorkingDays)),
		Slots:         []models.Slot{},
	}
	selectable := false
	for _, d := range schedule.WorkingDays {
		date, _ := cal.DateForDay(d.ID, 0)
		past, _ := cal.IsDayInPast(d.ID)
		label, _ := cal.FormatLocalDate(date.Format(time.RFC3339))
		out.Days = append(out.Days, DayOption{Day: d, Date: date.Format("2006-01-02"), Label: label, Disabled: past})
		if dayID != nil && *dayID == d.ID && !past {
			selectable = true
		}
	}
	if dayID == nil {
		return out, nil
	}
	if !selectable {
		return nil, fmt.Errorf("%w: %s", ErrDayUnavailable, strconv.Itoa(*dayID))
	}

	days, err := s.availableSlots(ctx, sharableID, 0)
	if err != nil {
		return nil, err
	}
	out.SelectedDay = dayID
	out.Slots = schedule.RescheduleCandidates(days, *dayID, appt)
	return out, nil
}
