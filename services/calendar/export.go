package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slotbook/models"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//slotbook//week export//EN"

// ExportWeek renders the host's appointments in the week at offset as an
// iCalendar document.
func (s *DefaultCalendarService) ExportWeek(ctx context.Context, sharableID string, offset int, view View) (string, error) {
	view.Host = true
	grid, err := s.Week(ctx, sharableID, offset, view)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Appointments " + grid.Range)

	stamp := time.Now().UTC()
	if view.Now != nil {
		stamp = view.Now().UTC()
	}
	for _, day := range grid.Days {
		for _, slot := range day.Slots {
			if slot.Appointment == nil {
				continue
			}
			if err := addEvent(cal, *slot.Appointment, stamp); err != nil {
				return "", err
			}
		}
	}
	return cal.Serialize(), nil
}

func addEvent(cal *ical.Calendar, a models.Appointment, stamp time.Time) error {
	start, err := a.Slot.StartAt()
	if err != nil {
		return fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	end, err := a.Slot.EndAt()
	if err != nil {
		return fmt.Errorf("appointment %s: %w", a.ID, err)
	}

	event := cal.AddEvent(a.ID + "@slotbook")
	event.SetDtStampTime(stamp)
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary("Appointment with " + a.Name)
	event.SetStatus(ical.ObjectStatusConfirmed)

	var desc []string
	if a.Reason != "" {
		desc = append(desc, a.Reason)
	}
	if a.Phone != "" {
		desc = append(desc, "Phone: "+a.Phone)
	}
	if len(desc) > 0 {
		event.SetDescription(strings.Join(desc, "\n"))
	}
	event.AddAttendee("mailto:" + a.Email)
	for _, g := range a.Guests {
		event.AddAttendee("mailto:" + g)
	}
	return nil
}
