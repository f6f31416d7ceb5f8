package schedule

import (
	"time"

	"slotbook/models"
)

// GridSlot is a merged slot plus, for hosts, the appointment holding it.
type GridSlot struct {
	models.Slot
	// TimeRange is the slot's wall-clock span in the viewer's location.
	TimeRange   string              `json:"timeRange"`
	Available   bool                `json:"available"`
	IsPast      bool                `json:"isPast"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

// DayColumn is one day of the week grid.
type DayColumn struct {
	DayID  int        `json:"dayId"`
	Name   string     `json:"name"`
	Date   string     `json:"date"`
	Label  string     `json:"label"`
	IsPast bool       `json:"isPast"`
	Slots  []GridSlot `json:"slots"`
}

// WeekGrid is the Monday-first week view.
type WeekGrid struct {
	WeekOffset    int           `json:"weekOffset"`
	Range         string        `json:"range"`
	UTCOffset     string        `json:"utcOffset"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Days          []DayColumn   `json:"days"`
	Discrepancies []Discrepancy `json:"discrepancies,omitempty"`
}

// BuildWeekGrid lays the merged slots out Monday..Sunday. Days missing from
// days render empty. Past-day flags are computed for the current week only.
func (c *Calendar) BuildWeekGrid(offset int, days []models.DaySlots, index AppointmentMap) WeekGrid {
	merged := MergeWithIndex(days, index)
	grid := WeekGrid{
		WeekOffset:    offset,
		Range:         c.FormatWeekRange(offset),
		UTCOffset:     TimezoneOffset(c.WeekStart(offset, time.Monday)),
		Start:         c.WeekStart(offset, time.Monday),
		End:           c.WeekEnd(offset, time.Monday),
		Days:          make([]DayColumn, 0, 7),
		Discrepancies: Discrepancies(days, index),
	}
	for i := 0; i < 7; i++ {
		dayID, _ := DayIDForIndex(i)
		date, _ := c.DateForDay(dayID, offset)
		col := DayColumn{
			DayID: dayID,
			Name:  time.Weekday(dayID).String(),
			Date:  date.Format("2006-01-02"),
			Slots: []GridSlot{},
		}
		col.Label, _ = c.FormatShortDate(date.Format(time.RFC3339))
		if offset == 0 {
			col.IsPast, _ = c.IsDayInPast(dayID)
		}
		for _, slot := range merged[dayID] {
			gs := GridSlot{Slot: slot, Available: IsSlotAvailable(slot, index)}
			gs.TimeRange, _ = c.FormatTimeRange(slot.StartTime, slot.EndTime)
			gs.IsPast, _ = c.IsPast(slot.StartTime)
			if a, ok := index.Lookup(slot.ID); ok {
				a := a
				gs.Appointment = &a
			}
			col.Slots = append(col.Slots, gs)
		}
		grid.Days = append(grid.Days, col)
	}
	return grid
}
