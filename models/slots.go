package models

import "time"

// Slot is a fixed-duration bookable window reported by the backend.
type Slot struct {
	ID        string `json:"_id" binding:"required"`
	StartTime string `json:"startTime" binding:"required"` // ISO-8601, UTC
	EndTime   string `json:"endTime" binding:"required"`   // ISO-8601, UTC
	Date      string `json:"date" binding:"required"`
	IsBooked  bool   `json:"isBooked"`
}

// StartAt parses StartTime.
func (s Slot) StartAt() (time.Time, error) {
	return parseInstant(s.StartTime)
}

// EndAt parses EndTime.
func (s Slot) EndAt() (time.Time, error) {
	return parseInstant(s.EndTime)
}

// DaySlots groups the slots of one day. DayID follows the backend convention
// (0 = Sunday .. 6 = Saturday).
type DaySlots struct {
	DayID int    `json:"dayId" binding:"min=0,max=6"`
	Slots []Slot `json:"slots" binding:"dive"`
}

func parseInstant(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.000Z", v)
}
