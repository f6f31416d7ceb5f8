package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDayID is returned for day identifiers outside 0..6.
var ErrInvalidDayID = errors.New("day id must be between 0 (Sunday) and 6 (Saturday)")

// Day names a backend day identifier.
type Day struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// WorkingDays are the days the reschedule picker offers.
var WorkingDays = []Day{
	{ID: 1, Name: "Monday"},
	{ID: 2, Name: "Tuesday"},
	{ID: 3, Name: "Wednesday"},
	{ID: 4, Name: "Thursday"},
	{ID: 5, Name: "Friday"},
}

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// Calendar does week arithmetic relative to "now" in one location.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar returns a Calendar for loc. A nil clock means time.Now.
func NewCalendar(loc *time.Location, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

// Location is the calendar's timezone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Today is local midnight of the current day.
func (c *Calendar) Today() time.Time {
	n := c.now().In(c.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, c.loc)
}

// WeekStart returns local midnight of startDay in the week offset weeks away
// from the current one.
func (c *Calendar) WeekStart(offset int, startDay time.Weekday) time.Time {
	today := c.Today()
	diff := int(today.Weekday()) - ((int(startDay)%7 + 7) % 7)
	if diff < 0 {
		diff += 7
	}
	return time.Date(today.Year(), today.Month(), today.Day()-diff+offset*7, 0, 0, 0, 0, c.loc)
}

// WeekEnd is six days after WeekStart, at 23:59:59.999.
func (c *Calendar) WeekEnd(offset int, startDay time.Weekday) time.Time {
	s := c.WeekStart(offset, startDay)
	return time.Date(s.Year(), s.Month(), s.Day()+6, 23, 59, 59, int(999*time.Millisecond), c.loc)
}

// CurrentWeekRange is the Monday-first week containing today.
func (c *Calendar) CurrentWeekRange() (time.Time, time.Time) {
	return c.WeekStart(0, time.Monday), c.WeekEnd(0, time.Monday)
}

// DisplayIndex maps a backend day id onto the Monday-first column order:
// Monday(1) -> 0 ... Saturday(6) -> 5, Sunday(0) -> 6.
func DisplayIndex(dayID int) (int, error) {
	if dayID < 0 || dayID > 6 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDayID, dayID)
	}
	if dayID == 0 {
		return 6, nil
	}
	return dayID - 1, nil
}

// DayIDForIndex is the inverse of DisplayIndex.
func DayIDForIndex(index int) (int, error) {
	if index < 0 || index > 6 {
		return 0, fmt.Errorf("display index must be between 0 and 6, got %d", index)
	}
	return (index + 1) % 7, nil
}

// DateForDay returns the calendar date of dayID within the Monday-first week
// at offset.
func (c *Calendar) DateForDay(dayID, offset int) (time.Time, error) {
	idx, err := DisplayIndex(dayID)
	if err != nil {
		return time.Time{}, err
	}
	start := c.WeekStart(offset, time.Monday)
	return time.Date(start.Year(), start.Month(), start.Day()+idx, 0, 0, 0, 0, c.loc), nil
}

// IsDayInPast reports whether dayID of the current week is before today.
// Only the current week is considered.
func (c *Calendar) IsDayInPast(dayID int) (bool, error) {
	d, err := c.DateForDay(dayID, 0)
	if err != nil {
		return false, err
	}
	return d.Before(c.Today()), nil
}

// FormatWeekRange renders the Monday-first week at offset, e.g.
// "Jan 15 - Jan 21, 2024".
func (c *Calendar) FormatWeekRange(offset int) string {
	start := c.WeekStart(offset, time.Monday)
	end := c.WeekEnd(offset, time.Monday)
	return start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006")
}

// FormatTime renders an ISO instant as local wall time, e.g. "9:30 AM".
func (c *Calendar) FormatTime(iso string) (string, error) {
	t, err := parseInstant(iso)
	if err != nil {
		return "", err
	}
	return t.In(c.loc).Format("3:04 PM"), nil
}

// FormatTimeRange renders "9:00 AM - 9:30 AM".
func (c *Calendar) FormatTimeRange(startISO, endISO string) (string, error) {
	start, err := c.FormatTime(startISO)
	if err != nil {
		return "", err
	}
	end, err := c.FormatTime(endISO)
	if err != nil {
		return "", err
	}
	return start + " - " + end, nil
}

// FormatLocalDate renders "Monday, January 15, 2024".
func (c *Calendar) FormatLocalDate(iso string) (string, error) {
	t, err := parseInstant(iso)
	if err != nil {
		return "", err
	}
	return t.In(c.loc).Format("Monday, January 2, 2006"), nil
}

// FormatShortDate renders "Jan 15".
func (c *Calendar) FormatShortDate(iso string) (string, error) {
	t, err := parseInstant(iso)
	if err != nil {
		return "", err
	}
	return t.In(c.loc).Format("Jan 2"), nil
}

// IsPast reports whether the instant is before now.
func (c *Calendar) IsPast(iso string) (bool, error) {
	t, err := parseInstant(iso)
	if err != nil {
		return false, err
	}
	return t.Before(c.now()), nil
}

// TimezoneOffset formats t's UTC offset as the backend expects, e.g. "+05:30".
func TimezoneOffset(t time.Time) string {
	_, secs := t.Zone()
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d", sign, secs/3600, (secs%3600)/60)
}

// ParseLocation accepts "+HH:MM" offsets, IANA names, or "" (UTC).
func ParseLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	if m := offsetPattern.FindStringSubmatch(tz); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		secs := hours*3600 + minutes*60
		if m[1] == "-" {
			secs = -secs
		}
		return time.FixedZone("UTC"+tz, secs), nil
	}
	return time.LoadLocation(tz)
}

func parseInstant(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
