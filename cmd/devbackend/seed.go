package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"slotbook/models"
	"slotbook/services/backend/fakebackend"
	"slotbook/services/schedule"
)

// Demo host credentials printed on startup.
const (
	demoEmail      = "demo@slotbook.dev"
	demoPassword   = "password"
	demoSharableID = "5f0c1a2e-3b4d-4e6f-8a9b-0c1d2e3f4a5b"
)

var demoHost = models.User{
	ID:         "demo",
	Email:      demoEmail,
	Name:       "Demo Host",
	UserID:     "user-demo",
	SharableID: demoSharableID,
	Timezone:   "+00:00",
}

// seedOptions shapes the generated availability.
type seedOptions struct {
	Weeks     []int // week offsets to fill
	FirstHour int
	LastHour  int
	Step      time.Duration
	// BookedRatio is the share of slots reported as taken by someone else.
	BookedRatio float64
}

func defaultSeedOptions() seedOptions {
	return seedOptions{
		Weeks:       []int{-1, 0, 1, 2},
		FirstHour:   9,
		LastHour:    17,
		Step:        30 * time.Minute,
		BookedRatio: 0.2,
	}
}

// seed registers the demo host and fills working days of each week with
// slots, marking a random share of them booked.
func seed(fake *fakebackend.Fake, cal *schedule.Calendar, rng *rand.Rand, opts seedOptions) int {
	fake.AddHost(demoHost, demoPassword)
	if opts.Step <= 0 {
		opts.Step = 30 * time.Minute
	}

	total := 0
	for _, offset := range opts.Weeks {
		var days []models.DaySlots
		for _, day := range schedule.WorkingDays {
			date, err := cal.DateForDay(day.ID, offset)
			if err != nil {
				continue
			}
			var slots []models.Slot
			end := date.Add(time.Duration(opts.LastHour) * time.Hour)
			for start := date.Add(time.Duration(opts.FirstHour) * time.Hour); start.Before(end); start = start.Add(opts.Step) {
				slots = append(slots, models.Slot{
					ID:        fmt.Sprintf("w%d-d%d-%s", offset, day.ID, start.Format("1504")),
					StartTime: start.UTC().Format(time.RFC3339),
					EndTime:   start.Add(opts.Step).UTC().Format(time.RFC3339),
					Date:      date.Format("2006-01-02"),
					IsBooked:  rng.Float64() < opts.BookedRatio,
				})
			}
			total += len(slots)
			days = append(days, models.DaySlots{DayID: day.ID, Slots: slots})
		}
		fake.SetWeek(demoSharableID, offset, days)
	}
	return total
}
