package schedule

import (
	"sync"

	"slotbook/models"
)

// AppointmentMap indexes appointments by the slot they occupy. It is derived
// from an appointment list and rebuilt whenever that list changes.
type AppointmentMap map[string]models.Appointment

// NewAppointmentMap indexes list by slot id. Later entries win.
func NewAppointmentMap(list []models.Appointment) AppointmentMap {
	m := make(AppointmentMap, len(list))
	for _, a := range list {
		m[a.SlotID] = a
	}
	return m
}

// Lookup returns the appointment bound to slotID.
func (m AppointmentMap) Lookup(slotID string) (models.Appointment, bool) {
	a, ok := m[slotID]
	return a, ok
}

// MergeWithIndex returns day id -> slots where each slot is booked if the
// server says so or an appointment in index occupies it. A nil days slice
// (availability not loaded) yields an empty map.
func MergeWithIndex(days []models.DaySlots, index AppointmentMap) map[int][]models.Slot {
	merged := make(map[int][]models.Slot, len(days))
	for _, day := range days {
		out := make([]models.Slot, len(day.Slots))
		for i, slot := range day.Slots {
			slot.IsBooked = !IsSlotAvailable(slot, index)
			out[i] = slot
		}
		merged[day.DayID] = out
	}
	return merged
}

// IsSlotAvailable reports a slot nobody holds.
func IsSlotAvailable(slot models.Slot, index AppointmentMap) bool {
	_, taken := index[slot.ID]
	return !slot.IsBooked && !taken
}

// Discrepancy is a slot the local appointment list books while the server
// still reports it free.
type Discrepancy struct {
	DayID         int    `json:"dayId"`
	SlotID        string `json:"slotId"`
	AppointmentID string `json:"appointmentId"`
}

// Discrepancies lists every slot where the two booking signals disagree in
// that direction. The merge still ORs them; this is for logging.
func Discrepancies(days []models.DaySlots, index AppointmentMap) []Discrepancy {
	var out []Discrepancy
	for _, day := range days {
		for _, slot := range day.Slots {
			if slot.IsBooked {
				continue
			}
			if a, ok := index[slot.ID]; ok {
				out = append(out, Discrepancy{DayID: day.DayID, SlotID: slot.ID, AppointmentID: a.ID})
			}
		}
	}
	return out
}

// RescheduleCandidates lists the slots of dayID that appointment may move to:
// free slots plus the one it already holds.
func RescheduleCandidates(days []models.DaySlots, dayID int, appointment models.Appointment) []models.Slot {
	for _, day := range days {
		if day.DayID != dayID {
			continue
		}
		out := make([]models.Slot, 0, len(day.Slots))
		for _, slot := range day.Slots {
			if !slot.IsBooked || slot.ID == appointment.SlotID {
				out = append(out, slot)
			}
		}
		return out
	}
	return []models.Slot{}
}

const maxMemoEntries = 1024

type memoEntry struct {
	version int64
	index   AppointmentMap
}

// IndexMemo caches AppointmentMaps per key and version. A new version
// replaces the entry outright.
type IndexMemo struct {
	mu      sync.Mutex
	entries map[string]memoEntry
}

// NewIndexMemo returns an empty memo.
func NewIndexMemo() *IndexMemo {
	return &IndexMemo{entries: make(map[string]memoEntry)}
}

// Get returns the index for key at version, building it from list when the
// stored version differs.
func (m *IndexMemo) Get(key string, version int64, list []models.Appointment) AppointmentMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok && e.version == version {
		return e.index
	}
	if len(m.entries) >= maxMemoEntries {
		m.entries = make(map[string]memoEntry)
	}
	idx := NewAppointmentMap(list)
	m.entries[key] = memoEntry{version: version, index: idx}
	return idx
}
