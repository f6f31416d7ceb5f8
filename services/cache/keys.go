package cache

import (
	"fmt"
	"strings"

	"slotbook/models"
)

// Scopes group keys that are invalidated together.
const (
	ScopeAppointments = "appointments"
	ScopeAuth         = "auth"
)

const generationPrefix = "generation:"

// AvailableSlotsKey caches one week of a host's availability.
func AvailableSlotsKey(sharableID string, weekOffset int) string {
	return fmt.Sprintf("%s:availableSlots:%s:%d", ScopeAppointments, sharableID, weekOffset)
}

// AppointmentsKey caches one page of a host's appointment list.
func AppointmentsKey(sharableID string, t models.AppointmentType, page, limit int) string {
	return fmt.Sprintf("%s:list:%s:%s:%d:%d", ScopeAppointments, sharableID, t, page, limit)
}

// CurrentUserKey caches the backend identity behind a session.
func CurrentUserKey(sessionID string) string {
	return fmt.Sprintf("%s:currentUser:%s", ScopeAuth, sessionID)
}

// LockKey names the in-flight guard of one mutation.
func LockKey(action, target string) string {
	return fmt.Sprintf("mutation:%s:%s", action, target)
}

func scopeOf(key string) string {
	scope, _, _ := strings.Cut(key, ":")
	return scope
}

func generationKey(scope string) string {
	return generationPrefix + scope
}
