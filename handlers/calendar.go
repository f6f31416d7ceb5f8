package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"slotbook/config"
	"slotbook/middleware"
	"slotbook/services/calendar"
	"slotbook/services/schedule"
	"slotbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CalendarHandler serves week grids and calendar exports.
type CalendarHandler struct {
	Calendar calendar.CalendarService
	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(svc calendar.CalendarService) *CalendarHandler {
	return &CalendarHandler{Calendar: svc}
}

// view decides who is looking at sharableID. The signed-in owner gets the
// host view in their own timezone; everyone else gets availability in the
// `tz` query timezone or the configured default.
func (h *CalendarHandler) view(c *gin.Context, sharableID string) calendar.View {
	v := calendar.View{Now: h.Now}
	if sess := middleware.CurrentSession(c); sess != nil && sess.User.SharableID == sharableID {
		v.Host = true
		v.Location = sess.Location()
		return v
	}
	tz := c.Query("tz")
	if tz == "" {
		tz = config.AppConfig.DefaultTimezone
	}
	loc, err := schedule.ParseLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	v.Location = loc
	return v
}

func sharableIDParam(c *gin.Context) (string, bool) {
	id := c.Param("sharableId")
	if _, err := uuid.Parse(id); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid calendar link", "")
		return "", false
	}
	return id, true
}

func weekOffsetQuery(c *gin.Context) (int, bool) {
	raw := c.Query("weekOffset")
	if raw == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid week offset", err.Error())
		return 0, false
	}
	return offset, true
}

// Week returns the week grid of a calendar.
func (h *CalendarHandler) Week(c *gin.Context) {
	sharableID, ok := sharableIDParam(c)
	if !ok {
		return
	}
	offset, ok := weekOffsetQuery(c)
	if !ok {
		return
	}
	view := h.view(c, sharableID)
	grid, err := h.Calendar.Week(c.Request.Context(), sharableID, offset, view)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"host": view.Host, "timezone": view.Location.String(), "week": grid})
}

// ExportWeek downloads the host's appointments of one week as iCalendar.
func (h *CalendarHandler) ExportWeek(c *gin.Context) {
	sess := requireSession(c)
	if sess == nil {
		return
	}
	sharableID, ok := sharableIDParam(c)
	if !ok {
		return
	}
	if sess.User.SharableID != sharableID {
		utils.JSONError(c, http.StatusForbidden, "You can only export your own calendar", "")
		return
	}
	offset, ok := weekOffsetQuery(c)
	if !ok {
		return
	}
	body, err := h.Calendar.ExportWeek(c.Request.Context(), sharableID, offset, h.view(c, sharableID))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.RequestLogger(c).Info("Week exported", zap.String("sharableId", sharableID), zap.Int("weekOffset", offset))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="week-%d.ics"`, offset))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
