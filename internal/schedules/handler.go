// Package schedules serves the class timetable.
package schedules

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gtn-college/attendance-backend/internal/models"
	"github.com/gtn-college/attendance-backend/pkg/response"
)

// Finder reads one weekday's timetable.
type Finder interface {
	FindByDay(ctx context.Context, day string) (*models.DaySchedule, error)
}

// TodayResponse is the body of GET /schedule-today. Schedule is null on days without classes.
type TodayResponse struct {
	Success  bool                `json:"success"`
	Today    string              `json:"today"`
	Schedule *models.DaySchedule `json:"schedule"`
}

// Handler handles timetable endpoints.
type Handler struct {
	finder Finder
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewHandler creates a schedules handler. The weekday is taken in loc.
func NewHandler(finder Finder, loc *time.Location, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Handler{finder: finder, loc: loc, now: time.Now, logger: logger}
}

// Today handles GET /schedule-today.
func (h *Handler) Today(c *gin.Context) {
	today := h.now().In(h.loc).Weekday().String()
	resp := TodayResponse{Success: true, Today: today}
	if !models.IsClassDay(today) {
		c.JSON(http.StatusOK, resp)
		return
	}
	sched, err := h.finder.FindByDay(c.Request.Context(), today)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		h.logger.Error("fetch today schedule failed", zap.String("day", today), zap.Error(err))
		response.Internal(c, "Failed to fetch today schedule")
		return
	default:
		resp.Schedule = sched
	}
	c.JSON(http.StatusOK, resp)
}

// Day handles GET /schedule/:day. The day name is case-insensitive.
func (h *Handler) Day(c *gin.Context) {
	day := normalizeDay(c.Param("day"))
	if !models.IsClassDay(day) {
		response.BadRequest(c, "day must be Monday to Saturday")
		return
	}
	sched, err := h.finder.FindByDay(c.Request.Context(), day)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "No schedule for "+day)
		return
	}
	if err != nil {
		h.logger.Error("fetch schedule failed", zap.String("day", day), zap.Error(err))
		response.Internal(c, "Failed to fetch schedule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schedule": sched})
}

func normalizeDay(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
