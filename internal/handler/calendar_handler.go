package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
	"github.com/1Bnja/PonderacionesPersonales/pkg/response"
)

type calendarService interface {
	Upcoming(ctx context.Context, userID string, now time.Time, limit int) ([]models.ScheduledEvaluation, error)
	Overdue(ctx context.Context, userID string, now time.Time, limit int) ([]models.ScheduledEvaluation, error)
}

// CalendarHandler exposes the upcoming and overdue evaluation widgets.
type CalendarHandler struct {
	service  calendarService
	location *time.Location
	now      func() time.Time
}

// NewCalendarHandler constructs the handler. Dates are compared in loc,
// which defaults to UTC.
func NewCalendarHandler(service calendarService, loc *time.Location) *CalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{service: service, location: loc, now: time.Now}
}

// Upcoming godoc
// @Summary Evaluations dated today or later
// @Tags Calendar
// @Produce json
// @Param limit query int false "Maximum items (default 5)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar/upcoming [get]
func (h *CalendarHandler) Upcoming(c *gin.Context) {
	h.serve(c, h.service.Upcoming)
}

// Overdue godoc
// @Summary Ungraded evaluations whose date already passed
// @Tags Calendar
// @Produce json
// @Param limit query int false "Maximum items (default 3)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar/overdue [get]
func (h *CalendarHandler) Overdue(c *gin.Context) {
	h.serve(c, h.service.Overdue)
}

func (h *CalendarHandler) serve(c *gin.Context, list func(context.Context, string, time.Time, int) ([]models.ScheduledEvaluation, error)) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}
	items, err := list(c.Request.Context(), userID, h.now().In(h.location), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}
