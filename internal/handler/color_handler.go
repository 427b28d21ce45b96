package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/pkg/response"
)

type colorService interface {
	SetCourseColor(ctx context.Context, userID, courseID string, req dto.ColorRequest) error
	SetSemesterColor(ctx context.Context, userID, name string, req dto.ColorRequest) error
}

// ColorHandler assigns palette colors.
type ColorHandler struct {
	service colorService
	palette []string
}

// NewColorHandler constructs the handler.
func NewColorHandler(service colorService, palette []string) *ColorHandler {
	return &ColorHandler{service: service, palette: palette}
}

// Palette godoc
// @Summary Available color names
// @Tags Colors
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /colors [get]
func (h *ColorHandler) Palette(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.palette)
}

// SetCourseColor godoc
// @Summary Set a course color
// @Tags Colors
// @Accept json
// @Param id path string true "Course ID"
// @Param payload body dto.ColorRequest true "Palette color"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/color [put]
func (h *ColorHandler) SetCourseColor(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ColorRequest
	if !bindJSON(c, &req, "invalid color payload") {
		return
	}
	if err := h.service.SetCourseColor(c.Request.Context(), userID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetSemesterColor godoc
// @Summary Set a semester color
// @Tags Colors
// @Accept json
// @Param name path string true "Semester name"
// @Param payload body dto.ColorRequest true "Palette color"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /semesters/{name}/color [put]
func (h *ColorHandler) SetSemesterColor(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ColorRequest
	if !bindJSON(c, &req, "invalid color payload") {
		return
	}
	if err := h.service.SetSemesterColor(c.Request.Context(), userID, c.Param("name"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
