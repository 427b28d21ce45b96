package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/pkg/response"
)

type semesterService interface {
	List(ctx context.Context, userID string) ([]models.SemesterSummary, error)
	CreateEmpty(ctx context.Context, userID string, req dto.CreateSemesterRequest) (*models.SemesterSummary, error)
	Rename(ctx context.Context, userID, name string, req dto.RenameSemesterRequest) error
	Delete(ctx context.Context, userID, name string) error
}

// SemesterHandler exposes semester folder endpoints.
type SemesterHandler struct {
	service semesterService
}

// NewSemesterHandler constructs the handler.
func NewSemesterHandler(service semesterService) *SemesterHandler {
	return &SemesterHandler{service: service}
}

// List godoc
// @Summary Semester folders with their courses and averages
// @Description Newest first. Courses without a semester are grouped under "Otros".
// @Tags Semesters
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /semesters [get]
func (h *SemesterHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	summaries, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries)
}

// Create godoc
// @Summary Create an empty semester folder
// @Tags Semesters
// @Accept json
// @Produce json
// @Param payload body dto.CreateSemesterRequest true "Semester name"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /semesters [post]
func (h *SemesterHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateSemesterRequest
	if !bindJSON(c, &req, "invalid semester payload") {
		return
	}
	summary, err := h.service.CreateEmpty(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, summary)
}

// Rename godoc
// @Summary Rename a semester
// @Tags Semesters
// @Accept json
// @Param name path string true "Current semester name"
// @Param payload body dto.RenameSemesterRequest true "New name"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /semesters/{name} [put]
func (h *SemesterHandler) Rename(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.RenameSemesterRequest
	if !bindJSON(c, &req, "invalid semester payload") {
		return
	}
	if err := h.service.Rename(c.Request.Context(), userID, c.Param("name"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a semester and every course in it
// @Tags Semesters
// @Param name path string true "Semester name"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /semesters/{name} [delete]
func (h *SemesterHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
