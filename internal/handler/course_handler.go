package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/internal/middleware"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/pkg/response"
)

type courseService interface {
	Preview(req dto.ParseRequest) (*dto.ParseResponse, error)
	Import(ctx context.Context, userID string, req dto.ImportCoursesRequest) (*dto.ParseResponse, error)
	List(ctx context.Context, userID string) ([]models.Course, bool, error)
	Get(ctx context.Context, userID, courseID string) (*models.Course, error)
	Create(ctx context.Context, userID string, req dto.CreateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, userID, courseID string) error
	Edit(ctx context.Context, userID, courseID string, req dto.EditCourseRequest) (*models.Course, error)
	UpdateGrade(ctx context.Context, userID, courseID, unitID, evaluationID string, nota *float64) (*models.Course, error)
	AddUnit(ctx context.Context, userID, courseID string, req dto.UnitRequest) (*models.Course, error)
	RemoveUnit(ctx context.Context, userID, courseID, unitID string) (*models.Course, error)
	AddEvaluation(ctx context.Context, userID, courseID, unitID string, req dto.EvaluationRequest) (*models.Course, error)
	RemoveEvaluation(ctx context.Context, userID, courseID, unitID, evaluationID string) (*models.Course, error)
}

// CourseHandler exposes parsing and course tree endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// Parse godoc
// @Summary Parse pasted course text without saving
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.ParseRequest true "Pasted text"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /parse [post]
func (h *CourseHandler) Parse(c *gin.Context) {
	var req dto.ParseRequest
	if !bindJSON(c, &req, "invalid parse payload") {
		return
	}
	res, err := h.service.Preview(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Import godoc
// @Summary Import courses from pasted text
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.ImportCoursesRequest true "Pasted text and target semester"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/import [post]
func (h *CourseHandler) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ImportCoursesRequest
	if !bindJSON(c, &req, "invalid import payload") {
		return
	}
	res, err := h.service.Import(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// List godoc
// @Summary List courses with computed statistics
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	courses, hit, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, courses, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create a course manually
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course tree"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req, "invalid course payload") {
		return
	}
	course, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Get godoc
// @Summary Get a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	course, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Edit godoc
// @Summary Edit one field of a course, unit or evaluation
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.EditCourseRequest true "Field edit"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [patch]
func (h *CourseHandler) Edit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.EditCourseRequest
	if !bindJSON(c, &req, "invalid edit payload") {
		return
	}
	course, err := h.service.Edit(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateGrade godoc
// @Summary Set or clear an evaluation grade
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Param evalId path string true "Evaluation ID"
// @Param payload body dto.UpdateGradeRequest true "Grade, null clears it"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/units/{unitId}/evaluations/{evalId}/grade [put]
func (h *CourseHandler) UpdateGrade(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UpdateGradeRequest
	if !bindJSON(c, &req, "invalid grade payload") {
		return
	}
	course, err := h.service.UpdateGrade(c.Request.Context(), userID, c.Param("id"), c.Param("unitId"), c.Param("evalId"), req.Nota)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// AddUnit godoc
// @Summary Append a unit to a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.UnitRequest true "Unit"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/units [post]
func (h *CourseHandler) AddUnit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.UnitRequest
	if !bindJSON(c, &req, "invalid unit payload") {
		return
	}
	course, err := h.service.AddUnit(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// RemoveUnit godoc
// @Summary Remove a unit
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/units/{unitId} [delete]
func (h *CourseHandler) RemoveUnit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	course, err := h.service.RemoveUnit(c.Request.Context(), userID, c.Param("id"), c.Param("unitId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// AddEvaluation godoc
// @Summary Append an evaluation to a unit
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Param payload body dto.EvaluationRequest true "Evaluation"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/units/{unitId}/evaluations [post]
func (h *CourseHandler) AddEvaluation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.EvaluationRequest
	if !bindJSON(c, &req, "invalid evaluation payload") {
		return
	}
	course, err := h.service.AddEvaluation(c.Request.Context(), userID, c.Param("id"), c.Param("unitId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// RemoveEvaluation godoc
// @Summary Remove an evaluation
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param unitId path string true "Unit ID"
// @Param evalId path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/units/{unitId}/evaluations/{evalId} [delete]
func (h *CourseHandler) RemoveEvaluation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	course, err := h.service.RemoveEvaluation(c.Request.Context(), userID, c.Param("id"), c.Param("unitId"), c.Param("evalId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}
