package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/internal/parser"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

// CourseService manages a user's courses: import from pasted text, manual
// entry, edits and reads with computed statistics.
type CourseService struct {
	records   recordWriter
	validator *validator.Validate
	cacheTTL  time.Duration
	newID     func() string
}

// NewCourseService constructs the service.
func NewCourseService(store RecordStore, cache *CacheService, metrics *MetricsService, engine grading.Engine, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{
		records:   newRecordWriter(store, cache, metrics, engine, logger),
		validator: validate,
		cacheTTL:  cacheTTL,
		newID:     uuid.NewString,
	}
}

// Preview parses text and computes statistics without saving anything.
func (s *CourseService) Preview(req dto.ParseRequest) (*dto.ParseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	courses := parser.Parse(req.Text)
	family := parser.Detect(req.Text)
	if len(courses) == 0 {
		return nil, appErrors.ErrNoCoursesDetected
	}
	return &dto.ParseResponse{
		Family:   family,
		Courses:  s.records.engine.ComputeAll(courses),
		Warnings: nonNilWarnings(parser.Validate(courses)),
	}, nil
}

// Import parses pasted text and appends the detected courses to the user's
// record, optionally under a target semester.
func (s *CourseService) Import(ctx context.Context, userID string, req dto.ImportCoursesRequest) (*dto.ParseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	courses := parser.Parse(req.Text)
	family := parser.Detect(req.Text)
	s.records.metrics.RecordImport(family, len(courses))
	if len(courses) == 0 {
		s.records.logger.Info("import detected no courses", zap.String("user_id", userID), zap.Int("length", len(req.Text)))
		return nil, appErrors.ErrNoCoursesDetected
	}

	semester := trimmedLabel(req.Semestre)
	for i := range courses {
		if semester != nil {
			courses[i].Semestre = models.StringPtr(*semester)
		}
	}
	warnings := parser.Validate(courses)
	if len(warnings) > 0 {
		s.records.logger.Info("imported courses carry warnings", zap.String("user_id", userID), zap.Int("warnings", len(warnings)))
	}

	record, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		record.Ramos = append(record.Ramos, courses...)
		if semester != nil {
			record.SemestresVacios = record.SemestresVacios.Without(*semester)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	imported := record.Ramos[len(record.Ramos)-len(courses):]
	s.records.logger.Info("courses imported",
		zap.String("user_id", userID), zap.String("family", string(family)), zap.Int("courses", len(courses)))
	return &dto.ParseResponse{Family: family, Courses: imported, Warnings: nonNilWarnings(warnings)}, nil
}

// List returns every course with fresh statistics. The boolean reports a cache hit.
func (s *CourseService) List(ctx context.Context, userID string) ([]models.Course, bool, error) {
	var cached []models.Course
	if s.records.cache.Get(ctx, CoursesCacheKey(userID), &cached) {
		return cached, true, nil
	}
	record, err := s.records.load(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	s.records.compute(record)
	courses := []models.Course(record.Ramos)
	if courses == nil {
		courses = []models.Course{}
	}
	s.records.cache.Set(ctx, CoursesCacheKey(userID), courses, s.cacheTTL)
	return courses, false, nil
}

// Get returns one course with fresh statistics.
func (s *CourseService) Get(ctx context.Context, userID, courseID string) (*models.Course, error) {
	record, err := s.records.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := record.FindCourse(courseID)
	if idx < 0 {
		return nil, courseNotFound(courseID)
	}
	course := s.records.engine.Compute(record.Ramos[idx])
	return &course, nil
}

// Create stores a manually entered course.
func (s *CourseService) Create(ctx context.Context, userID string, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	course := models.Course{
		ID:       s.newID(),
		Nombre:   strings.TrimSpace(req.Nombre),
		Semestre: trimmedLabel(req.Semestre),
		Unidades: make([]models.Unit, 0, len(req.Unidades)),
	}
	for _, unitReq := range req.Unidades {
		course.Unidades = append(course.Unidades, s.buildUnit(unitReq))
	}

	record, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		record.Ramos = append(record.Ramos, course)
		if course.Semestre != nil {
			record.SemestresVacios = record.SemestresVacios.Without(*course.Semestre)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record.Ramos[len(record.Ramos)-1], nil
}

// Delete removes a course and its color assignment.
func (s *CourseService) Delete(ctx context.Context, userID, courseID string) error {
	_, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		idx := record.FindCourse(courseID)
		if idx < 0 {
			return courseNotFound(courseID)
		}
		record.Ramos = append(record.Ramos[:idx], record.Ramos[idx+1:]...)
		delete(record.RamoColors, courseID)
		return nil
	})
	return err
}

// Edit applies a single field edit anywhere in the course tree.
func (s *CourseService) Edit(ctx context.Context, userID, courseID string, req dto.EditCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	edit := grading.Edit{UnitID: req.UnitID, EvaluationID: req.EvaluationID, Field: req.Field, Value: req.Value}
	return s.mutateCourse(ctx, userID, courseID, func(record *models.UserRecord, course models.Course) (models.Course, error) {
		out, err := grading.ApplyEdit(course, edit)
		if err != nil {
			return course, translateEditError(err, edit.Field)
		}
		if edit.UnitID == "" && edit.Field == grading.FieldSemestre && out.Semestre != nil {
			record.SemestresVacios = record.SemestresVacios.Without(*out.Semestre)
		}
		return out, nil
	})
}

// UpdateGrade sets or clears the grade of one evaluation.
func (s *CourseService) UpdateGrade(ctx context.Context, userID, courseID, unitID, evaluationID string, nota *float64) (*models.Course, error) {
	var value interface{}
	if nota != nil {
		value = *nota
	}
	return s.Edit(ctx, userID, courseID, dto.EditCourseRequest{
		UnitID: unitID, EvaluationID: evaluationID, Field: grading.FieldNota, Value: value,
	})
}

// AddUnit appends a unit to a course.
func (s *CourseService) AddUnit(ctx context.Context, userID, courseID string, req dto.UnitRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	unit := s.buildUnit(req)
	return s.mutateCourse(ctx, userID, courseID, func(_ *models.UserRecord, course models.Course) (models.Course, error) {
		return grading.AddUnit(course, unit), nil
	})
}

// RemoveUnit drops a unit and its evaluations.
func (s *CourseService) RemoveUnit(ctx context.Context, userID, courseID, unitID string) (*models.Course, error) {
	return s.mutateCourse(ctx, userID, courseID, func(_ *models.UserRecord, course models.Course) (models.Course, error) {
		out, err := grading.RemoveUnit(course, unitID)
		if err != nil {
			return course, translateEditError(err, "")
		}
		return out, nil
	})
}

// AddEvaluation appends an evaluation to a unit.
func (s *CourseService) AddEvaluation(ctx context.Context, userID, courseID, unitID string, req dto.EvaluationRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	ev := s.buildEvaluation(req)
	return s.mutateCourse(ctx, userID, courseID, func(_ *models.UserRecord, course models.Course) (models.Course, error) {
		out, err := grading.AddEvaluation(course, unitID, ev)
		if err != nil {
			return course, translateEditError(err, "")
		}
		return out, nil
	})
}

// RemoveEvaluation drops an evaluation from a unit.
func (s *CourseService) RemoveEvaluation(ctx context.Context, userID, courseID, unitID, evaluationID string) (*models.Course, error) {
	return s.mutateCourse(ctx, userID, courseID, func(_ *models.UserRecord, course models.Course) (models.Course, error) {
		out, err := grading.RemoveEvaluation(course, unitID, evaluationID)
		if err != nil {
			return course, translateEditError(err, "")
		}
		return out, nil
	})
}

func (s *CourseService) mutateCourse(ctx context.Context, userID, courseID string, change func(*models.UserRecord, models.Course) (models.Course, error)) (*models.Course, error) {
	var idx int
	record, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		idx = record.FindCourse(courseID)
		if idx < 0 {
			return courseNotFound(courseID)
		}
		out, err := change(record, record.Ramos[idx])
		if err != nil {
			return err
		}
		record.Ramos[idx] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.records.metrics.RecordGradeEdit()
	return &record.Ramos[idx], nil
}

func (s *CourseService) buildUnit(req dto.UnitRequest) models.Unit {
	unit := models.Unit{
		ID:           s.newID(),
		Nombre:       strings.TrimSpace(req.Nombre),
		Peso:         req.Peso,
		Evaluaciones: make([]models.Evaluation, 0, len(req.Evaluaciones)),
	}
	for _, evReq := range req.Evaluaciones {
		unit.Evaluaciones = append(unit.Evaluaciones, s.buildEvaluation(evReq))
	}
	return unit
}

func (s *CourseService) buildEvaluation(req dto.EvaluationRequest) models.Evaluation {
	ev := models.Evaluation{
		ID:     s.newID(),
		Nombre: strings.TrimSpace(req.Nombre),
		Fecha:  strings.TrimSpace(req.Fecha),
		Peso:   req.Peso,
	}
	if ev.Nombre == "" {
		ev.Nombre = "Evaluación"
	}
	if ev.Fecha == "" {
		ev.Fecha = models.NoDate
	}
	if req.Nota != nil {
		ev.Nota = models.Float64Ptr(*req.Nota)
	}
	return ev
}

func translateEditError(err error, field string) error {
	switch {
	case errors.Is(err, grading.ErrUnitNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "unit not found")
	case errors.Is(err, grading.ErrEvaluationNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
	case errors.Is(err, grading.ErrInvalidValue) && strings.EqualFold(field, grading.FieldNota):
		return appErrors.Wrap(err, appErrors.ErrInvalidGrade.Code, appErrors.ErrInvalidGrade.Status, appErrors.ErrInvalidGrade.Message)
	case errors.Is(err, grading.ErrInvalidValue) && strings.EqualFold(field, grading.FieldPeso):
		return appErrors.Wrap(err, appErrors.ErrInvalidWeight.Code, appErrors.ErrInvalidWeight.Status, appErrors.ErrInvalidWeight.Message)
	case errors.Is(err, grading.ErrInvalidValue), errors.Is(err, grading.ErrUnknownField):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to edit course")
	}
}

func trimmedLabel(label *string) *string {
	if label == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*label)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func nonNilWarnings(warnings []parser.Warning) []parser.Warning {
	if warnings == nil {
		return []parser.Warning{}
	}
	return warnings
}
