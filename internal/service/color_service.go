package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

// DefaultColor is shown for courses without an assignment.
const DefaultColor = "Azul"

// Palette lists the color names the client knows how to render.
var Palette = []string{
	"Azul", "Celeste", "Lavanda", "Rosa", "Coral", "Melocotón",
	"Verde", "Menta", "Turquesa", "Lila", "Amarillo", "Gris",
}

// InPalette reports whether name is a known color.
func InPalette(name string) bool {
	for _, color := range Palette {
		if color == name {
			return true
		}
	}
	return false
}

// ColorService assigns palette colors to courses and semesters.
type ColorService struct {
	records   recordWriter
	validator *validator.Validate
}

// NewColorService constructs the service and registers the palette validation.
func NewColorService(store RecordStore, cache *CacheService, metrics *MetricsService, engine grading.Engine, validate *validator.Validate, logger *zap.Logger) *ColorService {
	if validate == nil {
		validate = validator.New()
	}
	svc := &ColorService{records: newRecordWriter(store, cache, metrics, engine, logger), validator: validate}
	_ = svc.validator.RegisterValidation("palette", func(fl validator.FieldLevel) bool {
		return InPalette(fl.Field().String())
	})
	return svc
}

// SetCourseColor assigns a color to a course.
func (s *ColorService) SetCourseColor(ctx context.Context, userID, courseID string, req dto.ColorRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}
	_, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		if record.FindCourse(courseID) < 0 {
			return courseNotFound(courseID)
		}
		record.RamoColors[courseID] = req.Color
		return nil
	})
	return err
}

// SetSemesterColor assigns a color to a semester folder.
func (s *ColorService) SetSemesterColor(ctx context.Context, userID, name string, req dto.ColorRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}
	_, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		if !semesterExists(record, name) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester "+name+" not found")
		}
		record.SemestreColors[name] = req.Color
		return nil
	})
	return err
}

func (s *ColorService) validate(req dto.ColorRequest) error {
	if err := s.validator.Struct(req); err != nil {
		if !InPalette(req.Color) && req.Color != "" {
			return appErrors.Wrap(err, appErrors.ErrInvalidColor.Code, appErrors.ErrInvalidColor.Status, appErrors.ErrInvalidColor.Message)
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return nil
}
