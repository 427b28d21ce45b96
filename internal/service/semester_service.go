package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/1Bnja/PonderacionesPersonales/internal/dto"
	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

// SemesterService manages semester folders. A semester exists while it has
// courses or is listed as an empty folder.
type SemesterService struct {
	records   recordWriter
	validator *validator.Validate
}

// NewSemesterService constructs the service.
func NewSemesterService(store RecordStore, cache *CacheService, metrics *MetricsService, engine grading.Engine, validate *validator.Validate, logger *zap.Logger) *SemesterService {
	if validate == nil {
		validate = validator.New()
	}
	return &SemesterService{records: newRecordWriter(store, cache, metrics, engine, logger), validator: validate}
}

// List groups courses by semester, newest label first, including empty folders.
func (s *SemesterService) List(ctx context.Context, userID string) ([]models.SemesterSummary, error) {
	record, err := s.records.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.records.compute(record)
	return summarize(record), nil
}

// CreateEmpty adds an empty semester folder.
func (s *SemesterService) CreateEmpty(ctx context.Context, userID string, req dto.CreateSemesterRequest) (*models.SemesterSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	name := strings.TrimSpace(req.Nombre)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester name required")
	}
	_, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		if semesterExists(record, name) {
			return appErrors.Clone(appErrors.ErrConflict, "semester "+name+" already exists")
		}
		record.SemestresVacios = append(record.SemestresVacios, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.SemesterSummary{Nombre: name, Ramos: []models.Course{}, PorEstado: map[models.CourseStatus]int{}}, nil
}

// Rename moves every course, the folder and its color to a new label.
func (s *SemesterService) Rename(ctx context.Context, userID, name string, req dto.RenameSemesterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	target := strings.TrimSpace(req.Nombre)
	if target == "" {
		return appErrors.Clone(appErrors.ErrValidation, "semester name required")
	}
	if target == name {
		return nil
	}
	_, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		if !semesterExists(record, name) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester "+name+" not found")
		}
		if semesterExists(record, target) {
			return appErrors.Clone(appErrors.ErrConflict, "semester "+target+" already exists")
		}
		for i := range record.Ramos {
			if record.Ramos[i].SemesterLabel() == name {
				record.Ramos[i].Semestre = models.StringPtr(target)
			}
		}
		if record.SemestresVacios.Contains(name) {
			record.SemestresVacios = append(record.SemestresVacios.Without(name), target)
		}
		if color, ok := record.SemestreColors[name]; ok {
			delete(record.SemestreColors, name)
			record.SemestreColors[target] = color
		}
		return nil
	})
	return err
}

// Delete removes the semester together with all of its courses.
func (s *SemesterService) Delete(ctx context.Context, userID, name string) error {
	_, err := s.records.update(ctx, userID, func(record *models.UserRecord) error {
		if !semesterExists(record, name) {
			return appErrors.Clone(appErrors.ErrNotFound, "semester "+name+" not found")
		}
		kept := record.Ramos[:0]
		for _, course := range record.Ramos {
			if course.SemesterLabel() == name {
				delete(record.RamoColors, course.ID)
				continue
			}
			kept = append(kept, course)
		}
		record.Ramos = kept
		record.SemestresVacios = record.SemestresVacios.Without(name)
		delete(record.SemestreColors, name)
		return nil
	})
	return err
}

func semesterExists(record *models.UserRecord, name string) bool {
	if record.SemestresVacios.Contains(name) {
		return true
	}
	for _, course := range record.Ramos {
		if course.SemesterLabel() == name {
			return true
		}
	}
	return false
}

// summarize expects statistics to be computed already.
func summarize(record *models.UserRecord) []models.SemesterSummary {
	groups := make(map[string][]models.Course)
	for _, course := range record.Ramos {
		label := course.SemesterLabel()
		groups[label] = append(groups[label], course)
	}
	for _, label := range record.SemestresVacios {
		if _, ok := groups[label]; !ok {
			groups[label] = nil
		}
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(labels)))

	out := make([]models.SemesterSummary, 0, len(labels))
	for _, label := range labels {
		courses := groups[label]
		summary := models.SemesterSummary{
			Nombre:    label,
			Color:     record.SemestreColors[label],
			Ramos:     make([]models.Course, 0, len(courses)),
			PorEstado: map[models.CourseStatus]int{},
		}
		var total float64
		for _, course := range courses {
			summary.Ramos = append(summary.Ramos, course)
			if course.Estadisticas != nil {
				total += course.Estadisticas.PromedioActual
				summary.PorEstado[course.Estadisticas.Estado]++
			}
		}
		if len(courses) > 0 {
			avg := math.Round(total/float64(len(courses))*10) / 10
			summary.PromedioGeneral = &avg
		}
		out = append(out, summary)
	}
	return out
}
