package grading

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

var (
	ErrUnitNotFound       = errors.New("unit not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidValue       = errors.New("invalid value")
)

// Editable fields per level of the course tree.
const (
	FieldNombre   = "nombre"
	FieldSemestre = "semestre"
	FieldPeso     = "peso"
	FieldFecha    = "fecha"
	FieldNota     = "nota"
)

// Edit addresses one field of a course, unit or evaluation. The level is
// implied by which IDs are set. Value carries decoded JSON: string, float64 or nil.
type Edit struct {
	UnitID       string
	EvaluationID string
	Field        string
	Value        interface{}
}

// ApplyEdit returns a copy of course with the edit applied. Statistics in the
// result are stale until ComputeStatistics runs again.
func ApplyEdit(course models.Course, edit Edit) (models.Course, error) {
	out := course.Clone()
	field := strings.ToLower(strings.TrimSpace(edit.Field))

	if edit.UnitID == "" {
		if edit.EvaluationID != "" {
			return course, fmt.Errorf("%w: evaluation edits need a unit", ErrUnitNotFound)
		}
		if err := editCourse(&out, field, edit.Value); err != nil {
			return course, err
		}
		return out, nil
	}

	ui := out.FindUnit(edit.UnitID)
	if ui < 0 {
		return course, ErrUnitNotFound
	}
	unit := &out.Unidades[ui]
	if edit.EvaluationID == "" {
		if err := editUnit(unit, field, edit.Value); err != nil {
			return course, err
		}
		return out, nil
	}

	ei := unit.FindEvaluation(edit.EvaluationID)
	if ei < 0 {
		return course, ErrEvaluationNotFound
	}
	if err := editEvaluation(&unit.Evaluaciones[ei], field, edit.Value); err != nil {
		return course, err
	}
	return out, nil
}

func editCourse(course *models.Course, field string, value interface{}) error {
	switch field {
	case FieldNombre:
		name, err := requiredString(value)
		if err != nil {
			return err
		}
		course.Nombre = name
	case FieldSemestre:
		sem, err := optionalString(value)
		if err != nil {
			return err
		}
		course.Semestre = sem
	default:
		return fmt.Errorf("%w: course %q", ErrUnknownField, field)
	}
	return nil
}

func editUnit(unit *models.Unit, field string, value interface{}) error {
	switch field {
	case FieldNombre:
		name, err := requiredString(value)
		if err != nil {
			return err
		}
		unit.Nombre = name
	case FieldPeso:
		weight, err := weightValue(value)
		if err != nil {
			return err
		}
		unit.Peso = weight
	default:
		return fmt.Errorf("%w: unit %q", ErrUnknownField, field)
	}
	return nil
}

func editEvaluation(ev *models.Evaluation, field string, value interface{}) error {
	switch field {
	case FieldNombre:
		name, err := optionalString(value)
		if err != nil {
			return err
		}
		ev.Nombre = ""
		if name != nil {
			ev.Nombre = *name
		}
	case FieldFecha:
		date, err := optionalString(value)
		if err != nil {
			return err
		}
		ev.Fecha = models.NoDate
		if date != nil {
			ev.Fecha = *date
		}
	case FieldPeso:
		weight, err := weightValue(value)
		if err != nil {
			return err
		}
		ev.Peso = weight
	case FieldNota:
		grade, err := GradeValue(value)
		if err != nil {
			return err
		}
		ev.Nota = grade
	default:
		return fmt.Errorf("%w: evaluation %q", ErrUnknownField, field)
	}
	return nil
}

// AddUnit appends a unit to a copy of course.
func AddUnit(course models.Course, unit models.Unit) models.Course {
	out := course.Clone()
	if unit.Evaluaciones == nil {
		unit.Evaluaciones = []models.Evaluation{}
	}
	out.Unidades = append(out.Unidades, unit.Clone())
	return out
}

// RemoveUnit drops a unit and its evaluations.
func RemoveUnit(course models.Course, unitID string) (models.Course, error) {
	ui := course.FindUnit(unitID)
	if ui < 0 {
		return course, ErrUnitNotFound
	}
	out := course.Clone()
	out.Unidades = append(out.Unidades[:ui], out.Unidades[ui+1:]...)
	return out, nil
}

// AddEvaluation appends an evaluation to the given unit.
func AddEvaluation(course models.Course, unitID string, ev models.Evaluation) (models.Course, error) {
	ui := course.FindUnit(unitID)
	if ui < 0 {
		return course, ErrUnitNotFound
	}
	out := course.Clone()
	out.Unidades[ui].Evaluaciones = append(out.Unidades[ui].Evaluaciones, ev.Clone())
	return out, nil
}

// RemoveEvaluation drops an evaluation from the given unit.
func RemoveEvaluation(course models.Course, unitID, evaluationID string) (models.Course, error) {
	ui := course.FindUnit(unitID)
	if ui < 0 {
		return course, ErrUnitNotFound
	}
	ei := course.Unidades[ui].FindEvaluation(evaluationID)
	if ei < 0 {
		return course, ErrEvaluationNotFound
	}
	out := course.Clone()
	evals := out.Unidades[ui].Evaluaciones
	out.Unidades[ui].Evaluaciones = append(evals[:ei], evals[ei+1:]...)
	return out, nil
}

// GradeValue decodes an optional grade. nil and "" clear the grade; numbers
// must fall within MinGrade and MaxGrade.
func GradeValue(value interface{}) (*float64, error) {
	var grade float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		grade = v
	case int:
		grade = float64(v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: grade %q", ErrInvalidValue, v)
		}
		grade = parsed
	default:
		return nil, fmt.Errorf("%w: grade of type %T", ErrInvalidValue, value)
	}
	if math.IsNaN(grade) || grade < MinGrade || grade > MaxGrade {
		return nil, fmt.Errorf("%w: grade must be between %.1f and %.1f", ErrInvalidValue, MinGrade, MaxGrade)
	}
	return &grade, nil
}

func weightValue(value interface{}) (int, error) {
	var weight float64
	switch v := value.(type) {
	case float64:
		weight = v
	case int:
		weight = float64(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: weight %q", ErrInvalidValue, v)
		}
		weight = float64(parsed)
	default:
		return 0, fmt.Errorf("%w: weight of type %T", ErrInvalidValue, value)
	}
	if weight != math.Trunc(weight) || weight < 0 || weight > 100 {
		return 0, fmt.Errorf("%w: weight must be an integer between 0 and 100", ErrInvalidValue)
	}
	return int(weight), nil
}

func requiredString(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: non-empty text required", ErrInvalidValue)
	}
	return strings.TrimSpace(s), nil
}

func optionalString(value interface{}) (*string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		return &trimmed, nil
	default:
		return nil, fmt.Errorf("%w: text of type %T", ErrInvalidValue, value)
	}
}
