package parser

import (
	"fmt"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

// Warning flags a suspicious but accepted value in parsed output.
type Warning struct {
	CourseID string `json:"courseId"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// Validate checks parsed courses against the model's expectations. Nothing is
// rejected: unit and evaluation weights are not required to add up to 100
// and grades outside 1.0–7.0 are kept, only reported.
func Validate(courses []models.Course) []Warning {
	var warnings []Warning
	for _, course := range courses {
		add := func(path, format string, args ...interface{}) {
			warnings = append(warnings, Warning{CourseID: course.ID, Path: path, Message: fmt.Sprintf(format, args...)})
		}
		if len(course.Unidades) == 0 {
			add(course.Nombre, "no units detected")
		}
		unitTotal := 0
		for _, unit := range course.Unidades {
			unitPath := course.Nombre + "/" + unit.Nombre
			unitTotal += unit.Peso
			if unit.Peso < 0 || unit.Peso > 100 {
				add(unitPath, "unit weight %d outside 0-100", unit.Peso)
			}
			evalTotal := 0
			for _, ev := range unit.Evaluaciones {
				evPath := unitPath + "/" + ev.Nombre
				evalTotal += ev.Peso
				if ev.Peso < 0 || ev.Peso > 100 {
					add(evPath, "evaluation weight %d outside 0-100", ev.Peso)
				}
				if ev.Nota != nil && (*ev.Nota < 1.0 || *ev.Nota > 7.0) {
					add(evPath, "grade %.1f outside 1.0-7.0", *ev.Nota)
				}
			}
			if len(unit.Evaluaciones) > 0 && evalTotal != 100 {
				add(unitPath, "evaluation weights add up to %d", evalTotal)
			}
		}
		if len(course.Unidades) > 0 && unitTotal != 100 {
			add(course.Nombre, "unit weights add up to %d", unitTotal)
		}
	}
	return warnings
}
