// Package parser turns text copied from the university intranet grade tables
// into course trees.
//
// The source pages have no API; a pasted HTML table collapses into lines with
// inconsistent spacing and concatenated numeric columns, so the parser works
// from lexical anchors (marker words, date tokens) rather than column splits.
// It never fails: lines it does not understand are skipped and an
// unrecognised layout produces an empty result.
package parser

import (
	"strings"

	"github.com/google/uuid"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

// Family identifies one of the supported table layouts.
type Family string

const (
	FamilyNone Family = "none"
	// FamilyA tables announce an "Area" row under the course name and group
	// evaluations into EXIGIBLE / NO EXIGIBLE units.
	FamilyA Family = "A"
	// FamilyB tables follow the course name with a "Tipo / Calidad / Fecha de
	// Prueba" column header and have no unit rows.
	FamilyB Family = "B"
)

type state int

const (
	stateSeekingCourse state = iota
	stateFamilyA
	stateFamilyB
)

// machine holds the forward-only parse state.
type machine struct {
	state   state
	courses []*models.Course
	course  *models.Course
	unit    *models.Unit
	newID   func() string
}

// Parse extracts every recognisable course from raw text.
func Parse(raw string) []models.Course {
	return parseWith(raw, uuid.NewString)
}

func parseWith(raw string, newID func() string) []models.Course {
	m := &machine{state: stateSeekingCourse, newID: newID}
	lines := splitLines(raw)

	for i, line := range lines {
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		if family := headerFamily(line, next); family != FamilyNone {
			m.openCourse(line, family)
			continue
		}
		switch m.state {
		case stateFamilyA:
			m.stepFamilyA(line)
		case stateFamilyB:
			m.stepFamilyB(line)
		}
	}
	return m.result()
}

// Detect reports the layout family of the first course header in raw.
func Detect(raw string) Family {
	lines := splitLines(raw)
	for i := 0; i+1 < len(lines); i++ {
		family := headerFamily(lines[i], lines[i+1])
		if family == FamilyNone {
			continue
		}
		if plausibleCourseName(cleanCourseName(lines[i])) {
			return family
		}
	}
	return FamilyNone
}

// headerFamily decides from the lookahead line whether line names a course.
func headerFamily(line, next string) Family {
	if next == "" {
		return FamilyNone
	}
	if strings.Contains(line, markerFamilyA) || strings.Contains(line, headerVeto) {
		return FamilyNone
	}
	if strings.Contains(next, markerFamilyA) {
		return FamilyA
	}
	if containsAll(next, markersFamilyB) && !strings.Contains(line, "Tipo") {
		return FamilyB
	}
	return FamilyNone
}

// openCourse starts a new course. A rejected header is still consumed.
func (m *machine) openCourse(line string, family Family) {
	name := cleanCourseName(line)
	if !plausibleCourseName(name) {
		return
	}
	course := &models.Course{ID: m.newID(), Nombre: name, Unidades: []models.Unit{}}
	m.courses = append(m.courses, course)
	m.course = course
	m.unit = nil

	if family == FamilyB {
		m.state = stateFamilyB
		m.addUnit(defaultUnitName, 100)
		return
	}
	m.state = stateFamilyA
}

func (m *machine) addUnit(name string, weight int) {
	m.course.Unidades = append(m.course.Unidades, models.Unit{
		ID:           m.newID(),
		Nombre:       name,
		Peso:         weight,
		Evaluaciones: []models.Evaluation{},
	})
	m.unit = &m.course.Unidades[len(m.course.Unidades)-1]
}

func (m *machine) addEvaluation(ev models.Evaluation) {
	ev.ID = m.newID()
	m.unit.Evaluaciones = append(m.unit.Evaluaciones, ev)
}

func (m *machine) stepFamilyA(line string) {
	if m.course == nil {
		return
	}
	if isUnitLine(line) {
		if name, weight, ok := parseUnitLine(line); ok {
			m.addUnit(name, weight)
		}
		return
	}
	if m.unit != nil && isEvaluationLineA(line) {
		m.addEvaluation(parseEvaluationA(line))
	}
}

func (m *machine) stepFamilyB(line string) {
	if m.unit == nil || !isEvaluationLineB(line) {
		return
	}
	if ev, ok := parseEvaluationB(line); ok {
		m.addEvaluation(ev)
	}
}

func (m *machine) result() []models.Course {
	out := make([]models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		out = append(out, *course)
	}
	return out
}
