// Package grading computes weighted averages and pass projections for course trees.
package grading

import (
	"math"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

const (
	// DefaultThreshold is the minimum passing course average.
	DefaultThreshold = 4.0
	// MinGrade and MaxGrade bound the grading scale.
	MinGrade = 1.0
	MaxGrade = 7.0
	// CriticalGrade is the needed grade above which a course is flagged critical.
	CriticalGrade = 6.0
)

// Engine applies a fixed passing threshold.
type Engine struct {
	threshold float64
}

// NewEngine builds an engine; a non-positive threshold falls back to DefaultThreshold.
func NewEngine(threshold float64) Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Engine{threshold: threshold}
}

// Threshold returns the passing threshold in use.
func (e Engine) Threshold() float64 {
	if e.threshold <= 0 {
		return DefaultThreshold
	}
	return e.threshold
}

// Compute is ComputeStatistics with the engine threshold.
func (e Engine) Compute(course models.Course) models.Course {
	return ComputeStatistics(course, e.Threshold())
}

// ComputeAll recomputes every course.
func (e Engine) ComputeAll(courses []models.Course) []models.Course {
	out := make([]models.Course, len(courses))
	for i, course := range courses {
		out[i] = e.Compute(course)
	}
	return out
}

// ComputeStatistics returns a copy of course with unit averages, progress and
// course statistics filled in. The input is not modified.
//
// Averages are accumulated points, not means of the graded work: an ungraded
// evaluation contributes 0, so a unit graded 5.0 on half its weight shows 2.5.
// The same rule applies at course level, which keeps the projection
// "points still needed over remaining weight" consistent.
func ComputeStatistics(course models.Course, threshold float64) models.Course {
	out := course.Clone()

	var courseAcc, courseEvaluated float64
	for i := range out.Unidades {
		unit := &out.Unidades[i]
		unitAcc, unitEvaluated := accumulateUnit(*unit)

		unit.PromedioActual = round(unitAcc, 2)
		unit.Progreso = unitEvaluated

		if unitEvaluated > 0 {
			courseAcc += unitAcc * (float64(unit.Peso) / 100)
			courseEvaluated += (float64(unitEvaluated) / 100) * float64(unit.Peso)
		}
	}

	need, status := Project(courseAcc, courseEvaluated, threshold)
	out.Estadisticas = &models.Statistics{
		PromedioActual: round(courseAcc, 1),
		PesoEvaluado:   round(courseEvaluated, 2),
		NotaNecesaria:  need,
		Estado:         status,
	}
	return out
}

func accumulateUnit(unit models.Unit) (acc float64, evaluated int) {
	for _, ev := range unit.Evaluaciones {
		if !ev.Graded() {
			continue
		}
		acc += *ev.Nota * (float64(ev.Peso) / 100)
		evaluated += ev.Peso
	}
	return acc, evaluated
}

// Project derives the grade needed on the remaining weight and the course status.
// The status is decided on the unrounded need; only the returned value is
// rounded to one decimal.
func Project(accumulated, evaluatedWeight, threshold float64) (float64, models.CourseStatus) {
	remaining := 100 - evaluatedWeight
	if remaining <= 0 {
		if accumulated >= threshold {
			return 0, models.StatusApproved
		}
		return 0, models.StatusFailed
	}

	gap := threshold - accumulated
	if gap <= 0 {
		return 0, models.StatusApproved
	}

	need := gap * 100 / remaining
	switch {
	case need > MaxGrade:
		return round(need, 1), models.StatusImpossible
	case need > CriticalGrade:
		return round(need, 1), models.StatusCritical
	default:
		return round(need, 1), models.StatusInProgress
	}
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
