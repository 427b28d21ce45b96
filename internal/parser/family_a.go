package parser

import (
	"strings"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

// isUnitLine reports whether a Family A line opens a new unit.
func isUnitLine(line string) bool {
	return strings.Contains(line, markerUnitRequired)
}

// parseUnitLine extracts the unit name and weight around the EXIGIBLE marker.
// Units gated by "Requisito de aprobación" are pass/fail and weigh 0.
func parseUnitLine(line string) (name string, weight int, ok bool) {
	match := unitMarkerRe.FindStringSubmatch(line)
	if match == nil {
		return "", 0, false
	}
	name = strings.TrimSpace(match[1])
	if name == "" {
		return "", 0, false
	}
	rest := strings.TrimSpace(match[3])
	if strings.Contains(rest, gateRequirement) {
		return name, 0, true
	}
	if digits := unitWeightRe.FindString(rest); digits != "" {
		weight = parseLeadingInt(digits)
	}
	return name, weight, true
}

// isEvaluationLineA reports whether the line is an "Evaluación N" row.
func isEvaluationLineA(line string) bool {
	return evalPrefixRe.MatchString(line)
}

// parseEvaluationA splits an "Evaluación N" row on its date anchor. The tail
// holds weight and grade concatenated as text, e.g. "60 6.8" or just "30".
func parseEvaluationA(line string) models.Evaluation {
	ev := models.Evaluation{Nombre: defaultEvalName, Fecha: models.NoDate}

	date, ok := findDate(line)
	if !ok {
		ev.Nombre = strings.TrimSpace(stripEvalPrefix(line))
		return ev
	}
	ev.Fecha = date

	before, after := splitOnDate(line, date)
	if before != "" {
		ev.Nombre = stripNoise(stripEvalPrefix(before))
	}

	tail := strings.TrimSpace(after)
	if tail == "" {
		return ev
	}
	if grade := gradeSuffixRe.FindString(tail); grade != "" {
		ev.Nota = parseGrade(grade)
		ev.Peso = parseLeadingInt(strings.TrimSuffix(tail, grade))
		return ev
	}
	if digitsRe.MatchString(tail) {
		ev.Peso = parseLeadingInt(tail)
	}
	return ev
}
