package parser

import (
	"strings"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
)

// isEvaluationLineB has no anchor keyword: any dated row outside the column
// header counts. Unrelated dated prose inside a Family B table will match too.
func isEvaluationLineB(line string) bool {
	if strings.Contains(line, "Tipo") || strings.Contains(line, "Calidad") {
		return false
	}
	_, ok := findDate(line)
	return ok
}

// parseEvaluationB reads name, weight and grade from a Family B row.
func parseEvaluationB(line string) (models.Evaluation, bool) {
	date, ok := findDate(line)
	if !ok {
		return models.Evaluation{}, false
	}
	before, after := splitOnDate(line, date)
	name := stripNoise(before)
	if name == "" {
		return models.Evaluation{}, false
	}

	ev := models.Evaluation{Nombre: name, Fecha: date}
	tokens := numericTokens(after)
	if len(tokens) > 0 {
		ev.Peso = parseLeadingInt(tokens[0])
	}
	if len(tokens) > 1 {
		ev.Nota = parseGrade(tokens[1])
	}
	return ev, true
}
