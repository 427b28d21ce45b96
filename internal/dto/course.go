package dto

import (
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/internal/parser"
)

// ParseRequest carries text pasted from the university portal.
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

// ImportCoursesRequest captures POST /courses/import payload.
type ImportCoursesRequest struct {
	Text     string  `json:"text" validate:"required"`
	Semestre *string `json:"semestre" validate:"omitempty,max=60"`
}

// ParseResponse is returned by both the dry run and the import.
type ParseResponse struct {
	Family   parser.Family    `json:"family"`
	Courses  []models.Course  `json:"ramos"`
	Warnings []parser.Warning `json:"warnings"`
}

// EvaluationRequest describes a manually entered evaluation.
type EvaluationRequest struct {
	Nombre string   `json:"nombre" validate:"max=200"`
	Fecha  string   `json:"fecha" validate:"max=40"`
	Peso   int      `json:"peso" validate:"gte=0,lte=100"`
	Nota   *float64 `json:"nota" validate:"omitempty,gte=1,lte=7"`
}

// UnitRequest describes a manually entered unit.
type UnitRequest struct {
	Nombre       string              `json:"nombre" validate:"required,max=200"`
	Peso         int                 `json:"peso" validate:"gte=0,lte=100"`
	Evaluaciones []EvaluationRequest `json:"evaluaciones" validate:"dive"`
}

// CreateCourseRequest captures POST /courses payload.
type CreateCourseRequest struct {
	Nombre   string        `json:"nombre" validate:"required,max=200"`
	Semestre *string       `json:"semestre" validate:"omitempty,max=60"`
	Unidades []UnitRequest `json:"unidades" validate:"dive"`
}

// EditCourseRequest addresses one field of the course tree. UnitID and
// EvaluationID select the level; Value is the new raw value.
type EditCourseRequest struct {
	UnitID       string      `json:"unitId"`
	EvaluationID string      `json:"evaluationId"`
	Field        string      `json:"field" validate:"required,oneof=nombre semestre peso fecha nota"`
	Value        interface{} `json:"value"`
}

// UpdateGradeRequest captures PUT .../grade payload. A null grade clears it.
type UpdateGradeRequest struct {
	Nota *float64 `json:"nota" validate:"omitempty,gte=1,lte=7"`
}

// ColorRequest assigns a palette color name.
type ColorRequest struct {
	Color string `json:"color" validate:"required,palette"`
}
