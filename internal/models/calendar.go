package models

import "time"

// ScheduledEvaluation is an evaluation flattened with its course context for calendar views.
type ScheduledEvaluation struct {
	Evaluation
	RamoID       string    `json:"ramoId"`
	RamoNombre   string    `json:"ramoNombre"`
	RamoColor    string    `json:"ramoColor"`
	UnidadNombre string    `json:"unidadNombre"`
	Pendiente    bool      `json:"pendiente"`
	Date         time.Time `json:"date"`
}

// SemesterSummary aggregates the courses of one semester folder.
type SemesterSummary struct {
	Nombre          string               `json:"nombre"`
	Color           string               `json:"color,omitempty"`
	Ramos           []Course             `json:"ramos"`
	PromedioGeneral *float64             `json:"promedioGeneral,omitempty"`
	PorEstado       map[CourseStatus]int `json:"porEstado"`
}
