package dto

// CreateSemesterRequest captures POST /semesters payload.
type CreateSemesterRequest struct {
	Nombre string `json:"nombre" validate:"required,max=60"`
}

// RenameSemesterRequest captures PUT /semesters/:name payload.
type RenameSemesterRequest struct {
	Nombre string `json:"nombre" validate:"required,max=60"`
}
