package dto

import "github.com/1Bnja/PonderacionesPersonales/internal/models"

// ExportRequest captures POST /exports payload. An empty semester exports everything.
type ExportRequest struct {
	Format   models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Semestre *string             `json:"semestre" validate:"omitempty,max=60"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Format    models.ExportFormat `json:"format"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
