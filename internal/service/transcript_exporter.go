package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/pkg/export"
	"github.com/1Bnja/PonderacionesPersonales/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// TranscriptConfig tunes transcript generation.
type TranscriptConfig struct {
	APIPrefix string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// TranscriptExporter renders a user's computed courses and stores the file
// behind a signed download link.
type TranscriptExporter struct {
	store     RecordStore
	engine    grading.Engine
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers map[models.ExportFormat]documentRenderer
	logger    *zap.Logger
	cfg       TranscriptConfig
	now       func() time.Time
}

// NewTranscriptExporter wires the CSV and PDF renderers.
func NewTranscriptExporter(store RecordStore, engine grading.Engine, files fileStorage, signer *storage.SignedURLSigner, cfg TranscriptConfig, logger *zap.Logger) *TranscriptExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &TranscriptExporter{
		store:   store,
		engine:  engine,
		storage: files,
		signer:  signer,
		renderers: map[models.ExportFormat]documentRenderer{
			models.ExportFormatCSV: export.NewCSVExporter(),
			models.ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Generate renders the job's transcript, saves it and signs a download URL.
func (e *TranscriptExporter) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := e.renderers[job.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Format)
	}
	record, err := e.store.Load(ctx, job.UserID)
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}
	record.Ramos = e.engine.ComputeAll(record.Ramos)

	doc := BuildTranscript(record, deref(job.Semestre), e.now())
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("nothing to export for semester %q", deref(job.Semestre))
	}
	payload, err := renderer.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Format, err)
	}

	relPath, err := e.storage.Save(path.Join(job.UserID, job.ID+"."+renderer.Extension()), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := e.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("transcript stored", zap.String("export_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(e.cfg.APIPrefix, "/"), token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ContentType returns the MIME type for a format, defaulting to octet-stream.
func (e *TranscriptExporter) ContentType(format models.ExportFormat) string {
	if r, ok := e.renderers[format]; ok {
		return r.ContentType()
	}
	return "application/octet-stream"
}

// BuildTranscript lays out one section per semester, newest first. A non-empty
// semester argument restricts the output to that semester.
func BuildTranscript(record *models.UserRecord, semester string, generatedAt time.Time) export.Document {
	doc := export.Document{
		Title:    "Ponderaciones personales",
		Subtitle: "Generado el " + generatedAt.Format("02/01/2006"),
	}
	for _, summary := range summarize(record) {
		if semester != "" && summary.Nombre != semester {
			continue
		}
		section := export.Section{
			Heading: "Semestre " + summary.Nombre,
			Headers: []string{"Ramo", "Promedio", "Peso evaluado", "Nota necesaria", "Estado"},
			Rows:    make([][]string, 0, len(summary.Ramos)),
		}
		for _, course := range summary.Ramos {
			stats := course.Estadisticas
			if stats == nil {
				stats = &models.Statistics{}
			}
			section.Rows = append(section.Rows, []string{
				course.Nombre,
				formatGrade(stats.PromedioActual),
				strconv.FormatFloat(stats.PesoEvaluado, 'f', -1, 64) + "%",
				formatGrade(stats.NotaNecesaria),
				string(stats.Estado),
			})
		}
		average := "-"
		if summary.PromedioGeneral != nil {
			average = formatGrade(*summary.PromedioGeneral)
		}
		section.Footer = []string{"Promedio semestre", average}
		doc.Sections = append(doc.Sections, section)
	}
	return doc
}

func formatGrade(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
