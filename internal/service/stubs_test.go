package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	"github.com/1Bnja/PonderacionesPersonales/internal/repository"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
	"github.com/1Bnja/PonderacionesPersonales/pkg/jobs"
)

// recordStoreStub keeps records as JSON so every Load returns an independent copy.
type recordStoreStub struct {
	records map[string][]byte
	saves   int
	loadErr error
	saveErr error
}

func newRecordStoreStub() *recordStoreStub {
	return &recordStoreStub{records: map[string][]byte{}}
}

func (s *recordStoreStub) put(record *models.UserRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}
	s.records[record.UserID] = data
}

func (s *recordStoreStub) get(userID string) *models.UserRecord {
	data, ok := s.records[userID]
	if !ok {
		return nil
	}
	var record models.UserRecord
	if err := json.Unmarshal(data, &record); err != nil {
		panic(err)
	}
	return &record
}

func (s *recordStoreStub) Load(ctx context.Context, userID string) (*models.UserRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if record := s.get(userID); record != nil {
		return record, nil
	}
	return models.NewUserRecord(userID), nil
}

func (s *recordStoreStub) Save(ctx context.Context, record *models.UserRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.put(record)
	return nil
}

type cacheRepoStub struct {
	items   map[string][]byte
	deleted []string
	getErr  error
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{items: map[string][]byte{}}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.items[key] = data
	return nil
}

func (c *cacheRepoStub) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.items, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

type exportRepoStub struct {
	jobs    map[string]*models.ExportJob
	deleted []string
}

func newExportRepoStub() *exportRepoStub {
	return &exportRepoStub{jobs: map[string]*models.ExportJob{}}
}

func (r *exportRepoStub) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *exportRepoStub) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, repository.ErrExportNotFound
	}
	return job, nil
}

func (r *exportRepoStub) Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.FilePath != nil {
		job.FilePath = params.FilePath
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *exportRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ExportJob, error) {
	var queued []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (r *exportRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	var finished []models.ExportJob
	for _, job := range r.jobs {
		if job.Status == models.ExportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			finished = append(finished, *job)
		}
	}
	return finished, nil
}

func (r *exportRepoStub) Delete(ctx context.Context, id string) error {
	delete(r.jobs, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// sampleRecord holds two 2025-1 courses, one 2024-2 course, one course
// without semester and an empty 2025-2 folder.
func sampleRecord(userID string) *models.UserRecord {
	record := models.NewUserRecord(userID)
	record.Ramos = models.CourseList{
		{
			ID: "calc", Nombre: "Cálculo I", Semestre: models.StringPtr("2025-1"),
			Unidades: []models.Unit{{
				ID: "u1", Nombre: "Unidad 1", Peso: 50,
				Evaluaciones: []models.Evaluation{
					{ID: "e1", Nombre: "Prueba 1", Fecha: "10/10/2025", Peso: 50, Nota: models.Float64Ptr(5.0)},
					{ID: "e2", Nombre: "Prueba 2", Fecha: "20/10/2025", Peso: 50},
				},
			}},
		},
		{
			ID: "fis", Nombre: "Física", Semestre: models.StringPtr("2025-1"),
			Unidades: []models.Unit{{
				ID: "u1", Nombre: "Unidad 1", Peso: 100,
				Evaluaciones: []models.Evaluation{
					{ID: "e1", Nombre: "Control", Fecha: "01/10/2025", Peso: 100, Nota: models.Float64Ptr(6.0)},
				},
			}},
		},
		{
			ID: "prog", Nombre: "Programación", Semestre: models.StringPtr("2024-2"),
			Unidades: []models.Unit{{
				ID: "u1", Nombre: "Unidad 1", Peso: 100,
				Evaluaciones: []models.Evaluation{
					{ID: "e1", Nombre: "Proyecto", Fecha: "05/10/2025", Peso: 100},
				},
			}},
		},
		{
			ID: "libre", Nombre: "Electivo", Semestre: nil,
			Unidades: []models.Unit{{
				ID: "u1", Nombre: "Unidad 1", Peso: 100,
				Evaluaciones: []models.Evaluation{
					{ID: "e1", Nombre: "Ensayo", Fecha: models.NoDate, Peso: 100},
				},
			}},
		},
	}
	record.RamoColors = models.ColorMap{"calc": "Verde"}
	record.SemestreColors = models.ColorMap{"2025-1": "Lila"}
	record.SemestresVacios = models.SemesterList{"2025-2"}
	return record
}
