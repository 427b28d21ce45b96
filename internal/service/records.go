package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/models"
	appErrors "github.com/1Bnja/PonderacionesPersonales/pkg/errors"
)

// RecordStore persists per-user records.
type RecordStore interface {
	Load(ctx context.Context, userID string) (*models.UserRecord, error)
	Save(ctx context.Context, record *models.UserRecord) error
}

// recordWriter runs every mutation the same way: load the record, apply a
// change, recompute statistics, save the whole record, drop the cached list.
type recordWriter struct {
	store   RecordStore
	cache   *CacheService
	metrics *MetricsService
	engine  grading.Engine
	logger  *zap.Logger
	now     func() time.Time
}

func newRecordWriter(store RecordStore, cache *CacheService, metrics *MetricsService, engine grading.Engine, logger *zap.Logger) recordWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return recordWriter{store: store, cache: cache, metrics: metrics, engine: engine, logger: logger, now: time.Now}
}

func (w recordWriter) load(ctx context.Context, userID string) (*models.UserRecord, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	record, err := w.store.Load(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	if record.RamoColors == nil {
		record.RamoColors = models.ColorMap{}
	}
	if record.SemestreColors == nil {
		record.SemestreColors = models.ColorMap{}
	}
	return record, nil
}

// compute recomputes statistics for every course in place.
func (w recordWriter) compute(record *models.UserRecord) {
	start := time.Now()
	record.Ramos = w.engine.ComputeAll(record.Ramos)
	w.metrics.ObserveRecompute(time.Since(start))
}

func (w recordWriter) update(ctx context.Context, userID string, change func(*models.UserRecord) error) (*models.UserRecord, error) {
	record, err := w.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := change(record); err != nil {
		return nil, err
	}
	w.compute(record)
	record.UpdatedAt = w.now().UTC()
	if err := w.store.Save(ctx, record); err != nil {
		w.logger.Error("save record failed", zap.String("user_id", userID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grades")
	}
	w.cache.Invalidate(ctx, CoursesCacheKey(userID))
	return record, nil
}

func courseNotFound(courseID string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "course "+courseID+" not found")
}
