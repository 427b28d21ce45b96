package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/1Bnja/PonderacionesPersonales/api/swagger"
	"github.com/1Bnja/PonderacionesPersonales/internal/grading"
	"github.com/1Bnja/PonderacionesPersonales/internal/handler"
	"github.com/1Bnja/PonderacionesPersonales/internal/middleware"
	"github.com/1Bnja/PonderacionesPersonales/internal/repository"
	"github.com/1Bnja/PonderacionesPersonales/internal/service"
	"github.com/1Bnja/PonderacionesPersonales/pkg/cache"
	"github.com/1Bnja/PonderacionesPersonales/pkg/config"
	"github.com/1Bnja/PonderacionesPersonales/pkg/database"
	"github.com/1Bnja/PonderacionesPersonales/pkg/jobs"
	"github.com/1Bnja/PonderacionesPersonales/pkg/logger"
	corsmiddleware "github.com/1Bnja/PonderacionesPersonales/pkg/middleware/cors"
	reqidmiddleware "github.com/1Bnja/PonderacionesPersonales/pkg/middleware/requestid"
	"github.com/1Bnja/PonderacionesPersonales/pkg/storage"
)

// @title Ponderaciones Personales API
// @version 1.0.0
// @description Weighted grade tracking for pasted course tables
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	cacheRepo := repository.NewCacheRepository(nil)
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, course cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	records := repository.NewRecordRepository(db, metricsSvc)
	exportRepo := repository.NewExportRepository(db, metricsSvc)

	engine := grading.NewEngine(cfg.Grading.PassingThreshold)
	validate := validator.New()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.CoursesTTL, logr, cfg.Cache.Enabled)
	authSvc := service.NewAuthService(logr, service.AuthConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	courseSvc := service.NewCourseService(records, cacheSvc, metricsSvc, engine, cfg.Cache.CoursesTTL, validate, logr)
	semesterSvc := service.NewSemesterService(records, cacheSvc, metricsSvc, engine, validate, logr)
	colorSvc := service.NewColorService(records, cacheSvc, metricsSvc, engine, validate, logr)
	calendarSvc := service.NewCalendarService(records, engine, logr)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewTranscriptExporter(records, engine, files, signer, service.TranscriptConfig{APIPrefix: cfg.APIPrefix}, logr)
	worker := service.NewExportWorker(exportRepo, exporter, metricsSvc, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnFailure:  worker.Fail,
		Logger:     logr,
	})
	exportSvc := service.NewExportService(exportRepo, records, queue, exporter, files, signer, metricsSvc, validate, logr, service.ExportServiceConfig{
		Enabled:         cfg.Exports.Enabled,
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	if cfg.Exports.Enabled {
		queue.Start(ctx)
		defer queue.Stop()
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	ops := handler.NewMetricsHandler(metricsSvc.Handler(), map[string]handler.ReadinessCheck{
		"postgres": records.Ping,
		"redis":    cacheRepo.Ping,
	})
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.Handlers{
		Courses:   handler.NewCourseHandler(courseSvc),
		Semesters: handler.NewSemesterHandler(semesterSvc),
		Colors:    handler.NewColorHandler(colorSvc, service.Palette),
		Calendar:  handler.NewCalendarHandler(calendarSvc, time.Local),
		Exports:   handler.NewExportHandler(exportSvc, logr),
		Auth:      handler.NewAuthHandler(authSvc),
	}
	handlers.Register(r.Group(cfg.APIPrefix), middleware.JWT(authSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "exports", cfg.Exports.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
