package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/database"
	"github.com/stemsi/nurseprep-backend/internal/handler"
	"github.com/stemsi/nurseprep-backend/internal/logger"
	"github.com/stemsi/nurseprep-backend/internal/metrics"
	"github.com/stemsi/nurseprep-backend/internal/middleware"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/router"
	"github.com/stemsi/nurseprep-backend/internal/service"
	"github.com/stemsi/nurseprep-backend/internal/validator"
	"github.com/stemsi/nurseprep-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting NursePrep Backend")

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool, rdb)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService)
	adminService := service.NewAdminService(adminRepo, authService)
	questionService := service.NewQuestionService(questionRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, rdb, log)
	sessionService := service.NewExamSessionService(sessionRepo, examRepo, questionRepo, examService, rdb, log)
	monitorService := service.NewMonitorService(monitorRepo, sessionRepo, examRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)
	mediaService := service.NewMediaService(cfg.UploadDir, cfg.MaxUploadBytes)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, adminService),
		StudentPortal: handler.NewStudentPortalHandler(sessionService),
		StudentMgmt:   handler.NewStudentManagementHandler(studentService),
		AdminUser:     handler.NewAdminUserHandler(adminService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		Media:         handler.NewMediaHandler(mediaService),
		Exam:          handler.NewExamHandler(examService, sessionService),
		Question:      handler.NewQuestionHandler(questionService),
		WS:            handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		Monitor:       handler.NewMonitorHandler(rdb, monitorService, log),
		System:        handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	autosaveWorker := worker.NewAutosaveWorker(pool, rdb, log)
	scoringWorker := worker.NewScoringWorker(pool, rdb, sessionRepo, cfg.ScoringBatchSize, log)

	workers.Add(2)
	go func() {
		defer workers.Done()
		autosaveWorker.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		scoringWorker.Start(workerCtx)
	}()

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load all published exams into Redis BEFORE accepting traffic.
	if err := examService.PrewarmAllCaches(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitPerMinute, time.Minute)
	defer authLimiter.Close()

	r := router.SetupRouter(authService, handlers, authLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for their queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
