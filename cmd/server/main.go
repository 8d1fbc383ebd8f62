package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examstack/exam-service/internal/auth"
	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/config"
	"github.com/examstack/exam-service/internal/handlers"
	"github.com/examstack/exam-service/internal/repositories/postgres"
	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/examstack/exam-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.IsDevelopment() {
		logger = utils.NewDevelopmentLogger()
	} else {
		logger = utils.NewDefaultLogger()
	}
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	var resultCache cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, result caching disabled", "error", err)
		resultCache = cache.NoopCache{}
	} else {
		defer redisClient.Close()
		resultCache = cache.NewRedisCache(redisClient, slogLogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	validate := validator.New()

	questionService := services.NewQuestionService(repo, slogLogger, validate)
	courseService := services.NewCourseService(repo, slogLogger, validate)
	examService := services.NewExamService(repo, resultCache, publisher, slogLogger, validate)
	importService := services.NewImportExportService(repo, publisher, slogLogger, validate)

	authenticator := auth.NewAuthenticator(cfg.Casdoor, repo.User(), logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger), utils.ContextLogger(logger), gin.Recovery())

	handlerManager := handlers.NewHandlerManager(
		questionService,
		courseService,
		examService,
		importService,
		logger,
	)
	handlerManager.SetupRoutes(router, authenticator.Middleware())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// background sweep closes sessions whose time ran out without a submit
	go runTimeoutSweeper(ctx, examService, logger, cfg.TimeoutSweepInterval)

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

func runTimeoutSweeper(ctx context.Context, examService services.ExamService, logger utils.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := examService.HandleTimeouts(ctx)
			if err != nil {
				logger.LogError(err, "Timeout sweep failed")
				continue
			}
			if closed > 0 {
				logger.Info("Closed expired exam sessions", "count", closed)
			}
		}
	}
}
