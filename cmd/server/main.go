package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/cache"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/config"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/handlers"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories/postgres"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/services"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/utils"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/validator"
	"github.com/bhoraniaarshadali/exam-portal-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	var log utils.Logger
	if cfg.Environment == "production" {
		log = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		log = utils.NewDevelopmentLogger()
	}
	slogLogger := utils.ToSlogLogger(log)

	log.Info("Starting exam portal service",
		"port", cfg.Port,
		"environment", cfg.Environment)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.AutoMigrate(db); err != nil {
		log.Error("Failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	rdb, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		log.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	cacheService := cache.NewRedisCache(rdb, slogLogger)
	provider := identity.NewCasdoorProvider(cfg)
	v := validator.New()

	gatekeeper := services.NewGatekeeperService(repo, slogLogger)
	examService := services.NewExamService(repo, gatekeeper, publisher, cacheService, slogLogger, v)
	attemptService := services.NewAttemptService(repo, gatekeeper, publisher, slogLogger)
	defer attemptService.Close()
	exportService := services.NewExportService(repo, gatekeeper, slogLogger)
	profileService := services.NewProfileService(repo, slogLogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(log))

	handlerManager := handlers.NewHandlerManager(
		examService,
		attemptService,
		exportService,
		gatekeeper,
		profileService,
		provider,
		log,
	)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info("Shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("Shutdown complete")
}
