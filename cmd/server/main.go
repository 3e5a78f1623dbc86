package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"befit/fitness-app/internal/api"
	"befit/fitness-app/internal/config"
	"befit/fitness-app/internal/generator"
	"befit/fitness-app/internal/logger"
	"befit/fitness-app/internal/repository/mongo"
	"befit/fitness-app/internal/service"
	"befit/fitness-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", "error", err)
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File, Prefix: "befit"}); err != nil {
		logger.Fatal("could not init logger", "error", err)
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("jwt.secret is required (set JWT_SECRET)")
	}
	logger.Info("starting befit server", "address", cfg.Server.Address)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
	}()

	// --- Report Archive ---
	var reports storage.ReportStorage
	if cfg.S3.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		reports, err = storage.NewS3Storage(ctx, cfg.S3)
		cancel()
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", "error", err)
		}
	} else {
		logger.Warn("s3.bucket_name not set, session reports will not be archived")
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	sessionRepo := mongo.NewMongoWorkoutSessionRepository(appDB)

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	routineService := service.NewRoutineService(routineRepo, userRepo, generator.NewTemplateGenerator())
	sessionService := service.NewSessionService(sessionRepo, routineRepo, reports, cfg.Session.AbandonAfter)

	sweeper, err := service.NewSweeper(sessionService, cfg.Session.SweepSchedule)
	if err != nil {
		logger.Fatal("could not schedule session sweeper", "error", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// --- Gin Engine ---
	router := gin.Default()
	api.SetupRoutes(router, authService, routineService, sessionService, cfg.Session.DefaultRestSeconds)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}
