package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drelui/kangofit/internal/api"
	"drelui/kangofit/internal/config"
	"drelui/kangofit/internal/execution"
	"drelui/kangofit/internal/feedback"
	"drelui/kangofit/internal/metrics"
	"drelui/kangofit/internal/repository/mongo"
	"drelui/kangofit/internal/service"
	"drelui/kangofit/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// @title KangoFit API
// @version 1.0
// @description API for personal workout planning, execution and AI feedback.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("starting KangoFit server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.WithError(err).Fatal("could not connect to MongoDB")
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureWorkoutIndexes(ctx, appDB.Collection("workouts"))
		log.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	mediaStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)

	// --- Initialize Services ---
	metricsManager := metrics.NewManager()
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo)
	exerciseService := service.NewExerciseService(exerciseRepo, mediaStorage)
	workoutService := service.NewWorkoutService(workoutRepo, metricsManager)

	// --- Execution Sessions ---
	feedbackClient := feedback.NewClient(cfg.Feedback.WebhookURL, cfg.Feedback.Timeout, nil)
	executionManager := execution.NewManager(feedbackClient, workoutRepo, metricsManager)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default()

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, userService, exerciseService, workoutService, executionManager)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen and serve error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// In-flight requests get five seconds to finish; open execution
	// sessions are discarded, their workouts stay uncompleted.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	executionManager.Shutdown()

	log.Info("server exiting")
}
