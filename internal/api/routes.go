package api

import (
	"net/http"

	"drelui/kangofit/internal/execution"
	"drelui/kangofit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	exerciseService service.ExerciseService,
	workoutService service.WorkoutService,
	executionManager *execution.Manager,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	workoutHandler := NewWorkoutHandler(workoutService)
	executionHandler := NewExecutionHandler(workoutService, userService, executionManager)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.Me)
		protected.GET("/profile", userHandler.GetProfile)
		protected.PUT("/profile", userHandler.UpdateProfile)

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetExercises)
			exerciseGroup.PUT("/:id", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", exerciseHandler.DeleteExercise)

			// Demo media: presigned upload handshake plus download URL.
			exerciseGroup.POST("/:id/media", exerciseHandler.RequestMediaUpload)
			exerciseGroup.POST("/:id/media/confirm", exerciseHandler.ConfirmMediaUpload)
			exerciseGroup.GET("/:id/media", exerciseHandler.GetMediaURL)
		}

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.GetWorkouts)
			workoutGroup.GET("/history", workoutHandler.GetHistory)
			workoutGroup.GET("/upcoming", workoutHandler.GetUpcoming)
			workoutGroup.POST("/import", workoutHandler.ImportWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.PUT("/:id", workoutHandler.UpdateWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)

			// POST /api/v1/workouts/{id}/execution opens a session
			workoutGroup.POST("/:id/execution", executionHandler.StartSession)
		}

		executionGroup := protected.Group("/execution")
		{
			executionGroup.GET("/:sessionId", executionHandler.GetSession)
			executionGroup.POST("/:sessionId/complete-set", executionHandler.CompleteSet)
			executionGroup.POST("/:sessionId/skip-rest", executionHandler.SkipRest)
			executionGroup.POST("/:sessionId/pause", executionHandler.Pause)
			executionGroup.POST("/:sessionId/resume", executionHandler.Resume)
			executionGroup.POST("/:sessionId/finish", executionHandler.Finish)
			executionGroup.POST("/:sessionId/finalize", executionHandler.Finalize)
			executionGroup.DELETE("/:sessionId", executionHandler.CloseSession)
		}
	}
}
