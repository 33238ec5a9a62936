package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/reconcile"
	"drelui/kangofit/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

type WorkoutExerciseRequest struct {
	ExerciseID   string   `json:"exerciseId" binding:"omitempty"`
	ExerciseName string   `json:"exerciseName" binding:"required"`
	Sets         int      `json:"sets" binding:"required,min=1"`
	Reps         int      `json:"reps" binding:"required,min=1"`
	Weight       *float64 `json:"weight" binding:"omitempty"`
}

type WorkoutRequest struct {
	Name      string                   `json:"name" binding:"required"`
	Exercises []WorkoutExerciseRequest `json:"exercises" binding:"required,dive"`
	Date      time.Time                `json:"date" binding:"omitempty"`
}

// WorkoutResponse is the DTO for returning workout details.
type WorkoutResponse struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Exercises     []domain.WorkoutExercise `json:"exercises"`
	Date          time.Time                `json:"date"`
	Completed     bool                     `json:"completed"`
	ExecutionDate *time.Time               `json:"executionDate,omitempty"`
	Notes         string                   `json:"notes,omitempty"`
	Feedback      *domain.WorkoutFeedback  `json:"feedback,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// ImportRequest carries a legacy client-side export for reconciliation.
type ImportRequest struct {
	Workouts []reconcile.Raw `json:"workouts" binding:"required"`
}

// MapWorkoutToResponse converts a domain.Workout to its DTO.
func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:            w.ID.Hex(),
		Name:          w.Name,
		Exercises:     w.Exercises,
		Date:          w.Date,
		Completed:     w.Completed,
		ExecutionDate: w.ExecutionDate,
		Notes:         w.Notes,
		Feedback:      w.Feedback,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

// MapWorkoutsToResponse converts a slice of workouts to DTOs.
func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

func mapRequestExercises(reqs []WorkoutExerciseRequest) []domain.WorkoutExercise {
	exercises := make([]domain.WorkoutExercise, len(reqs))
	for i, r := range reqs {
		exercises[i] = domain.WorkoutExercise{
			ExerciseID:   r.ExerciseID,
			ExerciseName: r.ExerciseName,
			Sets:         r.Sets,
			Reps:         r.Reps,
			Weight:       r.Weight,
		}
	}
	return exercises
}

// workoutID parses the :id path parameter.
func workoutID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- Handler Methods ---

func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.Create(c.Request.Context(), userID, req.Name, mapRequestExercises(req.Exercises), req.Date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create workout")
		}
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

func (h *WorkoutHandler) GetWorkouts(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load workouts")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := workoutID(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load workout")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := workoutID(c)
	if !ok {
		return
	}

	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.Update(c.Request.Context(), userID, id, req.Name, mapRequestExercises(req.Exercises), req.Date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrWorkoutNotEditable):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update workout")
		}
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := workoutID(c)
	if !ok {
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GetHistory returns completed workouts, most recent execution first.
func (h *WorkoutHandler) GetHistory(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.History(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load workout history")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// GetUpcoming returns not-yet-completed workouts, soonest first.
func (h *WorkoutHandler) GetUpcoming(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.Upcoming(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load upcoming workouts")
		return
	}
	c.JSON(http.StatusOK, MapWorkoutsToResponse(workouts))
}

// ImportWorkouts ingests a legacy client-side export. Dates arrive in
// whatever shape the old client stored them; the reconciliation rules
// keep every record.
func (h *WorkoutHandler) ImportWorkouts(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	imported, err := h.workoutService.Import(c.Request.Context(), userID, req.Workouts)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"imported": len(imported),
		"workouts": MapWorkoutsToResponse(imported),
	})
}
