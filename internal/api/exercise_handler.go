package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

// ExerciseRequest defines the JSON for creating or updating an exercise.
type ExerciseRequest struct {
	Name      string `json:"name" binding:"required"`
	Category  string `json:"category" binding:"omitempty"`  // e.g. "Pernas", "Peito"
	Equipment string `json:"equipment" binding:"omitempty"` // e.g. "Halteres", "Nenhum"
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Equipment string    `json:"equipment,omitempty"`
	HasMedia  bool      `json:"hasMedia"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MediaUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type MediaConfirmRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// MapExerciseToResponse converts a domain.Exercise to its DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:        ex.ID.Hex(),
		Name:      ex.Name,
		Category:  ex.Category,
		Equipment: ex.Equipment,
		HasMedia:  ex.MediaKey != "",
		CreatedAt: ex.CreatedAt,
		UpdatedAt: ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of exercises to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

// --- Handler Methods ---

func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), userID, req.Name, req.Category, req.Equipment)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		}
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) GetExercises(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	exercises, err := h.exerciseService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load exercises")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// exerciseID parses the :id path parameter.
func exerciseID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), userID, id, req.Name, req.Category, req.Equipment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise")
		}
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	if err := h.exerciseService.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestMediaUpload issues a presigned PUT URL for demo media; the
// client uploads directly to storage and then confirms the key.
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.exerciseService.RequestMediaUpload(c.Request.Context(), userID, id, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, upload)
}

func (h *ExerciseHandler) ConfirmMediaUpload(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	var req MediaConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.ConfirmMediaUpload(c.Request.Context(), userID, id, req.ObjectKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm upload")
		}
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *ExerciseHandler) GetMediaURL(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := exerciseID(c)
	if !ok {
		return
	}

	url, err := h.exerciseService.MediaDownloadURL(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound), errors.Is(err, service.ErrExerciseNoMedia):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create download URL")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}
