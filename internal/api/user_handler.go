package api

import (
	"errors"
	"fmt"
	"net/http"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the account and onboarding profile endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest carries the onboarding questionnaire answers as
// the option keys the flow collects (e.g. "beginner", "3x", "30-40min").
type UpdateProfileRequest struct {
	ExperienceLevel    string   `json:"experienceLevel" binding:"required"`
	MainGoal           string   `json:"mainGoal" binding:"required"`
	WeeklyFrequency    string   `json:"weeklyFrequency" binding:"required"`
	SessionDuration    string   `json:"sessionDuration" binding:"required"`
	TrainingLocation   string   `json:"trainingLocation" binding:"required"`
	AvailableEquipment []string `json:"availableEquipment"`
}

// Me returns the authenticated user's account.
func (h *UserHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetProfile returns the onboarding answers, 404 before onboarding.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}
	if user.Profile == nil {
		abortWithError(c, http.StatusNotFound, "profile not set")
		return
	}
	c.JSON(http.StatusOK, user.Profile)
}

// UpdateProfile stores the onboarding answers.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile := &domain.Profile{
		ExperienceLevel:    req.ExperienceLevel,
		MainGoal:           req.MainGoal,
		WeeklyFrequency:    req.WeeklyFrequency,
		SessionDuration:    req.SessionDuration,
		TrainingLocation:   req.TrainingLocation,
		AvailableEquipment: req.AvailableEquipment,
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}
