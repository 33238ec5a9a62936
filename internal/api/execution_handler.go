package api

import (
	"errors"
	"fmt"
	"net/http"

	"drelui/kangofit/internal/execution"
	"drelui/kangofit/internal/service"

	"github.com/gin-gonic/gin"
)

// ExecutionHandler drives workout sessions over HTTP. The session state
// lives server-side in the execution manager; every action returns the
// fresh snapshot so the client can render without extra round trips.
type ExecutionHandler struct {
	workoutService service.WorkoutService
	userService    service.UserService
	manager        *execution.Manager
}

// NewExecutionHandler creates a new ExecutionHandler.
func NewExecutionHandler(workoutService service.WorkoutService, userService service.UserService, manager *execution.Manager) *ExecutionHandler {
	return &ExecutionHandler{
		workoutService: workoutService,
		userService:    userService,
		manager:        manager,
	}
}

// SessionResponse pairs the session id with the engine snapshot.
type SessionResponse struct {
	SessionID string             `json:"sessionId"`
	Snapshot  execution.Snapshot `json:"snapshot"`
}

type FinalizeRequest struct {
	Notes string `json:"notes"`
}

// StartSession validates the workout and opens an execution session.
func (h *ExecutionHandler) StartSession(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	id, ok := workoutID(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.GetForExecution(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrWorkoutNotRunnable):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to load workout")
		}
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		return
	}

	sessionID, engine, err := h.manager.Start(workout, execution.User{ID: userID, Name: user.Name})
	if err != nil {
		// Validation already passed, so this is a race with a concurrent
		// completion of the same workout.
		abortWithError(c, http.StatusConflict, err.Error())
		return
	}
	c.JSON(http.StatusCreated, SessionResponse{
		SessionID: sessionID,
		Snapshot:  engine.Snapshot(),
	})
}

// session loads the engine for the :sessionId parameter, enforcing that
// the caller owns it.
func (h *ExecutionHandler) session(c *gin.Context) (*execution.Engine, string, bool) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return nil, "", false
	}

	sessionID := c.Param("sessionId")
	engine, err := h.manager.Get(sessionID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Execution session not found")
		return nil, "", false
	}
	if engine.User().ID != userID {
		// Foreign sessions look like missing ones.
		abortWithError(c, http.StatusNotFound, "Execution session not found")
		return nil, "", false
	}
	return engine, sessionID, true
}

// GetSession returns the current snapshot.
func (h *ExecutionHandler) GetSession(c *gin.Context) {
	engine, sessionID, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sessionID, Snapshot: engine.Snapshot()})
}

// action runs one engine transition and renders the result uniformly.
func (h *ExecutionHandler) action(c *gin.Context, do func(*execution.Engine) (execution.Snapshot, error)) {
	engine, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	snapshot, err := do(engine)
	if err != nil {
		switch {
		case errors.Is(err, execution.ErrSessionClosed):
			abortWithError(c, http.StatusGone, err.Error())
		case errors.Is(err, execution.ErrInvalidTransition):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Session action failed")
		}
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sessionID, Snapshot: snapshot})
}

func (h *ExecutionHandler) CompleteSet(c *gin.Context) {
	h.action(c, func(e *execution.Engine) (execution.Snapshot, error) { return e.CompleteSet() })
}

func (h *ExecutionHandler) SkipRest(c *gin.Context) {
	h.action(c, func(e *execution.Engine) (execution.Snapshot, error) { return e.SkipRest() })
}

func (h *ExecutionHandler) Pause(c *gin.Context) {
	h.action(c, func(e *execution.Engine) (execution.Snapshot, error) { return e.Pause() })
}

func (h *ExecutionHandler) Resume(c *gin.Context) {
	h.action(c, func(e *execution.Engine) (execution.Snapshot, error) { return e.Resume() })
}

func (h *ExecutionHandler) Finish(c *gin.Context) {
	h.action(c, func(e *execution.Engine) (execution.Snapshot, error) { return e.Finish() })
}

// Finalize requests feedback and persists the completion. On failure the
// session stays open in awaiting_feedback and the client may retry.
func (h *ExecutionHandler) Finalize(c *gin.Context) {
	engine, sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req FinalizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}

	_, err := h.manager.Finalize(c.Request.Context(), sessionID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, execution.ErrSessionClosed):
			abortWithError(c, http.StatusGone, err.Error())
		case errors.Is(err, execution.ErrInvalidTransition):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, execution.ErrFinalizeInProgress):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			// Feedback or persistence failure: the session survives, retry.
			abortWithError(c, http.StatusBadGateway, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, SessionResponse{SessionID: sessionID, Snapshot: engine.Snapshot()})
}

// CloseSession discards a session without persisting anything.
func (h *ExecutionHandler) CloseSession(c *gin.Context) {
	_, sessionID, ok := h.session(c)
	if !ok {
		return
	}
	h.manager.Close(sessionID)
	c.Status(http.StatusNoContent)
}
