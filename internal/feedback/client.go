package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"drelui/kangofit/internal/domain"

	log "github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrGatewayStatus   = errors.New("feedback service returned a non-2xx status")
	ErrEmptyResponse   = errors.New("feedback service returned an empty body")
	ErrInvalidResponse = errors.New("feedback service returned a non-JSON body")
)

// MessageType is the only event type the webhook currently understands.
const MessageTypeWorkoutCompleted = "workout_completed"

// WorkoutMessage is the payload posted to the feedback webhook when a
// session completes.
type WorkoutMessage struct {
	Type string      `json:"type"`
	Data WorkoutData `json:"data"`
}

// WorkoutData carries the session metadata the feedback generator needs.
type WorkoutData struct {
	UserID      string                   `json:"userId"`
	UserName    string                   `json:"userName"`
	WorkoutID   string                   `json:"workoutId"`
	WorkoutName string                   `json:"workoutName"`
	Exercises   []domain.WorkoutExercise `json:"exercises"`
	CompletedAt time.Time                `json:"completedAt"`
	Notes       string                   `json:"notes,omitempty"`
}

// Client talks to the webhook-based feedback service (an n8n flow in the
// hosted deployment). The service is opaque: we post a completed-workout
// message and get back a WorkoutFeedback JSON body.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient creates a feedback client. A nil httpClient falls back to a
// client with the given timeout.
func NewClient(webhookURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

// WorkoutFeedback posts the completed-workout message and decodes the
// feedback. An unreachable service, a non-2xx status, an empty body or a
// non-JSON body are all hard failures: the caller keeps the session in
// awaiting-feedback and may retry.
func (c *Client) WorkoutFeedback(ctx context.Context, msg WorkoutMessage) (*domain.WorkoutFeedback, error) {
	if msg.Type == "" {
		msg.Type = MessageTypeWorkoutCompleted
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal workout message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create feedback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send workout message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("feedback service: workout %s got status %d", msg.Data.WorkoutID, resp.StatusCode)
		return nil, fmt.Errorf("%w: %d", ErrGatewayStatus, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feedback response: %w", err)
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, ErrEmptyResponse
	}

	var fb domain.WorkoutFeedback
	if err := json.Unmarshal(respBody, &fb); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, truncate(string(respBody), 200))
	}

	fb.Message = CleanMessage(fb.Message)
	return &fb, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
