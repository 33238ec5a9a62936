// Package execution drives a single workout session through its
// set/rest/exercise cadence and finalizes it against the feedback and
// persistence gateways.
package execution

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/feedback"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State identifies where a session is in its lifecycle. Once a session
// reaches StateCompleted no transition leaves it.
type State string

const (
	// StateActive: the user is performing a set of the current exercise.
	StateActive State = "active"
	// StateResting: the fixed rest countdown between sets is running.
	StateResting State = "resting"
	// StatePaused: the rest countdown is frozen; only reachable from resting.
	StatePaused State = "paused"
	// StateAwaitingFeedback: every set is done (or the user finished early);
	// finalize is pending and may be retried until it succeeds.
	StateAwaitingFeedback State = "awaiting_feedback"
	// StateCompleted: feedback retrieved and completion persisted. Terminal.
	StateCompleted State = "completed"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted
}

// RestSeconds is the fixed rest duration between sets of the same
// exercise. Not configurable per exercise.
const RestSeconds = 60

// --- Error Definitions ---
var (
	ErrNoExercises        = errors.New("workout has no exercises")
	ErrInvalidExercises   = errors.New("workout has an exercise with non-positive sets or reps")
	ErrWorkoutCompleted   = errors.New("workout was already completed")
	ErrInvalidTransition  = errors.New("action not allowed in the current session state")
	ErrSessionClosed      = errors.New("session was closed")
	ErrFinalizeInProgress = errors.New("finalize already in progress")
)

// Mascot phrases shown at session start and on exercise transitions.
// Cosmetic; no effect on the state machine.
var motivationalPhrases = []string{
	"Você está arrasando! Continue assim!",
	"Mais uma série concluída! Seu esforço está valendo a pena!",
	"Incrível! Seu progresso é inspirador!",
	"Não desista, você está cada vez mais forte!",
	"Sua determinação é admirável! Continue se superando!",
	"Parabéns pelo seu desempenho! Você é capaz de muito mais!",
	"Cada repetição te aproxima dos seus objetivos!",
	"Sua disciplina é o que te diferencia! Continue firme!",
	"Excelente trabalho! Seu corpo agradece pelo esforço!",
	"Vamos lá! Você está prestes a superar seus limites!",
}

// FeedbackGateway is the slice of the feedback client the engine needs.
type FeedbackGateway interface {
	WorkoutFeedback(ctx context.Context, msg feedback.WorkoutMessage) (*domain.WorkoutFeedback, error)
}

// CompletionStore is the slice of the workout repository the engine needs.
type CompletionStore interface {
	MarkCompleted(ctx context.Context, id, userID primitive.ObjectID, completion domain.Completion) error
}

// User identifies the authenticated owner of the session. Passed in
// explicitly; the engine never consults ambient session state.
type User struct {
	ID   primitive.ObjectID
	Name string
}

// Snapshot is the engine's externally visible state, safe to hand to the
// view layer at any time.
type Snapshot struct {
	State          State                   `json:"state"`
	ExerciseIndex  int                     `json:"exerciseIndex"`
	SetNumber      int                     `json:"setNumber"`
	TotalExercises int                     `json:"totalExercises"`
	Exercise       domain.WorkoutExercise  `json:"exercise"`
	RestRemaining  int                     `json:"restRemaining"`
	SetsCompleted  int                     `json:"setsCompleted"`
	Phrase         string                  `json:"phrase"`
	Feedback       *domain.WorkoutFeedback `json:"feedback,omitempty"`
}

// Engine steps one user through one workout. It owns the rest countdown
// timer and releases it on every exit from the resting state and on
// teardown, so no callback can outlive the session.
//
// All exported methods are safe for concurrent use; the two gateway calls
// in Finalize run outside the lock.
type Engine struct {
	mu sync.Mutex

	workoutID   primitive.ObjectID
	workoutName string
	user        User
	exercises   []domain.WorkoutExercise // snapshot, never mutated

	state         State
	exerciseIndex int
	setNumber     int
	restRemaining int
	setsCompleted int
	phrase        string
	feedbackData  *domain.WorkoutFeedback

	restTimer  *time.Timer
	closed     bool
	finalizing bool

	gateway FeedbackGateway
	store   CompletionStore

	// Seams for tests; default to the real thing.
	afterFunc func(d time.Duration, f func()) *time.Timer
	now       func() time.Time
	randIntn  func(n int) int
}

// NewEngine validates the workout and builds a session positioned at the
// first set of the first exercise. The exercise list is copied: later
// edits to the workout draft cannot reach a running session.
func NewEngine(workout *domain.Workout, user User, gateway FeedbackGateway, store CompletionStore) (*Engine, error) {
	if workout == nil || len(workout.Exercises) == 0 {
		return nil, ErrNoExercises
	}
	if workout.Completed {
		return nil, ErrWorkoutCompleted
	}
	for _, ex := range workout.Exercises {
		if ex.Sets <= 0 || ex.Reps <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExercises, ex.ExerciseName)
		}
	}

	exercises := make([]domain.WorkoutExercise, len(workout.Exercises))
	copy(exercises, workout.Exercises)

	e := &Engine{
		workoutID:   workout.ID,
		workoutName: workout.Name,
		user:        user,
		exercises:   exercises,
		state:       StateActive,
		setNumber:   1,
		gateway:     gateway,
		store:       store,
		afterFunc:   time.AfterFunc,
		now:         time.Now,
		randIntn:    rand.Intn,
	}
	e.phrase = motivationalPhrases[e.randIntn(len(motivationalPhrases))]
	return e, nil
}

// User returns the session owner.
func (e *Engine) User() User {
	return e.user
}

// WorkoutID returns the workout this session executes.
func (e *Engine) WorkoutID() primitive.ObjectID {
	return e.workoutID
}

// Snapshot returns the current externally visible state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		State:          e.state,
		ExerciseIndex:  e.exerciseIndex,
		SetNumber:      e.setNumber,
		TotalExercises: len(e.exercises),
		Exercise:       e.exercises[e.exerciseIndex],
		RestRemaining:  e.restRemaining,
		SetsCompleted:  e.setsCompleted,
		Phrase:         e.phrase,
		Feedback:       e.feedbackData,
	}
}

// CompleteSet records the current set as done and advances the machine:
// into resting when the exercise has sets left, to the next exercise when
// it does not (no rest across exercise boundaries), or to awaiting
// feedback after the last set of the last exercise.
func (e *Engine) CompleteSet() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Snapshot{}, ErrSessionClosed
	}
	if e.state != StateActive {
		return e.snapshotLocked(), fmt.Errorf("%w: complete set in %q", ErrInvalidTransition, e.state)
	}

	e.setsCompleted++
	current := e.exercises[e.exerciseIndex]
	switch {
	case e.setNumber < current.Sets:
		e.setNumber++
		e.state = StateResting
		e.restRemaining = RestSeconds
		e.restTimer = e.afterFunc(time.Second, e.tick)
	case e.exerciseIndex < len(e.exercises)-1:
		e.exerciseIndex++
		e.setNumber = 1
		e.rollPhraseLocked()
	default:
		e.state = StateAwaitingFeedback
	}
	return e.snapshotLocked(), nil
}

// tick is the countdown callback; it reschedules itself every second
// while the session rests and replaces itself with an exit to active
// when the countdown hits zero.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != StateResting {
		// Stale callback after skip/pause/close; the timer owner already moved on.
		return
	}
	e.restRemaining--
	if e.restRemaining <= 0 {
		e.restTimer = nil
		e.restRemaining = 0
		e.state = StateActive
		e.rollPhraseLocked()
		return
	}
	e.restTimer = e.afterFunc(time.Second, e.tick)
}

// SkipRest forces an immediate return to the active state regardless of
// remaining time. Calling it when not resting is a no-op, so a double
// skip is harmless.
func (e *Engine) SkipRest() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Snapshot{}, ErrSessionClosed
	}
	if e.state != StateResting {
		return e.snapshotLocked(), nil
	}
	e.stopTimerLocked()
	e.restRemaining = 0
	e.state = StateActive
	return e.snapshotLocked(), nil
}

// Pause freezes the rest countdown without resetting it.
func (e *Engine) Pause() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Snapshot{}, ErrSessionClosed
	}
	if e.state != StateResting {
		return e.snapshotLocked(), fmt.Errorf("%w: pause in %q", ErrInvalidTransition, e.state)
	}
	e.stopTimerLocked()
	e.state = StatePaused
	return e.snapshotLocked(), nil
}

// Resume continues the countdown from the frozen value, however long the
// pause lasted.
func (e *Engine) Resume() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Snapshot{}, ErrSessionClosed
	}
	if e.state != StatePaused {
		return e.snapshotLocked(), fmt.Errorf("%w: resume in %q", ErrInvalidTransition, e.state)
	}
	e.state = StateResting
	e.restTimer = e.afterFunc(time.Second, e.tick)
	return e.snapshotLocked(), nil
}

// Finish ends the session early: any non-terminal state moves straight to
// awaiting feedback. The record will be persisted as completed exactly as
// if every set had been done; Snapshot.SetsCompleted tells the caller how
// much actually happened.
func (e *Engine) Finish() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return Snapshot{}, ErrSessionClosed
	}
	if e.state == StateCompleted {
		return e.snapshotLocked(), fmt.Errorf("%w: finish in %q", ErrInvalidTransition, e.state)
	}
	e.stopTimerLocked()
	e.restRemaining = 0
	e.state = StateAwaitingFeedback
	return e.snapshotLocked(), nil
}

// Finalize requests feedback for the session and then persists the
// completed record, strictly in that order. Any failure leaves the
// session in awaiting feedback and is returned to the caller, who may
// retry; a retry performs a fresh feedback attempt. On success the
// session is completed and no further transitions are possible.
func (e *Engine) Finalize(ctx context.Context, notes string) (*domain.WorkoutFeedback, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if e.state == StateCompleted {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: finalize in %q", ErrInvalidTransition, StateCompleted)
	}
	if e.finalizing {
		e.mu.Unlock()
		return nil, ErrFinalizeInProgress
	}
	// Early finalize from active/resting/paused is permitted: it is the
	// same user-visible shortcut as Finish.
	e.stopTimerLocked()
	e.restRemaining = 0
	e.state = StateAwaitingFeedback
	e.finalizing = true

	completedAt := e.now().UTC()
	msg := feedback.WorkoutMessage{
		Type: feedback.MessageTypeWorkoutCompleted,
		Data: feedback.WorkoutData{
			UserID:      e.user.ID.Hex(),
			UserName:    e.user.Name,
			WorkoutID:   e.workoutID.Hex(),
			WorkoutName: e.workoutName,
			Exercises:   e.exercises,
			CompletedAt: completedAt,
			Notes:       notes,
		},
	}
	e.mu.Unlock()

	fb, err := e.gateway.WorkoutFeedback(ctx, msg)
	if err != nil {
		e.endFinalize()
		return nil, fmt.Errorf("request workout feedback: %w", err)
	}

	// The session may have been closed while the feedback call was in
	// flight; a discarded session must not be persisted.
	e.mu.Lock()
	if e.closed {
		e.finalizing = false
		e.mu.Unlock()
		return nil, ErrSessionClosed
	}
	e.mu.Unlock()

	completion := domain.Completion{
		ExecutionDate: completedAt,
		Notes:         notes,
		Feedback:      fb,
	}
	if err := e.store.MarkCompleted(ctx, e.workoutID, e.user.ID, completion); err != nil {
		e.endFinalize()
		return nil, fmt.Errorf("persist completed workout: %w", err)
	}

	e.mu.Lock()
	e.finalizing = false
	e.state = StateCompleted
	e.feedbackData = fb
	e.mu.Unlock()
	return fb, nil
}

func (e *Engine) endFinalize() {
	e.mu.Lock()
	e.finalizing = false
	e.mu.Unlock()
}

// Close tears the session down, stopping the countdown timer. Closing
// before completion discards all in-progress state; nothing is persisted.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.stopTimerLocked()
}

// Completed reports whether the session reached its terminal state.
func (e *Engine) Completed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateCompleted
}

func (e *Engine) stopTimerLocked() {
	if e.restTimer != nil {
		e.restTimer.Stop()
		e.restTimer = nil
	}
}

func (e *Engine) rollPhraseLocked() {
	e.phrase = motivationalPhrases[e.randIntn(len(motivationalPhrases))]
}
