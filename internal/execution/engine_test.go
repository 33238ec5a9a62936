package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/feedback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeTimers captures countdown callbacks so tests control every tick.
type fakeTimers struct {
	scheduled []func()
}

func (f *fakeTimers) afterFunc(d time.Duration, fn func()) *time.Timer {
	f.scheduled = append(f.scheduled, fn)
	// The returned timer is inert; ticks are driven through fire.
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

// fire runs the oldest scheduled callback.
func (f *fakeTimers) fire(t *testing.T) {
	t.Helper()
	require.NotEmpty(t, f.scheduled, "no timer callback scheduled")
	fn := f.scheduled[0]
	f.scheduled = f.scheduled[1:]
	fn()
}

type fakeGateway struct {
	calls   int
	lastMsg feedback.WorkoutMessage
	fb      *domain.WorkoutFeedback
	err     error
}

func (f *fakeGateway) WorkoutFeedback(_ context.Context, msg feedback.WorkoutMessage) (*domain.WorkoutFeedback, error) {
	f.calls++
	f.lastMsg = msg
	if f.err != nil {
		return nil, f.err
	}
	return f.fb, nil
}

type fakeStore struct {
	calls          int
	lastID         primitive.ObjectID
	lastUserID     primitive.ObjectID
	lastCompletion domain.Completion
	err            error
}

func (f *fakeStore) MarkCompleted(_ context.Context, id, userID primitive.ObjectID, completion domain.Completion) error {
	f.calls++
	f.lastID = id
	f.lastUserID = userID
	f.lastCompletion = completion
	return f.err
}

func testWorkout() *domain.Workout {
	return &domain.Workout{
		ID:     primitive.NewObjectID(),
		UserID: primitive.NewObjectID(),
		Name:   "Treino de Pernas",
		Exercises: []domain.WorkoutExercise{
			{ExerciseID: "1", ExerciseName: "Agachamento", Sets: 3, Reps: 12},
			{ExerciseID: "2", ExerciseName: "Leg Press", Sets: 2, Reps: 10},
		},
	}
}

func newTestEngine(t *testing.T, w *domain.Workout, gw *fakeGateway, st *fakeStore) (*Engine, *fakeTimers) {
	t.Helper()
	if gw == nil {
		gw = &fakeGateway{fb: &domain.WorkoutFeedback{Message: "ok"}}
	}
	if st == nil {
		st = &fakeStore{}
	}
	e, err := NewEngine(w, User{ID: w.UserID, Name: "Ana"}, gw, st)
	require.NoError(t, err)

	timers := &fakeTimers{}
	e.afterFunc = timers.afterFunc
	e.now = func() time.Time { return time.Date(2025, 5, 20, 18, 30, 0, 0, time.UTC) }
	e.randIntn = func(n int) int { return 0 }
	return e, timers
}

func TestNewEngine_Validation(t *testing.T) {
	gw := &fakeGateway{}
	st := &fakeStore{}

	_, err := NewEngine(nil, User{}, gw, st)
	require.ErrorIs(t, err, ErrNoExercises)

	_, err = NewEngine(&domain.Workout{Name: "empty"}, User{}, gw, st)
	require.ErrorIs(t, err, ErrNoExercises)

	_, err = NewEngine(&domain.Workout{
		Name:      "bad sets",
		Exercises: []domain.WorkoutExercise{{ExerciseName: "x", Sets: 0, Reps: 10}},
	}, User{}, gw, st)
	require.ErrorIs(t, err, ErrInvalidExercises)

	_, err = NewEngine(&domain.Workout{
		Name:      "done",
		Completed: true,
		Exercises: []domain.WorkoutExercise{{ExerciseName: "x", Sets: 1, Reps: 1}},
	}, User{}, gw, st)
	require.ErrorIs(t, err, ErrWorkoutCompleted)
}

// Walks the 3+2 set scenario end to end: five complete-set actions reach
// awaiting feedback, exercises visited in order, rest only between sets
// of the same exercise.
func TestEngine_FullWalkthrough(t *testing.T) {
	e, _ := newTestEngine(t, testWorkout(), nil, nil)
	defer e.Close()

	snap := e.Snapshot()
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, 0, snap.ExerciseIndex)
	assert.Equal(t, 1, snap.SetNumber)
	assert.NotEmpty(t, snap.Phrase)

	// set 1 of Agachamento -> rest before set 2
	snap, err := e.CompleteSet()
	require.NoError(t, err)
	assert.Equal(t, StateResting, snap.State)
	assert.Equal(t, 0, snap.ExerciseIndex)
	assert.Equal(t, 2, snap.SetNumber)
	assert.Equal(t, RestSeconds, snap.RestRemaining)

	snap, err = e.SkipRest()
	require.NoError(t, err)
	assert.Equal(t, StateActive, snap.State)

	// set 2 -> rest before set 3
	snap, err = e.CompleteSet()
	require.NoError(t, err)
	assert.Equal(t, StateResting, snap.State)
	assert.Equal(t, 3, snap.SetNumber)

	_, err = e.SkipRest()
	require.NoError(t, err)

	// set 3 is the exercise's last: straight to the next exercise, no rest
	snap, err = e.CompleteSet()
	require.NoError(t, err)
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, 1, snap.ExerciseIndex)
	assert.Equal(t, 1, snap.SetNumber)
	assert.Equal(t, "Leg Press", snap.Exercise.ExerciseName)

	// Leg Press set 1 -> rest
	snap, err = e.CompleteSet()
	require.NoError(t, err)
	assert.Equal(t, StateResting, snap.State)

	_, err = e.SkipRest()
	require.NoError(t, err)

	// last set of the last exercise
	snap, err = e.CompleteSet()
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFeedback, snap.State)
	assert.Equal(t, 5, snap.SetsCompleted) // sum of sets: 3 + 2

	// completing a set while awaiting feedback is a misuse
	_, err = e.CompleteSet()
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEngine_RestCountdown(t *testing.T) {
	e, timers := newTestEngine(t, testWorkout(), nil, nil)
	defer e.Close()

	_, err := e.CompleteSet()
	require.NoError(t, err)
	require.Equal(t, RestSeconds, e.Snapshot().RestRemaining)

	for i := 0; i < 3; i++ {
		timers.fire(t)
	}
	snap := e.Snapshot()
	assert.Equal(t, StateResting, snap.State)
	assert.Equal(t, RestSeconds-3, snap.RestRemaining)

	// run the countdown all the way down
	for snap.State == StateResting {
		timers.fire(t)
		snap = e.Snapshot()
	}
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, 0, snap.RestRemaining)
	assert.Equal(t, 2, snap.SetNumber)
}

// Pausing after P elapsed seconds and resuming later leaves exactly R-P
// seconds, however long the pause lasted.
func TestEngine_PauseFreezesCountdown(t *testing.T) {
	e, timers := newTestEngine(t, testWorkout(), nil, nil)
	defer e.Close()

	_, err := e.CompleteSet()
	require.NoError(t, err)

	const elapsed = 17
	for i := 0; i < elapsed; i++ {
		timers.fire(t)
	}

	snap, err := e.Pause()
	require.NoError(t, err)
	assert.Equal(t, StatePaused, snap.State)
	assert.Equal(t, RestSeconds-elapsed, snap.RestRemaining)

	// a stale tick fired after pausing must not decrement
	if len(timers.scheduled) > 0 {
		timers.fire(t)
	}
	assert.Equal(t, RestSeconds-elapsed, e.Snapshot().RestRemaining)

	snap, err = e.Resume()
	require.NoError(t, err)
	assert.Equal(t, StateResting, snap.State)
	assert.Equal(t, RestSeconds-elapsed, snap.RestRemaining)

	timers.fire(t)
	assert.Equal(t, RestSeconds-elapsed-1, e.Snapshot().RestRemaining)
}

func TestEngine_PauseOnlyWhileResting(t *testing.T) {
	e, _ := newTestEngine(t, testWorkout(), nil, nil)
	defer e.Close()

	_, err := e.Pause()
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = e.Resume()
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEngine_SkipRestIdempotent(t *testing.T) {
	e, _ := newTestEngine(t, testWorkout(), nil, nil)
	defer e.Close()

	_, err := e.CompleteSet()
	require.NoError(t, err)

	snap, err := e.SkipRest()
	require.NoError(t, err)
	assert.Equal(t, StateActive, snap.State)

	// second skip: no longer resting, so a no-op
	snap, err = e.SkipRest()
	require.NoError(t, err)
	assert.Equal(t, StateActive, snap.State)
	assert.Equal(t, 2, snap.SetNumber)
}

func finishAllSets(t *testing.T, e *Engine) {
	t.Helper()
	for {
		snap, err := e.CompleteSet()
		require.NoError(t, err)
		if snap.State == StateAwaitingFeedback {
			return
		}
		if snap.State == StateResting {
			_, err = e.SkipRest()
			require.NoError(t, err)
		}
	}
}

func TestEngine_FinalizeRetryAfterFailures(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	st := &fakeStore{err: errors.New("write failed")}
	w := testWorkout()
	e, _ := newTestEngine(t, w, gw, st)
	defer e.Close()

	finishAllSets(t, e)
	ctx := context.Background()

	// attempt 1: feedback gateway down; nothing persisted
	_, err := e.Finalize(ctx, "tough one")
	require.Error(t, err)
	assert.Equal(t, StateAwaitingFeedback, e.Snapshot().State)
	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, 0, st.calls)

	// attempt 2: feedback recovers, persistence fails; still awaiting
	gw.err = nil
	gw.fb = &domain.WorkoutFeedback{Message: "Great job!", Suggestions: []string{"Increase load"}}
	_, err = e.Finalize(ctx, "tough one")
	require.Error(t, err)
	assert.Equal(t, StateAwaitingFeedback, e.Snapshot().State)
	assert.Equal(t, 2, gw.calls, "retry performs a fresh feedback attempt")
	assert.Equal(t, 1, st.calls)

	// attempt 3: both recover
	st.err = nil
	fb, err := e.Finalize(ctx, "tough one")
	require.NoError(t, err)
	require.NotNil(t, fb)
	assert.Equal(t, "Great job!", fb.Message)

	snap := e.Snapshot()
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, fb, snap.Feedback)
	assert.Equal(t, w.ID, st.lastID)
	assert.Equal(t, w.UserID, st.lastUserID)
	assert.Equal(t, "tough one", st.lastCompletion.Notes)
	require.NotNil(t, st.lastCompletion.Feedback)

	// no transition leaves completed
	_, err = e.Finalize(ctx, "again")
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 3, gw.calls)
}

func TestEngine_FinalizeMessagePayload(t *testing.T) {
	gw := &fakeGateway{fb: &domain.WorkoutFeedback{Message: "ok"}}
	st := &fakeStore{}
	w := testWorkout()
	e, _ := newTestEngine(t, w, gw, st)
	defer e.Close()

	finishAllSets(t, e)
	_, err := e.Finalize(context.Background(), "felt strong")
	require.NoError(t, err)

	msg := gw.lastMsg
	assert.Equal(t, feedback.MessageTypeWorkoutCompleted, msg.Type)
	assert.Equal(t, w.ID.Hex(), msg.Data.WorkoutID)
	assert.Equal(t, "Treino de Pernas", msg.Data.WorkoutName)
	assert.Equal(t, "Ana", msg.Data.UserName)
	assert.Equal(t, "felt strong", msg.Data.Notes)
	assert.Len(t, msg.Data.Exercises, 2)
	assert.Equal(t, msg.Data.CompletedAt, st.lastCompletion.ExecutionDate)
}

func TestEngine_EarlyFinish(t *testing.T) {
	gw := &fakeGateway{fb: &domain.WorkoutFeedback{Message: "ok"}}
	st := &fakeStore{}
	e, _ := newTestEngine(t, testWorkout(), gw, st)
	defer e.Close()

	// one set done out of five, then the user bails out
	_, err := e.CompleteSet()
	require.NoError(t, err)

	snap, err := e.Finish()
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFeedback, snap.State)
	assert.Equal(t, 1, snap.SetsCompleted)

	_, err = e.Finalize(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, e.Snapshot().State)
	assert.Equal(t, 1, st.calls)
}

func TestEngine_CloseDiscardsSession(t *testing.T) {
	gw := &fakeGateway{fb: &domain.WorkoutFeedback{Message: "ok"}}
	st := &fakeStore{}
	e, timers := newTestEngine(t, testWorkout(), gw, st)

	_, err := e.CompleteSet()
	require.NoError(t, err)
	require.Equal(t, StateResting, e.Snapshot().State)

	e.Close()

	// a callback that was already scheduled must not mutate the session
	for len(timers.scheduled) > 0 {
		timers.fire(t)
	}
	assert.Equal(t, RestSeconds, e.restRemaining)

	_, err = e.CompleteSet()
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = e.Finalize(context.Background(), "")
	require.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, 0, gw.calls)
	assert.Equal(t, 0, st.calls)
}

func TestManager_SessionLifecycle(t *testing.T) {
	gw := &fakeGateway{fb: &domain.WorkoutFeedback{Message: "ok"}}
	st := &fakeStore{}
	mgr := NewManager(gw, st, nil)

	w := testWorkout()
	sessionID, engine, err := mgr.Start(w, User{ID: w.UserID, Name: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	got, err := mgr.Get(sessionID)
	require.NoError(t, err)
	assert.Same(t, engine, got)

	_, err = mgr.Get("nope")
	require.ErrorIs(t, err, ErrSessionNotFound)

	finishAllSets(t, engine)
	fb, err := mgr.Finalize(context.Background(), sessionID, "")
	require.NoError(t, err)
	assert.Equal(t, "ok", fb.Message)

	// completed sessions are retired from the registry
	_, err = mgr.Get(sessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// closing an unknown/retired session is harmless
	mgr.Close(sessionID)
}
