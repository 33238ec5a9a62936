package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/metrics"
	"drelui/kangofit/internal/reconcile"
	"drelui/kangofit/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrWorkoutNotEditable = errors.New("completed workouts cannot be edited")
	ErrWorkoutNotRunnable = errors.New("workout cannot be executed")
)

type WorkoutService interface {
	Create(ctx context.Context, userID primitive.ObjectID, name string, exercises []domain.WorkoutExercise, date time.Time) (*domain.Workout, error)
	GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.Workout, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, userID, id primitive.ObjectID, name string, exercises []domain.WorkoutExercise, date time.Time) (*domain.Workout, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error

	History(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Upcoming(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Import(ctx context.Context, userID primitive.ObjectID, raws []reconcile.Raw) ([]domain.Workout, error)

	// GetForExecution returns an owned workout after checking it can enter
	// a session: named, non-empty, not yet completed.
	GetForExecution(ctx context.Context, userID, id primitive.ObjectID) (*domain.Workout, error)
}

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	metrics     *metrics.Manager // may be nil in tests
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, m *metrics.Manager) WorkoutService {
	return &workoutService{workoutRepo: workoutRepo, metrics: m}
}

func validateExercises(exercises []domain.WorkoutExercise) error {
	for _, ex := range exercises {
		if ex.ExerciseName == "" {
			return fmt.Errorf("%w: exercise name is required", ErrInvalidInput)
		}
		if ex.Sets <= 0 || ex.Reps <= 0 {
			return fmt.Errorf("%w: exercise %q needs positive sets and reps", ErrInvalidInput, ex.ExerciseName)
		}
	}
	return nil
}

// Create stores a new workout draft.
func (s *workoutService) Create(ctx context.Context, userID primitive.ObjectID, name string, exercises []domain.WorkoutExercise, date time.Time) (*domain.Workout, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: workout name is required", ErrInvalidInput)
	}
	if err := validateExercises(exercises); err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		UserID:    userID,
		Name:      name,
		Exercises: exercises,
		Date:      date,
	}
	id, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	return workout, nil
}

// owned fetches a workout and verifies ownership; foreign workouts are
// reported as not found.
func (s *workoutService) owned(ctx context.Context, userID, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutNotFound
	}
	return workout, nil
}

// GetByID returns one owned workout.
func (s *workoutService) GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.Workout, error) {
	return s.owned(ctx, userID, id)
}

// GetByUser returns the user's workouts, newest first by best date.
func (s *workoutService) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	workouts, err := s.workoutRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// The repository orders by scheduled date; re-sort on best date so
	// completed workouts surface under their execution date.
	reconcile.SortByBestDate(workouts)
	return workouts, nil
}

// Update rewrites the draft fields of a not-yet-completed workout.
func (s *workoutService) Update(ctx context.Context, userID, id primitive.ObjectID, name string, exercises []domain.WorkoutExercise, date time.Time) (*domain.Workout, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: workout name is required", ErrInvalidInput)
	}
	if err := validateExercises(exercises); err != nil {
		return nil, err
	}

	workout, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if workout.Completed {
		return nil, ErrWorkoutNotEditable
	}

	workout.Name = name
	workout.Exercises = exercises
	workout.Date = date
	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The workout completed between the read and the write.
			return nil, ErrWorkoutNotEditable
		}
		return nil, err
	}
	return workout, nil
}

// Delete removes an owned workout, completed or not.
func (s *workoutService) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}

// History returns completed workouts, most recent execution first.
func (s *workoutService) History(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	workouts, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reconcile.History(workouts), nil
}

// Upcoming returns not-yet-completed workouts, soonest first.
func (s *workoutService) Upcoming(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	workouts, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reconcile.Upcoming(workouts), nil
}

// Import ingests a legacy client-side export: records are normalized
// through the reconciliation rules and persisted under the user. Records
// with unparseable dates are kept with a zero date rather than dropped.
func (s *workoutService) Import(ctx context.Context, userID primitive.ObjectID, raws []reconcile.Raw) ([]domain.Workout, error) {
	workouts := reconcile.Normalize(userID, raws)

	imported := make([]domain.Workout, 0, len(workouts))
	for i := range workouts {
		w := workouts[i]
		id, err := s.workoutRepo.Create(ctx, &w)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"userId":  userID.Hex(),
				"workout": w.Name,
			}).Error("failed to persist imported workout")
			return imported, fmt.Errorf("import stopped after %d of %d workouts: %w", len(imported), len(workouts), err)
		}
		w.ID = id
		imported = append(imported, w)
	}
	if s.metrics != nil {
		s.metrics.WorkoutsImported.Add(float64(len(imported)))
	}
	reconcile.SortByBestDate(imported)
	return imported, nil
}

// GetForExecution validates that an owned workout can enter a session.
func (s *workoutService) GetForExecution(ctx context.Context, userID, id primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !workout.Schedulable() {
		if workout.Completed {
			return nil, fmt.Errorf("%w: already completed", ErrWorkoutNotRunnable)
		}
		return nil, fmt.Errorf("%w: no exercises", ErrWorkoutNotRunnable)
	}
	return workout, nil
}
