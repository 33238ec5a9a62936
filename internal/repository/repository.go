package repository

import (
	"context"

	"drelui/kangofit/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound         = RepositoryError("not found")
	ErrUpdateFailed     = RepositoryError("update failed")
	ErrAlreadyCompleted = RepositoryError("workout already completed")
	ErrDuplicateEmail   = RepositoryError("email already registered")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile *domain.Profile) error
}

// ExerciseRepository defines the interface for interacting with the
// exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error // Ensure the user owns the exercise
}

// WorkoutRepository defines the interface for interacting with workout
// records. The authenticated user is always an explicit parameter; no
// method consults ambient session state.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// GetByUserID returns the user's workouts ordered by date, newest first.
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	// Update rewrites the draft fields (name, exercises, date) only.
	Update(ctx context.Context, workout *domain.Workout) error
	// MarkCompleted atomically flips a not-yet-completed workout to
	// completed, writing the execution date, notes and feedback in one
	// update. Returns ErrAlreadyCompleted if the workout was completed
	// before, ErrNotFound if it does not exist or is not owned by userID.
	MarkCompleted(ctx context.Context, id, userID primitive.ObjectID, completion domain.Completion) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}
