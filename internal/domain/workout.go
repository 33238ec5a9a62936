package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutExercise is a planned instance of a catalog exercise inside a
// workout: the exercise reference plus the prescribed sets/reps/weight.
// Mutable only while the owning workout is still a draft.
type WorkoutExercise struct {
	ExerciseID   string   `bson:"exerciseId" json:"exerciseId"`
	ExerciseName string   `bson:"exerciseName" json:"exerciseName"` // Denormalized for display
	Sets         int      `bson:"sets" json:"sets"`
	Reps         int      `bson:"reps" json:"reps"`
	Weight       *float64 `bson:"weight,omitempty" json:"weight,omitempty"` // kg
}

// Workout is the aggregate root: a named, dated list of planned exercises,
// possibly marked completed with execution metadata and AI feedback.
//
// Invariants:
//   - a workout is completed at most once; MarkCompleted at the repository
//     layer is guarded on completed == false
//   - ExecutionDate is set exactly once, when completion is persisted
//   - Exercises are never mutated after a session starts executing them
//     (the execution engine operates on a snapshot)
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Exercises []WorkoutExercise  `bson:"exercises" json:"exercises"` // Insertion order = execution order
	Date      time.Time          `bson:"date" json:"date"`

	Completed     bool             `bson:"completed" json:"completed"`
	ExecutionDate *time.Time       `bson:"executionDate,omitempty" json:"executionDate,omitempty"`
	Notes         string           `bson:"notes,omitempty" json:"notes,omitempty"`
	Feedback      *WorkoutFeedback `bson:"feedback,omitempty" json:"feedback,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BestDate returns the most meaningful date for display and sorting:
// the execution date when the workout was completed, the scheduled date
// otherwise. Zero when neither was ever set.
func (w *Workout) BestDate() time.Time {
	if w.ExecutionDate != nil && !w.ExecutionDate.IsZero() {
		return *w.ExecutionDate
	}
	return w.Date
}

// Schedulable reports whether the workout can enter execution.
func (w *Workout) Schedulable() bool {
	return w.Name != "" && len(w.Exercises) > 0 && !w.Completed
}

// Completion carries the fields written when a session finishes.
type Completion struct {
	ExecutionDate time.Time
	Notes         string
	Feedback      *WorkoutFeedback
}
