package domain

// WorkoutFeedback is the structured result returned by the AI feedback
// service for a completed session. Mirrors the webhook response body.
type WorkoutFeedback struct {
	Message     string       `bson:"message" json:"message"`
	Suggestions []string     `bson:"suggestions,omitempty" json:"suggestions,omitempty"`
	NextWorkout *NextWorkout `bson:"nextWorkout,omitempty" json:"nextWorkout,omitempty"`
}

// NextWorkout is the feedback service's recommendation for the next session.
type NextWorkout struct {
	Focus           string   `bson:"focus" json:"focus"`
	Recommendations []string `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
}
