package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered KangoFit user.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Profile      *Profile           `bson:"profile,omitempty" json:"profile,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile holds the onboarding questionnaire answers. Values are the raw
// option keys collected by the onboarding flow (e.g. "beginner", "3x").
type Profile struct {
	ExperienceLevel    string   `bson:"experienceLevel" json:"experienceLevel"`
	MainGoal           string   `bson:"mainGoal" json:"mainGoal"`
	WeeklyFrequency    string   `bson:"weeklyFrequency" json:"weeklyFrequency"`
	SessionDuration    string   `bson:"sessionDuration" json:"sessionDuration"`
	TrainingLocation   string   `bson:"trainingLocation" json:"trainingLocation"`
	AvailableEquipment []string `bson:"availableEquipment,omitempty" json:"availableEquipment,omitempty"`
}

// Onboarded reports whether the user has completed the questionnaire.
func (u *User) Onboarded() bool {
	return u.Profile != nil && u.Profile.ExperienceLevel != ""
}
