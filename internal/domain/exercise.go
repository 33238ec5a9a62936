package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single catalog entry owned by a user.
// Catalog entries are referenced by workouts through their ID and a
// denormalized name; editing an entry never rewrites past workouts.
type Exercise struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Category  string             `bson:"category" json:"category"` // e.g. "Pernas", "Peito", "Core"
	Equipment string             `bson:"equipment,omitempty" json:"equipment,omitempty"`

	// MediaKey points at the demonstration image/video object in S3,
	// set after the client confirms a presigned upload.
	MediaKey string `bson:"mediaKey,omitempty" json:"mediaKey,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
