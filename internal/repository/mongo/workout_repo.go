package mongo

import (
	"context"
	"errors"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout draft.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires userId and name")
	}
	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Date.IsZero() {
		workout.Date = now
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByUserID retrieves all workouts of a user, newest scheduled date first.
func (r *mongoWorkoutRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	var workouts []domain.Workout
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Update rewrites the draft fields of a workout. Completion fields are
// deliberately excluded; those only change through MarkCompleted.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return errors.New("workout ID is required for update")
	}

	filter := bson.M{"_id": workout.ID, "userId": workout.UserID, "completed": false}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":      workout.Name,
			"exercises": workout.Exercises,
			"date":      workout.Date,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkCompleted flips a workout to completed in a single guarded update.
// The filter on completed:false makes re-completion impossible even if two
// finalize calls race.
func (r *mongoWorkoutRepository) MarkCompleted(ctx context.Context, id, userID primitive.ObjectID, completion domain.Completion) error {
	if id == primitive.NilObjectID || userID == primitive.NilObjectID {
		return errors.New("workout ID and user ID are required for completion")
	}

	filter := bson.M{"_id": id, "userId": userID, "completed": false}
	updateDoc := bson.M{
		"$set": bson.M{
			"completed":     true,
			"executionDate": completion.ExecutionDate,
			"notes":         completion.Notes,
			"feedback":      completion.Feedback,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish "already completed" from "does not exist / not owned".
		existing, getErr := r.GetByID(ctx, id)
		if getErr == nil && existing.UserID == userID && existing.Completed {
			return repository.ErrAlreadyCompleted
		}
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a workout owned by the user.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if id == primitive.NilObjectID || userID == primitive.NilObjectID {
		return errors.New("workout ID and user ID are required for deletion")
	}
	filter := bson.M{
		"_id":    id,
		"userId": userID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// History and upcoming views both scan by user and date.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "completed", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.WithError(err).WithField("collection", collection.Name()).Warn("failed to create indexes")
	}
}
