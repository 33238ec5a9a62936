package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/repository"
	"drelui/kangofit/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseNoMedia  = errors.New("exercise has no demo media")
)

// MediaUpload is the presigned upload handshake returned to the client.
// The client PUTs the file to UploadURL and then confirms ObjectKey.
type MediaUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

type ExerciseService interface {
	Create(ctx context.Context, userID primitive.ObjectID, name, category, equipment string) (*domain.Exercise, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, userID, id primitive.ObjectID, name, category, equipment string) (*domain.Exercise, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error

	RequestMediaUpload(ctx context.Context, userID, id primitive.ObjectID, contentType string) (*MediaUpload, error)
	ConfirmMediaUpload(ctx context.Context, userID, id primitive.ObjectID, objectKey string) (*domain.Exercise, error)
	MediaDownloadURL(ctx context.Context, userID, id primitive.ObjectID) (string, error)
}

type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	media        storage.MediaStorage
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, media storage.MediaStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		media:        media,
	}
}

// Create adds a catalog exercise owned by the user.
func (s *exerciseService) Create(ctx context.Context, userID primitive.ObjectID, name, category, equipment string) (*domain.Exercise, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrInvalidInput)
	}

	exercise := &domain.Exercise{
		UserID:    userID,
		Name:      name,
		Category:  category,
		Equipment: equipment,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}

// GetByUser lists the user's catalog.
func (s *exerciseService) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetByUserID(ctx, userID)
}

// owned fetches an exercise and verifies ownership. A foreign exercise is
// reported as not found so the API never leaks existence.
func (s *exerciseService) owned(ctx context.Context, userID, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.UserID != userID {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

// Update rewrites the editable fields of an owned exercise.
func (s *exerciseService) Update(ctx context.Context, userID, id primitive.ObjectID, name, category, equipment string) (*domain.Exercise, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrInvalidInput)
	}
	exercise, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	exercise.Name = name
	exercise.Category = category
	exercise.Equipment = equipment
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}
	return exercise, nil
}

// Delete removes an owned exercise together with its demo media.
func (s *exerciseService) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	exercise, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.exerciseRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}

	// The record is gone; a leaked media object is only storage cost.
	if exercise.MediaKey != "" && s.media != nil {
		if err := s.media.DeleteObject(ctx, exercise.MediaKey); err != nil {
			log.WithError(err).WithField("key", exercise.MediaKey).Warn("failed to delete exercise media")
		}
	}
	return nil
}

// RequestMediaUpload issues a presigned PUT URL for the exercise's demo
// media. The upload is not recorded until ConfirmMediaUpload.
func (s *exerciseService) RequestMediaUpload(ctx context.Context, userID, id primitive.ObjectID, contentType string) (*MediaUpload, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	objectKey, err := storage.MediaObjectKey(userID.Hex(), id.Hex(), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	uploadURL, err := s.media.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &MediaUpload{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmMediaUpload records the uploaded object as the exercise's media,
// replacing and deleting any previous object.
func (s *exerciseService) ConfirmMediaUpload(ctx context.Context, userID, id primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	if objectKey == "" {
		return nil, fmt.Errorf("%w: object key is required", ErrInvalidInput)
	}
	exercise, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	previous := exercise.MediaKey
	exercise.MediaKey = objectKey
	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, err
	}

	if previous != "" && previous != objectKey {
		if err := s.media.DeleteObject(ctx, previous); err != nil {
			log.WithError(err).WithField("key", previous).Warn("failed to delete replaced exercise media")
		}
	}
	return exercise, nil
}

// MediaDownloadURL issues a presigned GET URL for the exercise's media.
func (s *exerciseService) MediaDownloadURL(ctx context.Context, userID, id primitive.ObjectID) (string, error) {
	exercise, err := s.owned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if exercise.MediaKey == "" {
		return "", ErrExerciseNoMedia
	}
	return s.media.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, time.Hour)
}
