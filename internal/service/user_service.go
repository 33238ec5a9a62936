package service

import (
	"context"
	"errors"
	"fmt"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrUserNotFound = errors.New("user not found")

// Profile answer vocabularies from the onboarding questionnaire. Answers
// outside these sets are rejected so the workout planner downstream never
// sees free text.
var (
	experienceLevels  = stringSet("beginner", "intermediate", "advanced")
	mainGoals         = stringSet("loseFat", "gainMuscle", "improveConditioning", "maintainHealth")
	weeklyFrequencies = stringSet("2x", "3x", "4x", "5x+")
	sessionDurations  = stringSet("20min", "30-40min", "60min+")
	trainingLocations = stringSet("home", "gym", "outdoor")
	equipmentOptions  = stringSet("none", "dumbbells", "bench", "bands", "cardio")
)

func stringSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

type UserService interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, profile *domain.Profile) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Get fetches the user's account and profile.
func (s *userService) Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile validates and stores the onboarding questionnaire
// answers, returning the refreshed user.
func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, profile *domain.Profile) (*domain.User, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: profile is required", ErrInvalidInput)
	}
	if _, ok := experienceLevels[profile.ExperienceLevel]; !ok {
		return nil, fmt.Errorf("%w: experience level %q", ErrInvalidInput, profile.ExperienceLevel)
	}
	if _, ok := mainGoals[profile.MainGoal]; !ok {
		return nil, fmt.Errorf("%w: main goal %q", ErrInvalidInput, profile.MainGoal)
	}
	if _, ok := weeklyFrequencies[profile.WeeklyFrequency]; !ok {
		return nil, fmt.Errorf("%w: weekly frequency %q", ErrInvalidInput, profile.WeeklyFrequency)
	}
	if _, ok := sessionDurations[profile.SessionDuration]; !ok {
		return nil, fmt.Errorf("%w: session duration %q", ErrInvalidInput, profile.SessionDuration)
	}
	if _, ok := trainingLocations[profile.TrainingLocation]; !ok {
		return nil, fmt.Errorf("%w: training location %q", ErrInvalidInput, profile.TrainingLocation)
	}
	for _, eq := range profile.AvailableEquipment {
		if _, ok := equipmentOptions[eq]; !ok {
			return nil, fmt.Errorf("%w: equipment %q", ErrInvalidInput, eq)
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}
