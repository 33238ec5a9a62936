package service

import (
	"context"
	"testing"

	"drelui/kangofit/internal/domain"
	"drelui/kangofit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateEmail
		}
	}
	id := primitive.NewObjectID()
	u := *user
	u.ID = id
	r.users[id] = &u
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, profile *domain.Profile) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Profile = profile
	return nil
}

func validProfile() *domain.Profile {
	return &domain.Profile{
		ExperienceLevel:    "beginner",
		MainGoal:           "gainMuscle",
		WeeklyFrequency:    "3x",
		SessionDuration:    "30-40min",
		TrainingLocation:   "home",
		AvailableEquipment: []string{"dumbbells", "bands"},
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	user, err := svc.UpdateProfile(ctx, id, validProfile())
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	assert.True(t, user.Onboarded())
	assert.Empty(t, user.PasswordHash)
}

func TestUserService_UpdateProfileRejectsUnknownAnswers(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	id, err := repo.Create(ctx, &domain.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x"})
	require.NoError(t, err)

	cases := map[string]func(*domain.Profile){
		"experience": func(p *domain.Profile) { p.ExperienceLevel = "expert" },
		"goal":       func(p *domain.Profile) { p.MainGoal = "win olympics" },
		"frequency":  func(p *domain.Profile) { p.WeeklyFrequency = "9x" },
		"duration":   func(p *domain.Profile) { p.SessionDuration = "all day" },
		"location":   func(p *domain.Profile) { p.TrainingLocation = "space" },
		"equipment":  func(p *domain.Profile) { p.AvailableEquipment = []string{"forklift"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			profile := validProfile()
			mutate(profile)
			_, err := svc.UpdateProfile(ctx, id, profile)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err = svc.UpdateProfile(ctx, id, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserService_GetUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())
	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	require.ErrorIs(t, err, ErrUserNotFound)
}
