package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
)

// MockUserRepository implements repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateNutritionGoals(ctx context.Context, id primitive.ObjectID, goals domain.NutritionGoals) error {
	args := m.Called(ctx, id, goals)
	return args.Error(0)
}

// MockDietPlanRepository implements repository.DietPlanRepository.
type MockDietPlanRepository struct {
	mock.Mock
}

func (m *MockDietPlanRepository) Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockDietPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DietPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanRepository) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanRepository) Update(ctx context.Context, plan *domain.DietPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockDietPlanRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockFoodLogRepository implements repository.FoodLogRepository.
type MockFoodLogRepository struct {
	mock.Mock
}

func (m *MockFoodLogRepository) Create(ctx context.Context, entry *domain.FoodLogEntry) (primitive.ObjectID, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockFoodLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodLogEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodLogEntry), args.Error(1)
}

func (m *MockFoodLogRepository) Find(ctx context.Context, filter domain.FoodLogFilter) ([]domain.FoodLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FoodLogEntry), args.Error(1)
}

func (m *MockFoodLogRepository) Update(ctx context.Context, entry *domain.FoodLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFoodLogRepository) SetPhoto(ctx context.Context, id primitive.ObjectID, photoID *primitive.ObjectID) error {
	args := m.Called(ctx, id, photoID)
	return args.Error(0)
}

func (m *MockFoodLogRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockFoodPhotoRepository implements repository.FoodPhotoRepository.
type MockFoodPhotoRepository struct {
	mock.Mock
}

func (m *MockFoodPhotoRepository) Create(ctx context.Context, photo *domain.FoodPhoto) (primitive.ObjectID, error) {
	args := m.Called(ctx, photo)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockFoodPhotoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodPhoto, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodPhoto), args.Error(1)
}

func (m *MockFoodPhotoRepository) GetByFoodLogID(ctx context.Context, foodLogID primitive.ObjectID) (*domain.FoodPhoto, error) {
	args := m.Called(ctx, foodLogID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodPhoto), args.Error(1)
}

func (m *MockFoodPhotoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
