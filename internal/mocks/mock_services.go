package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/service"
)

// MockTextGenerator implements ai.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockFileStorage implements storage.FileStorage.
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	args := m.Called(ctx, objectKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

// MockNotifier implements service.EventNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, ev domain.Event) bool {
	args := m.Called(ctx, ev)
	return args.Bool(0)
}

// MockAuthService implements service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.User), args.Error(2)
}

func (m *MockAuthService) IssueToken(user *domain.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ParseToken(token string) (primitive.ObjectID, error) {
	args := m.Called(token)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

// MockUserService implements service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd service.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, upd service.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockAdvisorService implements service.AdvisorService.
type MockAdvisorService struct {
	mock.Mock
}

func (m *MockAdvisorService) CalculateGoals(ctx context.Context, userID primitive.ObjectID) (*service.GoalsResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GoalsResult), args.Error(1)
}

func (m *MockAdvisorService) GeneratePlan(ctx context.Context, userID primitive.ObjectID) (*service.PlanResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlanResult), args.Error(1)
}

func (m *MockAdvisorService) EstimateFood(ctx context.Context, foodName string, quantity float64, unit domain.Unit) (domain.Macros, domain.Source) {
	args := m.Called(ctx, foodName, quantity, unit)
	return args.Get(0).(domain.Macros), args.Get(1).(domain.Source)
}

// MockDietPlanService implements service.DietPlanService.
type MockDietPlanService struct {
	mock.Mock
}

func (m *MockDietPlanService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanService) GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.DietPlan, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanService) CreatePlan(ctx context.Context, userID primitive.ObjectID, title, description string, days []domain.DayPlan) (*domain.DietPlan, error) {
	args := m.Called(ctx, userID, title, description, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanService) UpdatePlan(ctx context.Context, userID, planID primitive.ObjectID, upd service.DietPlanUpdate) (*domain.DietPlan, error) {
	args := m.Called(ctx, userID, planID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DietPlan), args.Error(1)
}

func (m *MockDietPlanService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	args := m.Called(ctx, userID, planID)
	return args.Error(0)
}

// MockFoodLogService implements service.FoodLogService.
type MockFoodLogService struct {
	mock.Mock
}

func (m *MockFoodLogService) LogFood(ctx context.Context, userID primitive.ObjectID, in service.FoodLogInput) (*domain.FoodLogEntry, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodLogEntry), args.Error(1)
}

func (m *MockFoodLogService) ListFoodLogs(ctx context.Context, userID primitive.ObjectID, q service.FoodLogQuery) ([]domain.FoodLogEntry, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FoodLogEntry), args.Error(1)
}

func (m *MockFoodLogService) TodayFoodLogs(ctx context.Context, userID primitive.ObjectID) ([]domain.FoodLogEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FoodLogEntry), args.Error(1)
}

func (m *MockFoodLogService) NutritionSummary(ctx context.Context, userID primitive.ObjectID, date string) (*domain.NutritionSummary, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NutritionSummary), args.Error(1)
}

func (m *MockFoodLogService) GetFoodLog(ctx context.Context, userID, id primitive.ObjectID) (*domain.FoodLogEntry, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodLogEntry), args.Error(1)
}

func (m *MockFoodLogService) UpdateFoodLog(ctx context.Context, userID, id primitive.ObjectID, upd service.FoodLogUpdate) (*domain.FoodLogEntry, error) {
	args := m.Called(ctx, userID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodLogEntry), args.Error(1)
}

func (m *MockFoodLogService) DeleteFoodLog(ctx context.Context, userID, id primitive.ObjectID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockFoodLogService) RequestPhotoUploadURL(ctx context.Context, userID, id primitive.ObjectID, contentType string) (*service.PhotoUploadURL, error) {
	args := m.Called(ctx, userID, id, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PhotoUploadURL), args.Error(1)
}

func (m *MockFoodLogService) ConfirmPhoto(ctx context.Context, userID, id primitive.ObjectID, objectKey, fileName string, size int64, contentType string) (*domain.FoodPhoto, error) {
	args := m.Called(ctx, userID, id, objectKey, fileName, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FoodPhoto), args.Error(1)
}

func (m *MockFoodLogService) GetPhotoURL(ctx context.Context, userID, id primitive.ObjectID) (string, error) {
	args := m.Called(ctx, userID, id)
	return args.String(0), args.Error(1)
}

func (m *MockFoodLogService) DeletePhoto(ctx context.Context, userID, id primitive.ObjectID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
