package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
)

var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// UpdateProfile writes account and profile fields. Nutrition goals are left untouched.
	UpdateProfile(ctx context.Context, user *domain.User) error
	// UpdateNutritionGoals replaces all four goal fields in one write.
	UpdateNutritionGoals(ctx context.Context, id primitive.ObjectID, goals domain.NutritionGoals) error
}

// DietPlanRepository defines the interface for interacting with diet plan data.
type DietPlanRepository interface {
	Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DietPlan, error)
	// GetByUserID returns the user's plans, most recently updated first.
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error)
	// GetLatestByUserID returns the active plan.
	GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error)
	Update(ctx context.Context, plan *domain.DietPlan) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// FoodLogRepository defines the interface for interacting with food log entries.
type FoodLogRepository interface {
	Create(ctx context.Context, entry *domain.FoodLogEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodLogEntry, error)
	// Find returns matching entries, newest date first.
	Find(ctx context.Context, filter domain.FoodLogFilter) ([]domain.FoodLogEntry, error)
	Update(ctx context.Context, entry *domain.FoodLogEntry) error
	SetPhoto(ctx context.Context, id primitive.ObjectID, photoID *primitive.ObjectID) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// FoodPhotoRepository defines the interface for interacting with photo metadata.
type FoodPhotoRepository interface {
	Create(ctx context.Context, photo *domain.FoodPhoto) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodPhoto, error)
	// GetByFoodLogID returns the photo record of an entry; there is at most one.
	GetByFoodLogID(ctx context.Context, foodLogID primitive.ObjectID) (*domain.FoodPhoto, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
