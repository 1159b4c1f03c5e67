package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/nutrition"
	"nutrify/diet-tracker/internal/repository"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrValidationFailed = errors.New("validation failed")
)

// ProfileUpdate carries the fields a client sent. Nil means "not sent".
type ProfileUpdate struct {
	Name              *string
	Email             *string
	Password          *string
	Age               *int
	Weight            *float64
	Height            *float64
	Gender            *domain.Gender
	ActivityLevel     *string
	DietaryPreference *string
	DietType          *[]string
	RegionalCuisines  *[]string
	Allergies         *[]string
	Goals             *[]string
}

type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	// UpdateProfile applies the non-empty fields of upd. Empty values keep the stored ones.
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) (*domain.User, error)
	// UpdatePreferences is the onboarding update: every sent field overwrites,
	// including empty lists. An empty dietaryPreference or dietType is ignored.
	UpdatePreferences(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
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

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if upd.Name != nil && *upd.Name != "" {
		user.Name = *upd.Name
	}
	if upd.Email != nil && *upd.Email != "" {
		user.Email = NormalizeEmail(*upd.Email)
	}
	if upd.Age != nil && *upd.Age != 0 {
		user.Age = *upd.Age
	}
	if upd.Weight != nil && *upd.Weight != 0 {
		user.Weight = *upd.Weight
	}
	if upd.Height != nil && *upd.Height != 0 {
		user.Height = *upd.Height
	}
	if upd.Gender != nil && *upd.Gender != "" {
		user.Gender = *upd.Gender
	}
	if upd.ActivityLevel != nil && *upd.ActivityLevel != "" {
		user.ActivityLevel = domain.NormalizeActivityLevel(*upd.ActivityLevel)
	}
	if upd.Allergies != nil && len(*upd.Allergies) > 0 {
		user.Allergies = *upd.Allergies
	}
	if upd.DietaryPreference != nil && *upd.DietaryPreference != "" {
		user.DietaryPreference = *upd.DietaryPreference
	}
	if upd.DietType != nil && len(*upd.DietType) > 0 {
		user.DietType = domain.CompactStrings(*upd.DietType)
	}
	if upd.RegionalCuisines != nil && len(*upd.RegionalCuisines) > 0 {
		user.RegionalCuisines = domain.CompactStrings(*upd.RegionalCuisines)
	}
	if upd.Password != nil && *upd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrHashingFailed
		}
		user.PasswordHash = string(hash)
	}

	return s.save(ctx, user)
}

func (s *userService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if upd.Age != nil {
		user.Age = *upd.Age
	}
	if upd.Weight != nil {
		user.Weight = *upd.Weight
	}
	if upd.Height != nil {
		user.Height = *upd.Height
	}
	if upd.Gender != nil {
		user.Gender = *upd.Gender
	}
	if upd.ActivityLevel != nil {
		user.ActivityLevel = domain.NormalizeActivityLevel(*upd.ActivityLevel)
	}
	if upd.Allergies != nil {
		user.Allergies = *upd.Allergies
	}
	if upd.DietaryPreference != nil && *upd.DietaryPreference != "" {
		user.DietaryPreference = *upd.DietaryPreference
	}
	if upd.DietType != nil {
		if dt := domain.CompactStrings(*upd.DietType); len(dt) > 0 {
			user.DietType = dt
		}
	}
	if upd.RegionalCuisines != nil {
		user.RegionalCuisines = domain.CompactStrings(*upd.RegionalCuisines)
	}
	if upd.Goals != nil {
		user.Goals = *upd.Goals
	}

	return s.save(ctx, user)
}

func (s *userService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := validateProfile(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func validateProfile(u *domain.User) error {
	switch {
	case u.Age < 0 || u.Age > 150:
		return fmt.Errorf("%w: age must be between 0 and 150", ErrValidationFailed)
	case u.Weight < 0:
		return fmt.Errorf("%w: weight cannot be negative", ErrValidationFailed)
	case u.Height < 0:
		return fmt.Errorf("%w: height cannot be negative", ErrValidationFailed)
	case u.Gender != "" && !u.Gender.Valid():
		return fmt.Errorf("%w: unknown gender %q", ErrValidationFailed, u.Gender)
	case u.ActivityLevel != "" && !nutrition.ValidActivityLevel(u.ActivityLevel):
		return fmt.Errorf("%w: unknown activity level %q", ErrValidationFailed, u.ActivityLevel)
	case u.DietaryPreference != "" && !domain.ValidDietaryPreference(u.DietaryPreference):
		return fmt.Errorf("%w: unknown dietary preference %q", ErrValidationFailed, u.DietaryPreference)
	}
	for _, d := range u.DietType {
		if !domain.ValidDietType(d) {
			return fmt.Errorf("%w: unknown diet type %q", ErrValidationFailed, d)
		}
	}
	return nil
}
