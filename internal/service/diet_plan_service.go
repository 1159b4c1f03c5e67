package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/repository"
)

var (
	ErrDietPlanNotFound     = errors.New("diet plan not found")
	ErrDietPlanAccessDenied = errors.New("not authorized to access this diet plan")
)

// DietPlanUpdate carries the fields of a plan edit. Nil means "keep".
type DietPlanUpdate struct {
	Title       *string
	Description *string
	Days        *[]domain.DayPlan
}

type DietPlanService interface {
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error)
	GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.DietPlan, error)
	CreatePlan(ctx context.Context, userID primitive.ObjectID, title, description string, days []domain.DayPlan) (*domain.DietPlan, error)
	UpdatePlan(ctx context.Context, userID, planID primitive.ObjectID, upd DietPlanUpdate) (*domain.DietPlan, error)
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error
}

type dietPlanService struct {
	planRepo repository.DietPlanRepository
	notifier EventNotifier
}

func NewDietPlanService(planRepo repository.DietPlanRepository, notifier EventNotifier) DietPlanService {
	return &dietPlanService{planRepo: planRepo, notifier: notifier}
}

func (s *dietPlanService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.DietPlan, error) {
	return s.planRepo.GetByUserID(ctx, userID)
}

func (s *dietPlanService) GetActivePlan(ctx context.Context, userID primitive.ObjectID) (*domain.DietPlan, error) {
	plan, err := s.planRepo.GetLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDietPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// GetPlan loads a plan and checks that userID owns it.
func (s *dietPlanService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.DietPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDietPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrDietPlanAccessDenied
	}
	return plan, nil
}

func (s *dietPlanService) CreatePlan(ctx context.Context, userID primitive.ObjectID, title, description string, days []domain.DayPlan) (*domain.DietPlan, error) {
	if err := validateDays(days); err != nil {
		return nil, err
	}
	plan := &domain.DietPlan{
		UserID:      userID,
		Title:       title,
		Description: description,
		Days:        days,
		Source:      domain.SourceManual,
	}
	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id

	s.emit(ctx, domain.EventDietPlanCreated, plan)
	return plan, nil
}

func (s *dietPlanService) UpdatePlan(ctx context.Context, userID, planID primitive.ObjectID, upd DietPlanUpdate) (*domain.DietPlan, error) {
	plan, err := s.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil && *upd.Title != "" {
		plan.Title = *upd.Title
	}
	if upd.Description != nil {
		plan.Description = *upd.Description
	}
	if upd.Days != nil {
		if err := validateDays(*upd.Days); err != nil {
			return nil, err
		}
		plan.Days = *upd.Days
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDietPlanNotFound
		}
		return nil, err
	}

	s.emit(ctx, domain.EventDietPlanUpdated, plan)
	return plan, nil
}

func (s *dietPlanService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if _, err := s.GetPlan(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDietPlanNotFound
		}
		return err
	}
	return nil
}

func (s *dietPlanService) emit(ctx context.Context, t domain.EventType, plan *domain.DietPlan) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, domain.Event{Type: t, UserID: plan.UserID.Hex(), Field: FieldDietPlan, Payload: plan})
}

func validateDays(days []domain.DayPlan) error {
	if len(days) > domain.DaysPerPlan {
		return fmt.Errorf("%w: a plan has at most %d days", ErrValidationFailed, domain.DaysPerPlan)
	}
	for _, d := range days {
		meals := append([]domain.Meal{d.Meals.Breakfast, d.Meals.Lunch, d.Meals.Dinner}, d.Meals.Snacks...)
		for _, m := range meals {
			if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
				return fmt.Errorf("%w: %s has negative nutrition values", ErrValidationFailed, d.Day)
			}
		}
	}
	return nil
}
