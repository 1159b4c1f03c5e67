package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/ai"
	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
	"nutrify/diet-tracker/internal/metrics"
	"nutrify/diet-tracker/internal/nutrition"
	"nutrify/diet-tracker/internal/repository"
)

// ErrProfileIncomplete is matched by every *ProfileIncompleteError.
var ErrProfileIncomplete = errors.New("profile incomplete")

// ProfileIncompleteError lists the profile attributes that block a calculation.
type ProfileIncompleteError struct {
	Missing []string
}

func (e *ProfileIncompleteError) Error() string {
	return fmt.Sprintf("please complete your profile: missing %s", strings.Join(e.Missing, ", "))
}

func (e *ProfileIncompleteError) Is(target error) bool {
	return target == ErrProfileIncomplete
}

// Event fields used as throttle keys.
const (
	FieldNutritionGoals = "dailyNutritionGoals"
	FieldDietPlan       = "dietPlan"
	FieldFoodLog        = "foodLog"
)

// EventNotifier delivers best-effort change events. It reports whether the
// event was emitted.
type EventNotifier interface {
	Notify(ctx context.Context, ev domain.Event) bool
}

// GoalsResult is the outcome of a goal calculation.
type GoalsResult struct {
	Goals  domain.NutritionGoals `json:"nutritionGoals"`
	Source domain.Source         `json:"source"`
}

// PlanResult is the outcome of plan generation.
type PlanResult struct {
	Plan    *domain.DietPlan
	Goals   GoalsResult
	Created bool
}

// AdvisorService runs the AI-first, table-second calculations.
type AdvisorService interface {
	// CalculateGoals computes and stores the user's daily nutrition goals.
	CalculateGoals(ctx context.Context, userID primitive.ObjectID) (*GoalsResult, error)
	// GeneratePlan recalculates goals and replaces the active plan's content,
	// creating a plan when the user has none.
	GeneratePlan(ctx context.Context, userID primitive.ObjectID) (*PlanResult, error)
	// EstimateFood returns nutrition values for a logged food. It never fails.
	EstimateFood(ctx context.Context, foodName string, quantity float64, unit domain.Unit) (domain.Macros, domain.Source)
}

type advisorService struct {
	generator ai.TextGenerator // nil disables AI calls
	meals     *nutrition.MealTable
	userRepo  repository.UserRepository
	planRepo  repository.DietPlanRepository
	notifier  EventNotifier
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// NewAdvisorService wires the orchestrator. generator and m may be nil.
func NewAdvisorService(
	generator ai.TextGenerator,
	meals *nutrition.MealTable,
	userRepo repository.UserRepository,
	planRepo repository.DietPlanRepository,
	notifier EventNotifier,
	log *slog.Logger,
	m *metrics.Metrics,
) AdvisorService {
	if meals == nil {
		meals = nutrition.DefaultMealTable()
	}
	return &advisorService{
		generator: generator,
		meals:     meals,
		userRepo:  userRepo,
		planRepo:  planRepo,
		notifier:  notifier,
		log:       log,
		metrics:   m,
	}
}

func (s *advisorService) loadUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *advisorService) CalculateGoals(ctx context.Context, userID primitive.ObjectID) (*GoalsResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := user.MissingGoalAttributes(); len(missing) > 0 {
		return nil, &ProfileIncompleteError{Missing: missing}
	}
	return s.storeGoals(ctx, user)
}

// storeGoals resolves goals for a complete profile, writes them and emits the event.
func (s *advisorService) storeGoals(ctx context.Context, user *domain.User) (*GoalsResult, error) {
	res := s.resolveGoals(ctx, user)
	if err := s.userRepo.UpdateNutritionGoals(ctx, user.ID, res.Goals); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store nutrition goals: %w", err)
	}
	user.DailyNutritionGoals = res.Goals

	s.notify(ctx, domain.Event{
		Type:    domain.EventNutritionGoalsUpdated,
		UserID:  user.ID.Hex(),
		Field:   FieldNutritionGoals,
		Payload: res,
	})
	return &res, nil
}

func (s *advisorService) resolveGoals(ctx context.Context, user *domain.User) GoalsResult {
	text, err := s.generate(ctx, ai.BuildGoalsPrompt(user))
	if err == nil {
		var goals domain.NutritionGoals
		if goals, err = ai.DecodeGoals(text); err == nil {
			s.metrics.ObserveAI("goals", ai.Category(nil))
			return GoalsResult{Goals: goals, Source: domain.SourceAI}
		}
	}
	s.fallingBack(ctx, "goals", err)
	return GoalsResult{Goals: nutrition.FallbackGoals(user), Source: domain.SourceFallback}
}

func (s *advisorService) GeneratePlan(ctx context.Context, userID primitive.ObjectID) (*PlanResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := user.MissingPlanAttributes(); len(missing) > 0 {
		return nil, &ProfileIncompleteError{Missing: missing}
	}

	goals, err := s.storeGoals(ctx, user)
	if err != nil {
		return nil, err
	}
	generated := s.resolvePlan(ctx, user, goals.Goals)

	plan, created, err := s.upsertActivePlan(ctx, user.ID, generated)
	if err != nil {
		return nil, err
	}

	ev := domain.Event{UserID: user.ID.Hex(), Field: FieldDietPlan, Payload: plan}
	if created {
		ev.Type = domain.EventDietPlanCreated
	} else {
		ev.Type = domain.EventDietPlanUpdated
	}
	s.notify(ctx, ev)

	return &PlanResult{Plan: plan, Goals: *goals, Created: created}, nil
}

func (s *advisorService) resolvePlan(ctx context.Context, user *domain.User, goals domain.NutritionGoals) *domain.DietPlan {
	text, err := s.generate(ctx, ai.BuildPlanPrompt(user, goals))
	if err == nil {
		var plan *domain.DietPlan
		if plan, err = ai.DecodeDietPlan(text); err == nil {
			s.metrics.ObserveAI("diet_plan", ai.Category(nil))
			plan.UserID = user.ID
			return plan
		}
	}
	s.fallingBack(ctx, "diet_plan", err)
	return s.meals.FallbackPlan(user)
}

// upsertActivePlan copies the generated content onto the most recently
// updated plan, or stores it as the user's first plan.
func (s *advisorService) upsertActivePlan(ctx context.Context, userID primitive.ObjectID, generated *domain.DietPlan) (*domain.DietPlan, bool, error) {
	active, err := s.planRepo.GetLatestByUserID(ctx, userID)
	switch {
	case err == nil:
		active.Title = generated.Title
		active.Description = generated.Description
		active.Days = generated.Days
		active.Source = generated.Source
		if err := s.planRepo.Update(ctx, active); err != nil {
			return nil, false, fmt.Errorf("update active diet plan: %w", err)
		}
		return active, false, nil
	case errors.Is(err, repository.ErrNotFound):
		generated.UserID = userID
		id, err := s.planRepo.Create(ctx, generated)
		if err != nil {
			return nil, false, fmt.Errorf("create diet plan: %w", err)
		}
		generated.ID = id
		return generated, true, nil
	default:
		return nil, false, fmt.Errorf("load active diet plan: %w", err)
	}
}

func (s *advisorService) EstimateFood(ctx context.Context, foodName string, quantity float64, unit domain.Unit) (domain.Macros, domain.Source) {
	text, err := s.generate(ctx, ai.BuildFoodPrompt(foodName, quantity, unit))
	if err == nil {
		var m domain.Macros
		if m, err = ai.DecodeFoodEstimate(text); err == nil {
			s.metrics.ObserveAI("food_estimate", ai.Category(nil))
			return m, domain.SourceAI
		}
	}
	s.fallingBack(ctx, "food_estimate", err)
	return nutrition.EstimateFood(quantity, unit), domain.SourceEstimate
}

var errAIDisabled = errors.New("ai disabled")

func (s *advisorService) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", errAIDisabled
	}
	return s.generator.Generate(ctx, prompt)
}

// fallingBack records why the deterministic path is used. The reason is
// never returned to the caller.
func (s *advisorService) fallingBack(ctx context.Context, operation string, err error) {
	log := logging.From(ctx, s.log)
	if errors.Is(err, errAIDisabled) {
		s.metrics.ObserveAI(operation, "disabled")
		log.Debug("ai disabled, using fallback", slog.String("operation", operation))
		return
	}
	category := ai.Category(err)
	s.metrics.ObserveAI(operation, category)
	log.Warn("ai call failed, using fallback",
		slog.String("operation", operation),
		slog.String("category", category),
		logging.Err(err),
	)
}

func (s *advisorService) notify(ctx context.Context, ev domain.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, ev)
}
