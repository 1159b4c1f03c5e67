package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/ai"
	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
	"nutrify/diet-tracker/internal/mocks"
	"nutrify/diet-tracker/internal/nutrition"
	"nutrify/diet-tracker/internal/repository"
	"nutrify/diet-tracker/internal/service"
)

func completeUser() *domain.User {
	return &domain.User{
		ID:                primitive.NewObjectID(),
		Name:              "Asha",
		Email:             "asha@example.com",
		Age:               30,
		Weight:            70,
		Height:            175,
		Gender:            domain.GenderMale,
		ActivityLevel:     domain.ActivityModerate,
		DietaryPreference: domain.DietVegan,
	}
}

type advisorDeps struct {
	gen      *mocks.MockTextGenerator
	users    *mocks.MockUserRepository
	plans    *mocks.MockDietPlanRepository
	notifier *mocks.MockNotifier
}

func newAdvisor(withAI bool) (service.AdvisorService, *advisorDeps) {
	d := &advisorDeps{
		gen:      new(mocks.MockTextGenerator),
		users:    new(mocks.MockUserRepository),
		plans:    new(mocks.MockDietPlanRepository),
		notifier: new(mocks.MockNotifier),
	}
	var gen ai.TextGenerator
	if withAI {
		gen = d.gen
	}
	svc := service.NewAdvisorService(gen, nutrition.DefaultMealTable(), d.users, d.plans, d.notifier, logging.Discard(), nil)
	return svc, d
}

func prompt(prefix string) interface{} {
	return mock.MatchedBy(func(p string) bool { return strings.HasPrefix(p, prefix) })
}

func eventOfType(t domain.EventType) interface{} {
	return mock.MatchedBy(func(ev domain.Event) bool { return ev.Type == t })
}

func TestCalculateGoals_FallbackOnAIError(t *testing.T) {
	svc, d := newAdvisor(true)
	user := completeUser()
	want := nutrition.FallbackGoals(user)

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	d.gen.On("Generate", mock.Anything, prompt("Calculate daily")).
		Return("", fmt.Errorf("%w: status 503", ai.ErrServiceUnavailable))
	d.users.On("UpdateNutritionGoals", mock.Anything, user.ID, want).Return(nil)
	d.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev domain.Event) bool {
		return ev.Type == domain.EventNutritionGoalsUpdated &&
			ev.UserID == user.ID.Hex() &&
			ev.Field == service.FieldNutritionGoals
	})).Return(true)

	res, err := svc.CalculateGoals(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, domain.NutritionGoals{Calories: 2628, Protein: 112, Carbs: 296, Fat: 73}, res.Goals)
	d.users.AssertExpectations(t)
	d.notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestCalculateGoals_FencedAIResponse(t *testing.T) {
	svc, d := newAdvisor(true)
	user := completeUser()
	want := domain.NutritionGoals{Calories: 2400, Protein: 150, Carbs: 270, Fat: 80}

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	d.gen.On("Generate", mock.Anything, prompt("Calculate daily")).
		Return("```json\n{\"calories\": 2400, \"protein\": 150, \"carbs\": 270, \"fat\": 80}\n```", nil)
	d.users.On("UpdateNutritionGoals", mock.Anything, user.ID, want).Return(nil)
	d.notifier.On("Notify", mock.Anything, mock.Anything).Return(true)

	res, err := svc.CalculateGoals(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAI, res.Source)
	assert.Equal(t, want, res.Goals)
}

func TestCalculateGoals_MalformedAIResponseFallsBack(t *testing.T) {
	svc, d := newAdvisor(true)
	user := completeUser()

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	d.gen.On("Generate", mock.Anything, mock.Anything).Return("Sure! Here are your goals: lots of protein.", nil)
	d.users.On("UpdateNutritionGoals", mock.Anything, user.ID, nutrition.FallbackGoals(user)).Return(nil)
	d.notifier.On("Notify", mock.Anything, mock.Anything).Return(true)

	res, err := svc.CalculateGoals(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, res.Source)
}

func TestCalculateGoals_ProfileIncomplete(t *testing.T) {
	svc, d := newAdvisor(true)
	user := completeUser()
	user.Weight = 0

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	res, err := svc.CalculateGoals(context.Background(), user.ID)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, service.ErrProfileIncomplete)

	var pi *service.ProfileIncompleteError
	require.True(t, errors.As(err, &pi))
	assert.Equal(t, []string{"weight"}, pi.Missing)

	d.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	d.users.AssertNotCalled(t, "UpdateNutritionGoals", mock.Anything, mock.Anything, mock.Anything)
	d.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCalculateGoals_UserNotFound(t *testing.T) {
	svc, d := newAdvisor(false)
	id := primitive.NewObjectID()
	d.users.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := svc.CalculateGoals(context.Background(), id)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestGeneratePlan_VeganFallbackCreatesPlan(t *testing.T) {
	svc, d := newAdvisor(false)
	user := completeUser()
	planID := primitive.NewObjectID()

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	d.users.On("UpdateNutritionGoals", mock.Anything, user.ID, nutrition.FallbackGoals(user)).Return(nil)
	d.plans.On("GetLatestByUserID", mock.Anything, user.ID).Return(nil, repository.ErrNotFound)
	d.plans.On("Create", mock.Anything, mock.AnythingOfType("*domain.DietPlan")).Return(planID, nil)
	d.notifier.On("Notify", mock.Anything, eventOfType(domain.EventNutritionGoalsUpdated)).Return(true)
	d.notifier.On("Notify", mock.Anything, eventOfType(domain.EventDietPlanCreated)).Return(true)

	res, err := svc.GeneratePlan(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, res.Created)

	plan := res.Plan
	assert.Equal(t, planID, plan.ID)
	assert.Equal(t, user.ID, plan.UserID)
	assert.Equal(t, domain.SourceFallback, plan.Source)
	assert.Equal(t, nutrition.FallbackPlanTitle, plan.Title)
	assert.Equal(t, "Personalized diet plan for vegan preference", plan.Description)
	require.Len(t, plan.Days, 7)
	assert.Equal(t, "Chia Pudding", plan.Days[0].Meals.Breakfast.Name)
	assert.Equal(t, "Tofu Scramble", plan.Days[1].Meals.Breakfast.Name)
	d.notifier.AssertExpectations(t)
}

func TestGeneratePlan_AIPlanUpdatesActivePlan(t *testing.T) {
	svc, d := newAdvisor(true)
	user := completeUser()
	active := &domain.DietPlan{
		ID:     primitive.NewObjectID(),
		UserID: user.ID,
		Title:  "Old plan",
		Source: domain.SourceManual,
	}

	var days []string
	for _, name := range domain.WeekDays {
		days = append(days, fmt.Sprintf(`{"day": %q, "meals": {
			"breakfast": {"name": "Oats", "calories": 300, "protein": 10, "carbs": 50, "fat": 6},
			"lunch": {"name": "Dal", "calories": 500, "protein": 20, "carbs": 70, "fat": 12},
			"dinner": {"name": "Tofu curry", "calories": 600, "protein": 30, "carbs": 60, "fat": 20},
			"snacks": []}}`, name))
	}
	planJSON := fmt.Sprintf(`{"title": "Plant Week", "description": "AI plan", "days": [%s]}`, strings.Join(days, ","))

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	d.gen.On("Generate", mock.Anything, prompt("Calculate daily")).Return(`{"calories": 2500, "protein": 140, "carbs": 300, "fat": 70}`, nil)
	d.gen.On("Generate", mock.Anything, prompt("Generate a 7-day")).Return("```\n"+planJSON+"\n```", nil)
	d.users.On("UpdateNutritionGoals", mock.Anything, user.ID, mock.Anything).Return(nil)
	d.plans.On("GetLatestByUserID", mock.Anything, user.ID).Return(active, nil)
	d.plans.On("Update", mock.Anything, active).Return(nil)
	d.notifier.On("Notify", mock.Anything, eventOfType(domain.EventNutritionGoalsUpdated)).Return(true)
	d.notifier.On("Notify", mock.Anything, eventOfType(domain.EventDietPlanUpdated)).Return(false)

	res, err := svc.GeneratePlan(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, domain.SourceAI, res.Goals.Source)
	assert.Same(t, active, res.Plan)
	assert.Equal(t, "Plant Week", active.Title)
	assert.Equal(t, domain.SourceAI, active.Source)
	require.Len(t, active.Days, 7)
	assert.Equal(t, "Dal", active.Days[3].Meals.Lunch.Name)
	d.plans.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.notifier.AssertExpectations(t)
}

func TestGeneratePlan_AIFailureYieldsFallbackPlan(t *testing.T) {
	oneDay := `{"day": "Monday", "meals": {"breakfast": {"name": "Oats"}, "lunch": {"name": "Dal"}, "dinner": {"name": "Curry"}}}`
	var week []string
	for _, name := range domain.WeekDays {
		week = append(week, strings.Replace(oneDay, "Monday", name, 1))
	}
	hugeMonday := strings.Replace(week[0], `{"name": "Oats"}`, `{"name": "Oats", "calories": 1e300}`, 1)

	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"service unavailable", "", fmt.Errorf("%w: status 503", ai.ErrServiceUnavailable)},
		{"prose", "I cannot build a plan right now.", nil},
		{"one day only", `{"days": [` + week[0] + `]}`, nil},
		{"out of range calories", `{"days": [` + strings.Join(append([]string{hugeMonday}, week[1:]...), ",") + `]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newAdvisor(true)
			user := completeUser()
			planID := primitive.NewObjectID()

			d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
			d.gen.On("Generate", mock.Anything, prompt("Calculate daily")).Return(`{"calories": 2500, "protein": 140, "carbs": 300, "fat": 70}`, nil)
			d.gen.On("Generate", mock.Anything, prompt("Generate a 7-day")).Return(tt.reply, tt.err)
			d.users.On("UpdateNutritionGoals", mock.Anything, user.ID, mock.Anything).Return(nil)
			d.plans.On("GetLatestByUserID", mock.Anything, user.ID).Return(nil, repository.ErrNotFound)
			d.plans.On("Create", mock.Anything, mock.AnythingOfType("*domain.DietPlan")).Return(planID, nil)
			d.notifier.On("Notify", mock.Anything, mock.Anything).Return(true)

			res, err := svc.GeneratePlan(context.Background(), user.ID)
			require.NoError(t, err)

			want := nutrition.DefaultMealTable().FallbackPlan(user)
			want.ID = planID
			assert.Equal(t, want, res.Plan)
			assert.Equal(t, domain.SourceAI, res.Goals.Source)
		})
	}
}

func TestGeneratePlan_RequiresDietPreference(t *testing.T) {
	svc, d := newAdvisor(false)
	user := completeUser()
	user.DietaryPreference = ""
	user.DietType = []string{""}

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.GeneratePlan(context.Background(), user.ID)
	var pi *service.ProfileIncompleteError
	require.ErrorAs(t, err, &pi)
	assert.Equal(t, []string{"dietType"}, pi.Missing)
	d.users.AssertNotCalled(t, "UpdateNutritionGoals", mock.Anything, mock.Anything, mock.Anything)
}

func TestEstimateFood(t *testing.T) {
	svc, d := newAdvisor(true)
	d.gen.On("Generate", mock.Anything, prompt("Estimate")).Return("not json", nil).Once()

	m, src := svc.EstimateFood(context.Background(), "Rice", 100, domain.UnitGrams)
	assert.Equal(t, domain.SourceEstimate, src)
	assert.Equal(t, domain.Macros{Calories: 150, Protein: 8, Carbs: 19, Fat: 5}, m)

	d.gen.On("Generate", mock.Anything, prompt("Estimate")).Return(`{"calories": 130, "protein": 3, "carbs": 28, "fat": 0}`, nil).Once()
	m, src = svc.EstimateFood(context.Background(), "Rice", 100, domain.UnitGrams)
	assert.Equal(t, domain.SourceAI, src)
	assert.Equal(t, domain.Macros{Calories: 130, Protein: 3, Carbs: 28, Fat: 0}, m)
}
