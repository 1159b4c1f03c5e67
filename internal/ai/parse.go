package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"nutrify/diet-tracker/internal/domain"
)

// Plausible ranges for AI supplied values. Anything outside is treated as malformed.
const (
	minGoalCalories = 800
	maxGoalCalories = 10000
	maxGoalMacro    = 1000
	maxFoodCalories = 20000
	maxMealValue    = maxFoodCalories

	// Goal calories may differ from the energy of their macros by this share.
	goalEnergyTolerance = 0.35
)

// StripCodeFence removes Markdown code fences and any prose around the
// outermost JSON object.
func StripCodeFence(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		text = text[start : end+1]
	}
	return text
}

func decodeObject(text string, v any) error {
	if err := json.Unmarshal([]byte(StripCodeFence(text)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// nutrientJSON is the wire shape shared by goals and food estimates. Pointers
// tell a missing field apart from zero.
type nutrientJSON struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

func (n nutrientJSON) macros(maxCalories, maxMacro float64) (domain.Macros, error) {
	fields := []struct {
		name string
		v    *float64
		max  float64
	}{
		{"calories", n.Calories, maxCalories},
		{"protein", n.Protein, maxMacro},
		{"carbs", n.Carbs, maxMacro},
		{"fat", n.Fat, maxMacro},
	}
	vals := make([]int, len(fields))
	for i, f := range fields {
		if f.v == nil {
			return domain.Macros{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, f.name)
		}
		if !inRange(*f.v, f.max) {
			return domain.Macros{}, fmt.Errorf("%w: %s out of range: %v", ErrMalformedResponse, f.name, *f.v)
		}
		vals[i] = int(math.Round(*f.v))
	}
	return domain.Macros{Calories: vals[0], Protein: vals[1], Carbs: vals[2], Fat: vals[3]}, nil
}

// DecodeGoals parses daily nutrition goals. All four fields are required.
func DecodeGoals(text string) (domain.NutritionGoals, error) {
	var raw nutrientJSON
	if err := decodeObject(text, &raw); err != nil {
		return domain.NutritionGoals{}, err
	}
	m, err := raw.macros(maxGoalCalories, maxGoalMacro)
	if err != nil {
		return domain.NutritionGoals{}, err
	}
	if m.Calories < minGoalCalories {
		return domain.NutritionGoals{}, fmt.Errorf("%w: calories below %d", ErrMalformedResponse, minGoalCalories)
	}
	goals := domain.NutritionGoals(m)
	if diff := math.Abs(float64(goals.MacroCalories() - goals.Calories)); diff > goalEnergyTolerance*float64(goals.Calories) {
		return domain.NutritionGoals{}, fmt.Errorf("%w: macros add up to %d kcal, calories are %d",
			ErrMalformedResponse, goals.MacroCalories(), goals.Calories)
	}
	return goals, nil
}

// DecodeFoodEstimate parses the nutrition values of a single food.
func DecodeFoodEstimate(text string) (domain.Macros, error) {
	var raw nutrientJSON
	if err := decodeObject(text, &raw); err != nil {
		return domain.Macros{}, err
	}
	return raw.macros(maxFoodCalories, maxFoodCalories)
}

type mealJSON struct {
	Name        *string  `json:"name"`
	Description string   `json:"description"`
	Calories    *float64 `json:"calories"`
	Protein     *float64 `json:"protein"`
	Carbs       *float64 `json:"carbs"`
	Fat         *float64 `json:"fat"`
}

type planJSON struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Days        []struct {
		Day   string `json:"day"`
		Meals struct {
			Breakfast *mealJSON  `json:"breakfast"`
			Lunch     *mealJSON  `json:"lunch"`
			Dinner    *mealJSON  `json:"dinner"`
			Snacks    []mealJSON `json:"snacks"`
		} `json:"meals"`
	} `json:"days"`
}

// inRange reports whether v is a number in [0, max].
func inRange(v, max float64) bool {
	return v >= 0 && v <= max
}

func mealValue(v *float64) (int, bool) {
	if v == nil {
		return 0, true
	}
	if !inRange(*v, maxMealValue) {
		return 0, false
	}
	return int(math.Round(*v)), true
}

func (m *mealJSON) meal(where string) (domain.Meal, error) {
	if m == nil {
		return domain.Meal{}, fmt.Errorf("%w: %s missing", ErrMalformedResponse, where)
	}
	if m.Name == nil || strings.TrimSpace(*m.Name) == "" {
		return domain.Meal{}, fmt.Errorf("%w: %s has no name", ErrMalformedResponse, where)
	}
	out := domain.Meal{Name: strings.TrimSpace(*m.Name), Description: m.Description}
	var ok bool
	for _, f := range []struct {
		dst *int
		src *float64
	}{
		{&out.Calories, m.Calories},
		{&out.Protein, m.Protein},
		{&out.Carbs, m.Carbs},
		{&out.Fat, m.Fat},
	} {
		if *f.dst, ok = mealValue(f.src); !ok {
			return domain.Meal{}, fmt.Errorf("%w: %s has nutrition values out of range", ErrMalformedResponse, where)
		}
	}
	return out, nil
}

// DecodeDietPlan parses a 7-day plan. It needs exactly seven days in
// Monday..Sunday order, each with a named breakfast, lunch and dinner.
// The returned plan is not bound to a user yet.
func DecodeDietPlan(text string) (*domain.DietPlan, error) {
	var raw planJSON
	if err := decodeObject(text, &raw); err != nil {
		return nil, err
	}
	if len(raw.Days) != domain.DaysPerPlan {
		return nil, fmt.Errorf("%w: want %d days, got %d", ErrMalformedResponse, domain.DaysPerPlan, len(raw.Days))
	}

	plan := &domain.DietPlan{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Days:        make([]domain.DayPlan, 0, domain.DaysPerPlan),
		Source:      domain.SourceAI,
	}
	if plan.Title == "" {
		plan.Title = domain.DefaultDietPlanTitle
	}

	for i, d := range raw.Days {
		want := domain.WeekDays[i]
		if !strings.EqualFold(strings.TrimSpace(d.Day), want) {
			return nil, fmt.Errorf("%w: day %d is %q, want %s", ErrMalformedResponse, i, d.Day, want)
		}
		var (
			day = domain.DayPlan{Day: want}
			err error
		)
		if day.Meals.Breakfast, err = d.Meals.Breakfast.meal(want + " breakfast"); err != nil {
			return nil, err
		}
		if day.Meals.Lunch, err = d.Meals.Lunch.meal(want + " lunch"); err != nil {
			return nil, err
		}
		if day.Meals.Dinner, err = d.Meals.Dinner.meal(want + " dinner"); err != nil {
			return nil, err
		}
		day.Meals.Snacks = make([]domain.Meal, 0, len(d.Meals.Snacks))
		for j := range d.Meals.Snacks {
			s, err := d.Meals.Snacks[j].meal(fmt.Sprintf("%s snack %d", want, j))
			if err != nil {
				return nil, err
			}
			day.Meals.Snacks = append(day.Meals.Snacks, s)
		}
		plan.Days = append(plan.Days, day)
	}
	return plan, nil
}
