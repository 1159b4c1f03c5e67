package nutrition

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"nutrify/diet-tracker/internal/domain"
)

// CandidatesPerMeal is the number of alternatives per meal type. Day i of a
// plan uses candidate i mod CandidatesPerMeal.
const CandidatesPerMeal = 2

//go:embed meals.json
var defaultMealsJSON []byte

// MealSet holds the candidates for every meal type of one diet.
type MealSet struct {
	Breakfast []domain.Meal `json:"breakfast"`
	Lunch     []domain.Meal `json:"lunch"`
	Dinner    []domain.Meal `json:"dinner"`
	Snacks    []domain.Meal `json:"snacks"`
}

func (s MealSet) validate() error {
	for name, c := range map[string][]domain.Meal{
		"breakfast": s.Breakfast, "lunch": s.Lunch, "dinner": s.Dinner, "snacks": s.Snacks,
	} {
		if len(c) != CandidatesPerMeal {
			return fmt.Errorf("%s: want %d candidates, got %d", name, CandidatesPerMeal, len(c))
		}
		for _, m := range c {
			if m.Name == "" {
				return fmt.Errorf("%s: meal without name", name)
			}
			if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
				return fmt.Errorf("%s: %q has negative nutrition values", name, m.Name)
			}
		}
	}
	return nil
}

// MealTable is the static fallback data: base sets keyed by diet type and
// regional overrides keyed by region then diet type.
type MealTable struct {
	Diets   map[string]MealSet            `json:"diets"`
	Regions map[string]map[string]MealSet `json:"regions"`
}

// LoadMealTable decodes and validates a meal table.
func LoadMealTable(r io.Reader) (*MealTable, error) {
	var t MealTable
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode meal table: %w", err)
	}
	if _, ok := t.Diets[domain.DietBalanced]; !ok {
		return nil, fmt.Errorf("meal table: missing %q diet", domain.DietBalanced)
	}
	for diet, set := range t.Diets {
		if err := set.validate(); err != nil {
			return nil, fmt.Errorf("meal table diet %q: %w", diet, err)
		}
	}
	for region, diets := range t.Regions {
		for diet, set := range diets {
			if err := set.validate(); err != nil {
				return nil, fmt.Errorf("meal table region %q diet %q: %w", region, diet, err)
			}
		}
	}
	return &t, nil
}

// LoadMealTableFile reads a meal table from path.
func LoadMealTableFile(path string) (*MealTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open meal table: %w", err)
	}
	defer f.Close()
	return LoadMealTable(f)
}

var (
	defaultTableOnce sync.Once
	defaultTable     *MealTable
)

// DefaultMealTable returns the embedded table, decoded once.
func DefaultMealTable() *MealTable {
	defaultTableOnce.Do(func() {
		t, err := LoadMealTable(bytes.NewReader(defaultMealsJSON))
		if err != nil {
			// embedded asset is covered by tests
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// Resolve picks the meal set for a diet type and region list. Unknown diets
// fall back to balanced. A known (first region, diet) pair replaces each meal
// type wholesale; unknown regions are ignored.
func (t *MealTable) Resolve(dietType string, regions []string) MealSet {
	set, ok := t.Diets[dietType]
	if !ok {
		set = t.Diets[domain.DietBalanced]
	}
	if len(regions) == 0 {
		return set
	}
	if override, ok := t.Regions[regions[0]][dietType]; ok {
		set = overrideSet(set, override)
	}
	return set
}

func overrideSet(base, o MealSet) MealSet {
	if len(o.Breakfast) > 0 {
		base.Breakfast = o.Breakfast
	}
	if len(o.Lunch) > 0 {
		base.Lunch = o.Lunch
	}
	if len(o.Dinner) > 0 {
		base.Dinner = o.Dinner
	}
	if len(o.Snacks) > 0 {
		base.Snacks = o.Snacks
	}
	return base
}

// Days builds the Monday to Sunday plan for dietType and regions.
func (t *MealTable) Days(dietType string, regions []string) []domain.DayPlan {
	set := t.Resolve(dietType, regions)
	days := make([]domain.DayPlan, domain.DaysPerPlan)
	for i, name := range domain.WeekDays {
		idx := i % CandidatesPerMeal
		days[i] = domain.DayPlan{
			Day: name,
			Meals: domain.DayMeals{
				Breakfast: set.Breakfast[idx],
				Lunch:     set.Lunch[idx],
				Dinner:    set.Dinner[idx],
				Snacks:    []domain.Meal{set.Snacks[idx]},
			},
		}
	}
	return days
}

// FallbackPlanTitle is the title of table generated plans.
const FallbackPlanTitle = "7-Day Balanced Diet Plan"

// FallbackPlan builds an unsaved plan for u from the table.
func (t *MealTable) FallbackPlan(u *domain.User) *domain.DietPlan {
	diet := u.PrimaryDietType()
	return &domain.DietPlan{
		UserID:      u.ID,
		Title:       FallbackPlanTitle,
		Description: fmt.Sprintf("Personalized diet plan for %s preference", diet),
		Days:        t.Days(diet, domain.CompactStrings(u.RegionalCuisines)),
		Source:      domain.SourceFallback,
	}
}
