package domain

// NutritionGoals are the daily targets stored on the profile. All four fields
// are always written together.
type NutritionGoals struct {
	Calories int `bson:"calories" json:"calories"`
	Protein  int `bson:"protein" json:"protein"` // grams
	Carbs    int `bson:"carbs" json:"carbs"`     // grams
	Fat      int `bson:"fat" json:"fat"`         // grams
}

// DefaultNutritionGoals are assigned to new accounts.
func DefaultNutritionGoals() NutritionGoals {
	return NutritionGoals{Calories: 2000, Protein: 150, Carbs: 250, Fat: 65}
}

// MacroCalories is the energy implied by the macro grams (4/4/9 kcal per gram).
func (g NutritionGoals) MacroCalories() int {
	return g.Protein*4 + g.Carbs*4 + g.Fat*9
}

// Macros holds the nutrition values of a single food or meal.
type Macros struct {
	Calories int `bson:"calories" json:"calories"`
	Protein  int `bson:"protein" json:"protein"`
	Carbs    int `bson:"carbs" json:"carbs"`
	Fat      int `bson:"fat" json:"fat"`
}

// Add returns the element-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Source tells where a computed value came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourceManual   Source = "manual"
	SourceUser     Source = "user"
	SourceEstimate Source = "estimate"
)
