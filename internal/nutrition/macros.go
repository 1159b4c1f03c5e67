package nutrition

import (
	"math"

	"nutrify/diet-tracker/internal/domain"
)

const (
	proteinPerKg = 1.6
	carbShare    = 0.45
	fatShare     = 0.25

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// AllocateMacros turns a calorie target into gram targets. Protein is
// weight based, carbs and fat take fixed shares of the calories.
func AllocateMacros(tdee int, weightKg float64) domain.NutritionGoals {
	return domain.NutritionGoals{
		Calories: tdee,
		Protein:  int(math.Round(weightKg * proteinPerKg)),
		Carbs:    int(math.Round(float64(tdee) * carbShare / kcalPerGramCarbs)),
		Fat:      int(math.Round(float64(tdee) * fatShare / kcalPerGramFat)),
	}
}
