package nutrition

import (
	"math"

	"nutrify/diet-tracker/internal/domain"
)

// gramEquivalents converts one unit of a quantity into grams. Volumes assume
// the density of water; a piece counts as a medium serving.
var gramEquivalents = map[domain.Unit]float64{
	domain.UnitGrams:       1,
	domain.UnitKilograms:   1000,
	domain.UnitOunces:      28.35,
	domain.UnitPounds:      453.6,
	domain.UnitMilliliters: 1,
	domain.UnitLiters:      1000,
	domain.UnitCups:        240,
	domain.UnitTablespoons: 15,
	domain.UnitPieces:      100,
}

const (
	defaultGramsPerUnit = 100
	kcalPerGram         = 1.5

	estimateProteinShare = 0.20
	estimateCarbsShare   = 0.50
	estimateFatShare     = 0.30
)

// Grams converts quantity in unit to gram equivalents.
func Grams(quantity float64, unit domain.Unit) float64 {
	per, ok := gramEquivalents[unit]
	if !ok {
		per = defaultGramsPerUnit
	}
	return quantity * per
}

// EstimateFood is the heuristic used when no better nutrition data is
// available: a mixed-food energy density with a 20/50/30 energy split.
// Quantities above domain.MaxQuantity are capped.
func EstimateFood(quantity float64, unit domain.Unit) domain.Macros {
	if quantity <= 0 || math.IsNaN(quantity) {
		return domain.Macros{}
	}
	quantity = math.Min(quantity, domain.MaxQuantity)
	kcal := Grams(quantity, unit) * kcalPerGram
	return domain.Macros{
		Calories: int(math.Round(kcal)),
		Protein:  int(math.Round(kcal * estimateProteinShare / kcalPerGramProtein)),
		Carbs:    int(math.Round(kcal * estimateCarbsShare / kcalPerGramCarbs)),
		Fat:      int(math.Round(kcal * estimateFatShare / kcalPerGramFat)),
	}
}
