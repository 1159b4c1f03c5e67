package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nutrify/diet-tracker/internal/domain"
)

func TestEstimateFood(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		quantity float64
		unit     domain.Unit
		want     domain.Macros
	}{
		{"100 grams", 100, domain.UnitGrams, domain.Macros{Calories: 150, Protein: 8, Carbs: 19, Fat: 5}},
		{"two pieces", 2, domain.UnitPieces, domain.Macros{Calories: 300, Protein: 15, Carbs: 38, Fat: 10}},
		{"one cup", 1, domain.UnitCups, domain.Macros{Calories: 360, Protein: 18, Carbs: 45, Fat: 12}},
		{"unknown unit counts as a serving", 1, "bowl", domain.Macros{Calories: 150, Protein: 8, Carbs: 19, Fat: 5}},
		{"zero quantity", 0, domain.UnitGrams, domain.Macros{}},
		{"huge quantity is capped", 1e300, domain.UnitKilograms, domain.Macros{Calories: 150000000, Protein: 7500000, Carbs: 18750000, Fat: 5000000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateFood(tt.quantity, tt.unit))
		})
	}
}

func TestEstimateFood_NeverNegative(t *testing.T) {
	t.Parallel()

	for _, unit := range []domain.Unit{domain.UnitKilograms, domain.UnitPounds, domain.UnitLiters} {
		for _, q := range []float64{domain.MaxQuantity, 1e18, 1e300} {
			m := EstimateFood(q, unit)
			assert.Positive(t, m.Calories, "%v %s", q, unit)
			assert.GreaterOrEqual(t, m.Protein, 0)
			assert.GreaterOrEqual(t, m.Carbs, 0)
			assert.GreaterOrEqual(t, m.Fat, 0)
		}
	}
}

func TestGrams(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1500.0, Grams(1.5, domain.UnitKilograms))
	assert.Equal(t, 250.0, Grams(0.25, domain.UnitLiters))
	assert.InDelta(t, 56.7, Grams(2, domain.UnitOunces), 1e-9)
	assert.InDelta(t, 453.6, Grams(1, domain.UnitPounds), 1e-9)
	assert.Equal(t, 45.0, Grams(3, domain.UnitTablespoons))
}
