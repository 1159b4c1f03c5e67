// Package nutrition holds the deterministic nutrition math: energy
// expenditure, macro targets, the fallback meal table and quantity based
// food estimates. Everything here is pure and safe for concurrent use.
package nutrition

import (
	"math"

	"nutrify/diet-tracker/internal/domain"
)

// DefaultActivityMultiplier applies to unknown activity levels.
const DefaultActivityMultiplier = 1.55

var activityMultipliers = map[domain.ActivityLevel]float64{
	domain.ActivitySedentary:  1.2,
	domain.ActivityLight:      1.375,
	domain.ActivityModerate:   1.55,
	domain.ActivityActive:     1.725,
	domain.ActivityVeryActive: 1.9,
}

// ActivityMultiplier returns the TDEE multiplier for level.
func ActivityMultiplier(level domain.ActivityLevel) float64 {
	if m, ok := activityMultipliers[domain.NormalizeActivityLevel(string(level))]; ok {
		return m
	}
	return DefaultActivityMultiplier
}

// ValidActivityLevel reports whether level has a dedicated multiplier.
func ValidActivityLevel(level domain.ActivityLevel) bool {
	_, ok := activityMultipliers[domain.NormalizeActivityLevel(string(level))]
	return ok
}

// BMR computes the basal metabolic rate with the revised Harris-Benedict
// equation. Anything other than male uses the female constants.
// Weight and height must be positive; callers validate.
func BMR(gender domain.Gender, weightKg, heightCm float64, age int) float64 {
	if gender == domain.GenderMale {
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*float64(age)
	}
	return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*float64(age)
}

// TDEE is the daily calorie target: BMR scaled by activity, rounded.
func TDEE(gender domain.Gender, weightKg, heightCm float64, age int, level domain.ActivityLevel) int {
	return int(math.Round(BMR(gender, weightKg, heightCm, age) * ActivityMultiplier(level)))
}

// FallbackGoals derives nutrition goals for u without any external service.
func FallbackGoals(u *domain.User) domain.NutritionGoals {
	tdee := TDEE(u.Gender, u.Weight, u.Height, u.Age, u.ActivityLevel)
	return AllocateMacros(tdee, u.Weight)
}
