package ai

import (
	"fmt"
	"strconv"
	"strings"

	"nutrify/diet-tracker/internal/domain"
)

const goalsSchema = `{ "calories": 0, "protein": 0, "carbs": 0, "fat": 0 }`

const planSchema = `{
  "title": "7-Day Diet Plan",
  "description": "Personalized diet plan",
  "days": [
    {
      "day": "Monday",
      "meals": {
        "breakfast": { "name": "", "description": "", "calories": 0, "protein": 0, "carbs": 0, "fat": 0 },
        "lunch": { ... },
        "dinner": { ... },
        "snacks": [
          { "name": "", "description": "", "calories": 0, "protein": 0, "carbs": 0, "fat": 0 }
        ]
      }
    }
  ]
}`

// profileLines renders the user attributes shared by the goal and plan prompts.
func profileLines(u *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Age: %d, Gender: %s, Weight: %skg, Height: %scm,\n",
		u.Age, u.Gender, formatFloat(u.Weight), formatFloat(u.Height))
	fmt.Fprintf(&b, "Activity Level: %s,\n", u.ActivityLevel)
	fmt.Fprintf(&b, "Diet Type: %s,\n", strings.Join(dietTypes(u), ", "))
	if regions := domain.CompactStrings(u.RegionalCuisines); len(regions) > 0 {
		fmt.Fprintf(&b, "Regional Cuisine Preferences: %s.\n", strings.Join(regions, ", "))
	}
	if len(u.Allergies) > 0 {
		fmt.Fprintf(&b, "Allergies: %s.\n", strings.Join(u.Allergies, ", "))
	}
	if len(u.Goals) > 0 {
		fmt.Fprintf(&b, "Goals: %s.\n", strings.Join(u.Goals, ", "))
	}
	return b.String()
}

func dietTypes(u *domain.User) []string {
	if d := domain.CompactStrings(u.DietType); len(d) > 0 {
		return d
	}
	return []string{u.PrimaryDietType()}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// BuildGoalsPrompt asks for daily calorie and macro targets.
func BuildGoalsPrompt(u *domain.User) string {
	var b strings.Builder
	b.WriteString("Calculate daily nutrition goals as a strict JSON object with no extra text.\n")
	b.WriteString("Follow this schema (integers; protein, carbs and fat in grams):\n")
	b.WriteString(goalsSchema)
	b.WriteString("\nUser info:\n")
	b.WriteString(profileLines(u))
	g := u.DailyNutritionGoals
	fmt.Fprintf(&b, "Current goals: %d kcal, %dg protein, %dg carbs, %dg fat.\n", g.Calories, g.Protein, g.Carbs, g.Fat)
	b.WriteString("Return ONLY valid JSON.")
	return b.String()
}

// BuildPlanPrompt asks for a 7-day plan that fits goals.
func BuildPlanPrompt(u *domain.User, goals domain.NutritionGoals) string {
	var b strings.Builder
	b.WriteString("Generate a 7-day diet plan as a strict JSON object with no extra text.\n")
	b.WriteString("Follow this schema:\n")
	b.WriteString(planSchema)
	b.WriteString("\nUser info:\n")
	b.WriteString(profileLines(u))
	fmt.Fprintf(&b, "Daily targets: %d kcal, %dg protein, %dg carbs, %dg fat.\n",
		goals.Calories, goals.Protein, goals.Carbs, goals.Fat)
	b.WriteString("Create a diet plan that incorporates the user's regional cuisine preferences if specified.\n")
	b.WriteString("Use the days Monday through Sunday in order. All nutrition values are non-negative integers.\n")
	b.WriteString("Return ONLY valid JSON.")
	return b.String()
}

// BuildFoodPrompt asks for the nutrition values of a logged food.
func BuildFoodPrompt(foodName string, quantity float64, unit domain.Unit) string {
	var b strings.Builder
	b.WriteString("Estimate the nutrition values of the following food as a strict JSON object with no extra text.\n")
	b.WriteString("Follow this schema (integers; protein, carbs and fat in grams):\n")
	b.WriteString(goalsSchema)
	fmt.Fprintf(&b, "\nFood: %s\nQuantity: %s %s\n", foodName, formatFloat(quantity), unit)
	b.WriteString("Return ONLY valid JSON.")
	return b.String()
}
