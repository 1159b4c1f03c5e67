// internal/domain/diet_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DaysPerPlan is the fixed length of a diet plan, Monday through Sunday.
const DaysPerPlan = 7

// WeekDays are the plan day names in order.
var WeekDays = [DaysPerPlan]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Meal is a single dish with its nutrition values.
type Meal struct {
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Calories    int    `bson:"calories" json:"calories"`
	Protein     int    `bson:"protein" json:"protein"`
	Carbs       int    `bson:"carbs" json:"carbs"`
	Fat         int    `bson:"fat" json:"fat"`
}

// Macros returns the nutrition values of the meal.
func (m Meal) Macros() Macros {
	return Macros{Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat}
}

// DayMeals groups the meals of one day.
type DayMeals struct {
	Breakfast Meal   `bson:"breakfast" json:"breakfast"`
	Lunch     Meal   `bson:"lunch" json:"lunch"`
	Dinner    Meal   `bson:"dinner" json:"dinner"`
	Snacks    []Meal `bson:"snacks" json:"snacks"`
}

// DayPlan is one day of a diet plan.
type DayPlan struct {
	Day   string   `bson:"day" json:"day"`
	Meals DayMeals `bson:"meals" json:"meals"`
}

// DietPlan is a weekly meal plan owned by a user. The most recently updated
// plan of a user is the active one.
type DietPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Days        []DayPlan          `bson:"days" json:"days"`
	Source      Source             `bson:"source" json:"source"` // ai, fallback or manual
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DefaultDietPlanTitle is used when a plan is saved without a title.
const DefaultDietPlanTitle = "7-Day Diet Plan"
