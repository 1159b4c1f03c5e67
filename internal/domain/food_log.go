package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType of a food log entry.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes in display order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Valid reports whether t is a known meal type.
func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Unit of a logged quantity.
type Unit string

const (
	UnitGrams       Unit = "grams"
	UnitKilograms   Unit = "kg"
	UnitPieces      Unit = "pieces"
	UnitCups        Unit = "cups"
	UnitTablespoons Unit = "tablespoons"
	UnitMilliliters Unit = "ml"
	UnitLiters      Unit = "liters"
	UnitOunces      Unit = "ounces"
	UnitPounds      Unit = "pounds"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitGrams, UnitKilograms, UnitPieces, UnitCups, UnitTablespoons,
		UnitMilliliters, UnitLiters, UnitOunces, UnitPounds:
		return true
	}
	return false
}

// MaxQuantity bounds a logged quantity in any unit.
const MaxQuantity = 100000

// FoodLogEntry records one eaten food.
type FoodLogEntry struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	MealType        MealType            `bson:"mealType" json:"mealType"`
	FoodName        string              `bson:"foodName" json:"foodName"`
	Quantity        float64             `bson:"quantity" json:"quantity"` // (0, MaxQuantity]
	Unit            Unit                `bson:"unit" json:"unit"`
	Calories        int                 `bson:"calories" json:"calories"`
	Protein         int                 `bson:"protein" json:"protein"`
	Carbs           int                 `bson:"carbs" json:"carbs"`
	Fat             int                 `bson:"fat" json:"fat"`
	NutritionSource Source              `bson:"nutritionSource" json:"nutritionSource"` // user, ai or estimate
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Date            time.Time           `bson:"date" json:"date"`
	PhotoID         *primitive.ObjectID `bson:"photoId,omitempty" json:"photoId,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Macros returns the nutrition values of the entry.
func (e *FoodLogEntry) Macros() Macros {
	return Macros{Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}

// SetMacros overwrites the nutrition values of the entry.
func (e *FoodLogEntry) SetMacros(m Macros, source Source) {
	e.Calories, e.Protein, e.Carbs, e.Fat = m.Calories, m.Protein, m.Carbs, m.Fat
	e.NutritionSource = source
}

// FoodLogFilter narrows a food log query. Zero values mean no restriction.
type FoodLogFilter struct {
	UserID   primitive.ObjectID
	From     *time.Time // inclusive
	To       *time.Time // inclusive
	MealType MealType
}

// NutritionSummary aggregates a day of food log entries against the user's goals.
type NutritionSummary struct {
	Date       string              `json:"date"` // YYYY-MM-DD
	Totals     Macros              `json:"totals"`
	ByMealType map[MealType]Macros `json:"byMealType"`
	EntryCount int                 `json:"entryCount"`
	Goals      NutritionGoals      `json:"goals"`
	Remaining  Macros              `json:"remaining"` // goal minus total, may be negative
}
