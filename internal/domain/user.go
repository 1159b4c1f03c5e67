package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender of the user, used by the BMR formula.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// NormalizeActivityLevel maps the legacy "very active" spelling onto very_active.
func NormalizeActivityLevel(s string) ActivityLevel {
	switch s {
	case "very active", "very-active":
		return ActivityVeryActive
	}
	return ActivityLevel(s)
}

// DietType values shared by dietaryPreference and dietType.
const (
	DietBalanced      = "balanced"
	DietVegetarian    = "vegetarian"
	DietVegan         = "vegan"
	DietNonVegetarian = "non-vegetarian"
	DietEggetarian    = "eggetarian"
	DietPescatarian   = "pescatarian"
)

// DietOther is accepted as a dietaryPreference only.
const DietOther = "other"

var dietTypes = map[string]bool{
	DietVegetarian:    true,
	DietVegan:         true,
	DietNonVegetarian: true,
	DietEggetarian:    true,
	DietPescatarian:   true,
	DietBalanced:      true,
}

// ValidDietType reports whether d may appear in dietType.
func ValidDietType(d string) bool { return dietTypes[d] }

// ValidDietaryPreference also allows "other".
func ValidDietaryPreference(d string) bool { return d == DietOther || dietTypes[d] }

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User is the account together with its nutrition profile.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // never exposed

	Age               int           `bson:"age,omitempty" json:"age,omitempty"`
	Weight            float64       `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Height            float64       `bson:"height,omitempty" json:"height,omitempty"` // cm
	Gender            Gender        `bson:"gender,omitempty" json:"gender,omitempty"`
	ActivityLevel     ActivityLevel `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
	DietaryPreference string        `bson:"dietaryPreference,omitempty" json:"dietaryPreference,omitempty"`
	// DietType is always a list; a scalar from older clients becomes a one-element list.
	DietType            []string       `bson:"dietType,omitempty" json:"dietType,omitempty"`
	RegionalCuisines    []string       `bson:"regionalCuisines,omitempty" json:"regionalCuisines,omitempty"` // first is primary
	Allergies           []string       `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Goals               []string       `bson:"goals,omitempty" json:"goals,omitempty"`
	DailyNutritionGoals NutritionGoals `bson:"dailyNutritionGoals" json:"dailyNutritionGoals"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PrimaryDietType resolves the diet used for meal planning: the first dietType
// entry, then dietaryPreference, then balanced.
func (u *User) PrimaryDietType() string {
	for _, d := range u.DietType {
		if d != "" {
			return d
		}
	}
	if u.DietaryPreference != "" {
		return u.DietaryPreference
	}
	return DietBalanced
}

// MissingGoalAttributes lists the profile fields required to compute nutrition goals.
func (u *User) MissingGoalAttributes() []string {
	var missing []string
	if u.Age <= 0 {
		missing = append(missing, "age")
	}
	if u.Weight <= 0 {
		missing = append(missing, "weight")
	}
	if u.Height <= 0 {
		missing = append(missing, "height")
	}
	if u.Gender == "" {
		missing = append(missing, "gender")
	}
	if u.ActivityLevel == "" {
		missing = append(missing, "activityLevel")
	}
	return missing
}

// MissingPlanAttributes additionally requires a diet preference.
func (u *User) MissingPlanAttributes() []string {
	missing := u.MissingGoalAttributes()
	if u.DietaryPreference == "" && len(CompactStrings(u.DietType)) == 0 {
		missing = append(missing, "dietType")
	}
	return missing
}

// CompactStrings drops empty entries, keeping order.
func CompactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
