package domain

import "time"

// EventType names a change pushed to listeners.
type EventType string

const (
	EventNutritionGoalsUpdated EventType = "nutrition-goals-updated"
	EventDietPlanCreated       EventType = "diet-plan-created"
	EventDietPlanUpdated       EventType = "diet-plan-updated"
	EventFoodLogUpdated        EventType = "food-log-updated"
)

// Event is a best-effort "field updated" notification for one user.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"userId"`
	Field     string    `json:"field"` // throttling key together with UserID
	Payload   any       `json:"payload,omitempty"`
	EmittedAt time.Time `json:"emittedAt"`
}
