package models

import (
	"time"

	"github.com/google/uuid"
)

// Sender values for chat messages and replies.
const (
	SenderTrainer  = "trainer"
	SenderCustomer = "customer"
)

// Customer is a trainer's client.
type Customer struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Language        string           `json:"language"`
	Goal            *WeightGoal      `json:"goal,omitempty"`
	NutritionTarget *NutritionTarget `json:"nutrition_target,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// WeightGoal is the weight a customer wants to reach by a date.
type WeightGoal struct {
	StartWeightKg  float64   `json:"start_weight_kg"`
	TargetWeightKg float64   `json:"target_weight_kg"`
	StartDate      time.Time `json:"start_date"`
	TargetDate     time.Time `json:"target_date"`
}

// NutritionTarget is a customer's daily intake target.
type NutritionTarget struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// WorkoutRow is a stored workout or template. Exercises hold encoded
// exercise strings in display order.
type WorkoutRow struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Name       string
	Date       *time.Time
	IsTemplate bool
	Exercises  []string
	Notes      string
	Source     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Message is a top-level chat message with its replies.
type Message struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Sender     string    `json:"sender"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	Replies    []Reply   `json:"replies"`
}

// Reply answers a message.
type Reply struct {
	ID        uuid.UUID `json:"id"`
	MessageID uuid.UUID `json:"message_id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// WeightEntry is one weigh-in.
type WeightEntry struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Date       time.Time `json:"date"`
	WeightKg   float64   `json:"weight_kg"`
	Note       string    `json:"note,omitempty"`
}

// Meal is one logged meal.
type Meal struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Date       time.Time `json:"date"`
	Name       string    `json:"name"`
	Calories   int       `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
}
