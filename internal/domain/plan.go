package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType distinguishes diet plans from training program plans.
type PlanType string

const (
	PlanDiet    PlanType = "diet"
	PlanProgram PlanType = "program"
)

// Plan is a diet or program plan authored by a trainer and assignable to
// the trainer's clients.
type Plan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Type        PlanType           `bson:"type" json:"type"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Days        []PlanDay          `bson:"days,omitempty" json:"days,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanDay is one day of a plan. Diet plans fill Meals, program plans fill
// Exercises; a day may carry both for combined plans.
type PlanDay struct {
	Day       string         `bson:"day" json:"day"` // e.g. "Monday"
	Meals     []PlanMeal     `bson:"meals,omitempty" json:"meals,omitempty"`
	Exercises []PlanExercise `bson:"exercises,omitempty" json:"exercises,omitempty"`
}

type PlanMeal struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Category    string `bson:"category,omitempty" json:"category,omitempty"` // e.g. "breakfast"
}

type PlanExercise struct {
	Name string `bson:"name" json:"name"`
	Sets int    `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps int    `bson:"reps,omitempty" json:"reps,omitempty"`
	Note string `bson:"note,omitempty" json:"note,omitempty"`
}
