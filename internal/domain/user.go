package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account owning routines and workout sessions.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash        string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	OnboardingCompleted bool               `bson:"onboardingCompleted" json:"onboardingCompleted"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
