// Package generator produces weekly routine plans from a user profile.
package generator

import (
	"context"
	"fmt"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"
)

// Goal values accepted in a Profile.
const (
	GoalLoseFat       = "lose_fat"
	GoalGainMuscle    = "gain_muscle"
	GoalMaintain      = "maintain"
	GoalImproveHealth = "improve_health"
)

// Activity levels, from least to most active.
var activityLevels = []string{"sedentary", "light", "moderate", "active", "very_active"}

// Profile is the input of a routine generation.
type Profile struct {
	Goal          string  `json:"goal"`
	ActivityLevel string  `json:"activityLevel,omitempty"`
	Age           int     `json:"age,omitempty"`
	WeightKg      float64 `json:"weight,omitempty"`
	HeightCm      float64 `json:"height,omitempty"`
	Gender        string  `json:"gender,omitempty"`
}

// Validate requires a known goal. The remaining fields are optional.
func (p Profile) Validate() error {
	switch p.Goal {
	case GoalLoseFat, GoalGainMuscle, GoalMaintain, GoalImproveHealth:
	case "":
		return apperrors.Validation("routine.generate", "please complete your profile goal first")
	default:
		return apperrors.Validation("routine.generate", fmt.Sprintf("unknown goal %q", p.Goal))
	}
	if p.ActivityLevel != "" && activityIndex(p.ActivityLevel) < 0 {
		return apperrors.Validation("routine.generate", fmt.Sprintf("unknown activity level %q", p.ActivityLevel))
	}
	return nil
}

func activityIndex(level string) int {
	for i, l := range activityLevels {
		if l == level {
			return i
		}
	}
	return -1
}

// ContentGenerator turns a profile into a week plan. Implementations may call
// out to external providers; the returned plan is validated by the caller.
type ContentGenerator interface {
	GenerateRoutine(ctx context.Context, profile Profile) (domain.RoutinePlan, error)
}
