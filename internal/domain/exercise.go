// internal/domain/exercise.go
package domain

import "strings"

// DefaultEstimatedSeconds seeds an exercise timer when the plan gives no estimate.
const DefaultEstimatedSeconds = 180

// Exercise is one entry of a DayPlan. Reps and Rest are display labels and may be
// non-numeric ("hasta el fallo").
type Exercise struct {
	Name          string `bson:"name" json:"name"`
	Sets          int    `bson:"sets" json:"sets"` // positive
	Reps          string `bson:"reps" json:"reps"`
	Rest          string `bson:"rest" json:"rest"`
	EstimatedTime int    `bson:"estimatedTime,omitempty" json:"estimatedTime,omitempty"` // seconds for all sets
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// EstimatedSeconds returns the configured estimate or the default.
func (e Exercise) EstimatedSeconds() int {
	if e.EstimatedTime > 0 {
		return e.EstimatedTime
	}
	return DefaultEstimatedSeconds
}

// DayPlan is the plan for a single weekday. Exercise order is fixed once the
// routine is created because progress is keyed by index.
type DayPlan struct {
	Day       string     `bson:"day" json:"day"` // e.g. "Lunes"
	Focus     string     `bson:"focus" json:"focus"`
	Exercises []Exercise `bson:"exercises" json:"exercises"`
	Duration  string     `bson:"duration" json:"duration"`
	Calories  int        `bson:"calories" json:"calories"`
}

// Validate checks the structural rules a plan must satisfy before it is stored.
func (d DayPlan) Validate() error {
	if strings.TrimSpace(d.Day) == "" {
		return errInvalidPlan("day name is required")
	}
	if strings.ContainsAny(d.Day, ".$") {
		return errInvalidPlan("day name %q contains reserved characters", d.Day)
	}
	for i, ex := range d.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return errInvalidPlan("%s: exercise %d has no name", d.Day, i)
		}
		if ex.Sets <= 0 {
			return errInvalidPlan("%s: exercise %q must have at least one set", d.Day, ex.Name)
		}
		if ex.EstimatedTime < 0 {
			return errInvalidPlan("%s: exercise %q has a negative estimate", d.Day, ex.Name)
		}
	}
	return nil
}
