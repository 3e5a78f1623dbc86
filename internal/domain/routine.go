// internal/domain/routine.go
package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"befit/fitness-app/internal/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutinePlan is the generated weekly plan.
type RoutinePlan struct {
	WeekPlan   []DayPlan `bson:"weekPlan" json:"weekPlan"`
	Tips       []string  `bson:"tips,omitempty" json:"tips,omitempty"`
	WeeklyGoal string    `bson:"weeklyGoal,omitempty" json:"weeklyGoal,omitempty"`
}

// Validate checks every day and rejects duplicate day names, since progress is
// keyed by day.
func (p RoutinePlan) Validate() error {
	if len(p.WeekPlan) == 0 {
		return errInvalidPlan("week plan has no days")
	}
	seen := make(map[string]bool, len(p.WeekPlan))
	for _, d := range p.WeekPlan {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Day] {
			return errInvalidPlan("day %q appears twice", d.Day)
		}
		seen[d.Day] = true
	}
	return nil
}

// Progress is the durable completion matrix: day name -> stringified exercise
// index -> completed.
type Progress map[string]map[string]bool

// Set records completion for (day, index), creating the day slice when needed.
func (p Progress) Set(day string, exerciseIndex int, completed bool) {
	if p[day] == nil {
		p[day] = make(map[string]bool)
	}
	p[day][strconv.Itoa(exerciseIndex)] = completed
}

func (p Progress) IsCompleted(day string, exerciseIndex int) bool {
	return p[day][strconv.Itoa(exerciseIndex)]
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	out := make(Progress, len(p))
	for day, entries := range p {
		m := make(map[string]bool, len(entries))
		for k, v := range entries {
			m[k] = v
		}
		out[day] = m
	}
	return out
}

// Routine is a user's weekly exercise plan with its completion matrix.
// At most one routine per user is active.
type Routine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	WeekStart string             `bson:"weekStart" json:"weekStart"` // YYYY-MM-DD, a Monday
	Plan      RoutinePlan        `bson:"plan" json:"plan"`
	Progress  Progress           `bson:"progress" json:"progress"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Day returns the plan for the named day.
func (r *Routine) Day(name string) (DayPlan, bool) {
	for _, d := range r.Plan.WeekPlan {
		if d.Day == name {
			return d, true
		}
	}
	return DayPlan{}, false
}

// CheckExercise verifies that (day, index) addresses an exercise of the plan.
func (r *Routine) CheckExercise(day string, exerciseIndex int) error {
	d, ok := r.Day(day)
	if !ok {
		return errInvalidPlan("routine has no day %q", day)
	}
	if exerciseIndex < 0 || exerciseIndex >= len(d.Exercises) {
		return errInvalidPlan("exercise index %d out of range for %s", exerciseIndex, day)
	}
	return nil
}

// CompletionPercentage is completed / total exercises across the whole week,
// rounded to the nearest integer. Entries that do not address a planned
// exercise are ignored.
func (r *Routine) CompletionPercentage() int {
	return CompletionPercentage(r.Plan, r.Progress)
}

func CompletionPercentage(plan RoutinePlan, progress Progress) int {
	total, completed := 0, 0
	for _, d := range plan.WeekPlan {
		total += len(d.Exercises)
		for i := range d.Exercises {
			if progress.IsCompleted(d.Day, i) {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// WeekStart returns the Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func errInvalidPlan(format string, args ...interface{}) error {
	return apperrors.Validation("routine.plan", fmt.Sprintf(format, args...))
}
