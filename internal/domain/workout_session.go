// internal/domain/workout_session.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus tracks the server-side lifecycle of a WorkoutSession.
type SessionStatus string

const (
	SessionOpen      SessionStatus = "open"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned" // open too long, closed by the sweeper
)

const (
	DefaultRestSeconds = 60
	MinRestSeconds     = 1
	MaxRestSeconds     = 300
)

// RestPresets are the rest durations offered for quick selection.
var RestPresets = []int{30, 45, 60, 90, 120}

// ValidRestSeconds reports whether s is an acceptable rest duration.
func ValidRestSeconds(s int) bool {
	return s >= MinRestSeconds && s <= MaxRestSeconds
}

// ExerciseSessionData is the per-exercise record of one session.
type ExerciseSessionData struct {
	ExerciseIndex int    `bson:"exerciseIndex" json:"exerciseIndex"`
	Name          string `bson:"name" json:"name"`
	TimeSpent     int    `bson:"timeSpent" json:"timeSpent"`         // seconds
	EstimatedTime int    `bson:"estimatedTime" json:"estimatedTime"` // seconds
	SetsCompleted int    `bson:"setsCompleted" json:"setsCompleted"`
}

// WorkoutSession is one execution of a routine day. EndTime and TotalDuration
// are written once, at completion.
type WorkoutSession struct {
	ID                 primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID    `bson:"userId" json:"userId"`
	RoutineID          primitive.ObjectID    `bson:"routineId" json:"routineId"`
	DayName            string                `bson:"dayName" json:"dayName"`
	StartTime          time.Time             `bson:"startTime" json:"startTime"`
	EndTime            *time.Time            `bson:"endTime,omitempty" json:"endTime,omitempty"`
	TotalDuration      *int                  `bson:"totalDuration,omitempty" json:"totalDuration,omitempty"` // seconds
	ExercisesCompleted int                   `bson:"exercisesCompleted" json:"exercisesCompleted"`
	ExerciseData       []ExerciseSessionData `bson:"exerciseData" json:"exerciseData"`
	RestTimeUsed       int                   `bson:"restTimeUsed" json:"restTimeUsed"`
	IsCompleted        bool                  `bson:"isCompleted" json:"isCompleted"`
	Status             SessionStatus         `bson:"status" json:"status"`
	ReportKey          string                `bson:"reportKey,omitempty" json:"-"`
	CreatedAt          time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// DurationSeconds is floor(end - start) in seconds, never negative.
func DurationSeconds(start, end time.Time) int {
	d := int(end.Sub(start) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// SessionStats aggregates a user's completed sessions.
type SessionStats struct {
	TotalSessions      int `json:"totalSessions"`
	TotalTime          int `json:"totalTime"`          // seconds
	AvgSessionDuration int `json:"avgSessionDuration"` // seconds, rounded
	ExercisesCompleted int `json:"exercisesCompleted"`
	ThisWeek           int `json:"thisWeek"`
	ThisMonth          int `json:"thisMonth"`
}
