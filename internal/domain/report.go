package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionReport is the document archived to object storage when a session
// completes. The archive key is kept on the session as ReportKey.
type SessionReport struct {
	SessionID          primitive.ObjectID    `json:"sessionId"`
	UserID             primitive.ObjectID    `json:"userId"`
	RoutineID          primitive.ObjectID    `json:"routineId"`
	DayName            string                `json:"dayName"`
	StartTime          time.Time             `json:"startTime"`
	EndTime            time.Time             `json:"endTime"`
	TotalDuration      int                   `json:"totalDuration"`
	ExercisesCompleted int                   `json:"exercisesCompleted"`
	RestTimeUsed       int                   `json:"restTimeUsed"`
	TimeOnExercises    int                   `json:"timeOnExercises"` // sum of per-exercise time
	Exercises          []ExerciseSessionData `json:"exercises"`
	GeneratedAt        time.Time             `json:"generatedAt"`
}

// NewSessionReport builds a report from a completed session.
func NewSessionReport(s *WorkoutSession, generatedAt time.Time) SessionReport {
	r := SessionReport{
		SessionID:          s.ID,
		UserID:             s.UserID,
		RoutineID:          s.RoutineID,
		DayName:            s.DayName,
		StartTime:          s.StartTime,
		ExercisesCompleted: s.ExercisesCompleted,
		RestTimeUsed:       s.RestTimeUsed,
		Exercises:          s.ExerciseData,
		GeneratedAt:        generatedAt,
	}
	if s.EndTime != nil {
		r.EndTime = *s.EndTime
	}
	if s.TotalDuration != nil {
		r.TotalDuration = *s.TotalDuration
	}
	for _, ex := range s.ExerciseData {
		r.TimeOnExercises += ex.TimeSpent
	}
	return r
}
