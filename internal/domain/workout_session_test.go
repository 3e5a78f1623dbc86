package domain

import (
	"testing"
	"time"
)

func TestDurationSecondsFloorsAndClamps(t *testing.T) {
	start := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	if got := DurationSeconds(start, start.Add(95*time.Second+900*time.Millisecond)); got != 95 {
		t.Errorf("duration = %d, want 95", got)
	}
	if got := DurationSeconds(start, start.Add(-time.Minute)); got != 0 {
		t.Errorf("negative duration = %d, want 0", got)
	}
}

func TestValidRestSeconds(t *testing.T) {
	for _, s := range []int{1, 60, 300} {
		if !ValidRestSeconds(s) {
			t.Errorf("ValidRestSeconds(%d) = false", s)
		}
	}
	for _, s := range []int{0, -5, 301} {
		if ValidRestSeconds(s) {
			t.Errorf("ValidRestSeconds(%d) = true", s)
		}
	}
}

func TestNewSessionReport(t *testing.T) {
	start := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	total := 1800
	s := &WorkoutSession{
		DayName:            "Lunes",
		StartTime:          start,
		EndTime:            &end,
		TotalDuration:      &total,
		ExercisesCompleted: 2,
		ExerciseData: []ExerciseSessionData{
			{ExerciseIndex: 0, Name: "Sentadilla", TimeSpent: 300, SetsCompleted: 3},
			{ExerciseIndex: 1, Name: "Press", TimeSpent: 420, SetsCompleted: 3},
		},
	}
	r := NewSessionReport(s, end)
	if r.TotalDuration != 1800 || !r.EndTime.Equal(end) {
		t.Errorf("report timing mismatch: %+v", r)
	}
	if r.TimeOnExercises != 720 {
		t.Errorf("time on exercises = %d, want 720", r.TimeOnExercises)
	}
}
