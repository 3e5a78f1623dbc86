package workout

import "befit/fitness-app/internal/domain"

// ExerciseProgressTracker owns the per-exercise session records, one entry per
// exercise of the day plan, indexed by position. Out-of-range indices are
// ignored rather than reported.
type ExerciseProgressTracker struct {
	data     []domain.ExerciseSessionData
	required []int // configured set count per index
}

// Summary feeds the end-of-session report.
type Summary struct {
	ExercisesCompleted int // exercises with at least one set done
	TotalTimeSpent     int // seconds
	Exercises          []domain.ExerciseSessionData
}

func NewExerciseProgressTracker() *ExerciseProgressTracker {
	return &ExerciseProgressTracker{}
}

// Initialize builds a fresh entry for every exercise of day.
func (t *ExerciseProgressTracker) Initialize(day domain.DayPlan) {
	t.data = make([]domain.ExerciseSessionData, len(day.Exercises))
	t.required = make([]int, len(day.Exercises))
	for i, ex := range day.Exercises {
		t.data[i] = domain.ExerciseSessionData{
			ExerciseIndex: i,
			Name:          ex.Name,
			EstimatedTime: ex.EstimatedSeconds(),
		}
		t.required[i] = ex.Sets
	}
}

// Reset drops all entries.
func (t *ExerciseProgressTracker) Reset() {
	t.data = nil
	t.required = nil
}

func (t *ExerciseProgressTracker) Len() int { return len(t.data) }

func (t *ExerciseProgressTracker) inRange(i int) bool {
	return i >= 0 && i < len(t.data)
}

// RecordSetCompletion sets the completed set count for exerciseIndex and adds
// timeToAdd seconds to its cumulative time. The set count never decreases and
// never exceeds the exercise's configured sets.
func (t *ExerciseProgressTracker) RecordSetCompletion(exerciseIndex, setsNowCompleted, timeToAdd int) {
	if !t.inRange(exerciseIndex) {
		return
	}
	entry := &t.data[exerciseIndex]
	if limit := t.required[exerciseIndex]; setsNowCompleted > limit {
		setsNowCompleted = limit
	}
	if setsNowCompleted > entry.SetsCompleted {
		entry.SetsCompleted = setsNowCompleted
	}
	if timeToAdd > 0 {
		entry.TimeSpent += timeToAdd
	}
}

// OverrideEstimate replaces the estimate for exerciseIndex. Non-positive
// values are rejected.
func (t *ExerciseProgressTracker) OverrideEstimate(exerciseIndex, newEstimateSeconds int) bool {
	if !t.inRange(exerciseIndex) || newEstimateSeconds <= 0 {
		return false
	}
	t.data[exerciseIndex].EstimatedTime = newEstimateSeconds
	return true
}

func (t *ExerciseProgressTracker) IsExerciseFullyCompleted(exerciseIndex, requiredSets int) bool {
	if !t.inRange(exerciseIndex) {
		return false
	}
	return t.data[exerciseIndex].SetsCompleted >= requiredSets
}

// Entry returns a copy of the record for exerciseIndex.
func (t *ExerciseProgressTracker) Entry(exerciseIndex int) (domain.ExerciseSessionData, bool) {
	if !t.inRange(exerciseIndex) {
		return domain.ExerciseSessionData{}, false
	}
	return t.data[exerciseIndex], true
}

// Snapshot returns a copy of all records.
func (t *ExerciseProgressTracker) Snapshot() []domain.ExerciseSessionData {
	out := make([]domain.ExerciseSessionData, len(t.data))
	copy(out, t.data)
	return out
}

func (t *ExerciseProgressTracker) Summary() Summary {
	s := Summary{Exercises: t.Snapshot()}
	for _, e := range t.data {
		if e.SetsCompleted > 0 {
			s.ExercisesCompleted++
		}
		s.TotalTimeSpent += e.TimeSpent
	}
	return s
}
