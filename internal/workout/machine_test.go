package workout

import (
	"context"
	"errors"
	"testing"
	"time"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"
)

func TestCompleteSetWalksSetsAndRests(t *testing.T) {
	day := domain.DayPlan{Day: "Martes", Exercises: []domain.Exercise{
		{Name: "Press banca", Sets: 4},
		{Name: "Fondos", Sets: 3},
	}}
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}

	n := day.Exercises[0].Sets
	for i := 1; i < n; i++ {
		f.machine.CompleteSet()
		s := f.machine.State()
		if s.Phase != PhaseResting || s.CurrentSet != i+1 || s.ExerciseIndex != 0 {
			t.Fatalf("after set %d: phase %v set %d index %d", i, s.Phase, s.CurrentSet, s.ExerciseIndex)
		}
		if s.RestRemaining != domain.DefaultRestSeconds {
			t.Fatalf("rest remaining = %d, want %d", s.RestRemaining, domain.DefaultRestSeconds)
		}
		f.machine.SkipRest()
	}
	if got := f.machine.State().RestsTaken; got != n-1 {
		t.Fatalf("rests within exercise = %d, want %d", got, n-1)
	}
	if f.progress.marked("Martes", 0) {
		t.Fatalf("exercise marked complete before its final set")
	}

	f.machine.CompleteSet()
	s := f.machine.State()
	if s.ExerciseIndex != 1 || s.CurrentSet != 1 || s.Phase != PhaseResting {
		t.Fatalf("after final set: index %d set %d phase %v", s.ExerciseIndex, s.CurrentSet, s.Phase)
	}
	if !f.progress.marked("Martes", 0) {
		t.Fatalf("final set did not mark exercise 0 in the routine progress")
	}
}

func TestLastSetOfLastExerciseAwaitsCompletion(t *testing.T) {
	day := domain.DayPlan{Day: "Jueves", Exercises: []domain.Exercise{{Name: "Plancha", Sets: 1, Reps: "hasta el fallo"}}}
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet()

	s := f.machine.State()
	if s.Phase != PhaseActive || !s.AwaitingCompletion {
		t.Fatalf("phase %v awaiting %v, want active and awaiting", s.Phase, s.AwaitingCompletion)
	}
	if s.RestsTaken != 0 || s.RestRemaining != 0 {
		t.Fatalf("no rest expected after the last set: %+v", s)
	}

	// Further CompleteSet calls change nothing.
	f.machine.CompleteSet()
	if got := f.machine.State().Exercises[0].SetsCompleted; got != 1 {
		t.Fatalf("sets completed = %d, want 1", got)
	}
	if f.machine.Phase() != PhaseActive {
		t.Fatalf("machine must not auto-complete")
	}
}

func TestEndToEndSessionCompletes(t *testing.T) {
	day := twoByTwoDay()
	routine := testRoutine(day)
	f := newFixture()
	ctx := context.Background()

	if err := f.machine.Start(ctx, routine, day); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 4; i++ {
		f.clock.Advance(30 * time.Second)
		f.machine.Tick()
		f.machine.CompleteSet()
		f.machine.SkipRest()
	}
	if !f.machine.State().AwaitingCompletion {
		t.Fatalf("all sets done but machine not awaiting completion")
	}

	saved, err := f.machine.Complete(ctx)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(f.gateway.completes) != 1 {
		t.Fatalf("gateway complete calls = %d, want 1", len(f.gateway.completes))
	}
	call := f.gateway.completes[0]
	if call.exercisesCompleted != 2 {
		t.Errorf("exercisesCompleted = %d, want 2", call.exercisesCompleted)
	}
	if len(call.exerciseData) != 2 || call.exerciseData[0].SetsCompleted != 2 || call.exerciseData[1].SetsCompleted != 2 {
		t.Fatalf("exercise data = %+v, want sets [2, 2]", call.exerciseData)
	}
	if call.exerciseData[0].TimeSpent != 60 || call.exerciseData[1].TimeSpent != 60 {
		t.Errorf("time spent = %d/%d, want 60/60", call.exerciseData[0].TimeSpent, call.exerciseData[1].TimeSpent)
	}
	if call.sessionID != f.gateway.lastSession.ID {
		t.Errorf("completed wrong session")
	}
	if !saved.IsCompleted || saved.TotalDuration == nil || *saved.TotalDuration < 0 {
		t.Fatalf("saved session = %+v", saved)
	}
	if !f.progress.marked("Lunes", 0) || !f.progress.marked("Lunes", 1) {
		t.Fatalf("routine progress missing: %+v", f.progress.calls)
	}

	s := f.machine.State()
	if s.Phase != PhaseCompleted || len(s.Exercises) != 0 || s.Day != "" {
		t.Fatalf("state not cleared after completion: %+v", s)
	}
}

func TestCompleteReconcilesMissedProgress(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	ctx := context.Background()
	if err := f.machine.Start(ctx, testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet()
	f.machine.SkipRest()
	f.machine.CompleteSet()
	// Drop the eager write to simulate one that never happened.
	f.progress.calls = nil

	if _, err := f.machine.Complete(ctx); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !f.progress.marked("Lunes", 0) {
		t.Fatalf("final pass did not reconcile exercise 0")
	}
	if f.progress.marked("Lunes", 1) {
		t.Fatalf("exercise 1 was never finished but got marked")
	}
	if got := f.gateway.completes[0].exercisesCompleted; got != 1 {
		t.Fatalf("exercisesCompleted = %d, want 1", got)
	}
}

func TestCancelKeepsEagerProgressOnly(t *testing.T) {
	day := domain.DayPlan{Day: "Viernes", Exercises: []domain.Exercise{
		{Name: "Peso muerto", Sets: 1},
		{Name: "Remo", Sets: 2},
	}}
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet() // finishes exercise 0
	f.machine.SkipRest()
	f.machine.CompleteSet() // 1 of 2 on exercise 1
	f.machine.Cancel()

	if len(f.gateway.completes) != 0 {
		t.Fatalf("cancel persisted a session")
	}
	if !f.progress.marked("Viernes", 0) {
		t.Fatalf("eager progress for exercise 0 lost")
	}
	if f.progress.marked("Viernes", 1) {
		t.Fatalf("partially done exercise 1 marked complete")
	}
	if f.machine.Phase() != PhaseCancelled {
		t.Fatalf("phase = %v, want cancelled", f.machine.Phase())
	}
}

func TestCancelAfterPartialFirstExercise(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet()
	f.machine.Cancel()

	if len(f.gateway.completes) != 0 {
		t.Fatalf("no session should be completed")
	}
	if len(f.progress.calls) != 0 {
		t.Fatalf("routine progress touched: %+v", f.progress.calls)
	}
}

func TestPauseStopsTimeAccrual(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.clock.Advance(10 * time.Second)
	f.machine.Tick()
	f.machine.Pause()
	if !f.machine.Paused() {
		t.Fatalf("machine should report paused")
	}

	// The driving loop does not tick while paused.
	f.clock.Advance(100 * time.Second)
	f.machine.Resume()
	f.machine.Tick()
	if got := f.machine.State().Elapsed; got != 10 {
		t.Fatalf("elapsed after resume = %d, want 10", got)
	}

	f.clock.Advance(5 * time.Second)
	f.machine.CompleteSet()
	if got := f.machine.State().Exercises[0].TimeSpent; got != 15 {
		t.Fatalf("time spent = %d, want 15", got)
	}
}

func TestPauseDuringRest(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture(WithRestSeconds(3))
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet()
	f.machine.Tick()
	f.machine.TogglePause()

	s := f.machine.State()
	if s.Phase != PhaseResting || !s.Paused || s.RestRemaining != 2 {
		t.Fatalf("state = %+v, want paused rest with 2s left", s)
	}
	if !f.machine.UpdateEstimatedTime(1, 420) {
		t.Fatalf("estimate update rejected during paused rest")
	}
	f.machine.TogglePause()
	f.machine.Tick()
	f.machine.Tick()
	s = f.machine.State()
	if s.Phase != PhaseActive || s.Paused || s.Elapsed != 0 {
		t.Fatalf("state after rest = %+v", s)
	}
	if s.Exercises[1].EstimatedTime != 420 {
		t.Fatalf("estimate = %d, want 420", s.Exercises[1].EstimatedTime)
	}
}

func TestRestExpiryNotifiesOnceAndSkipDoesNot(t *testing.T) {
	day := domain.DayPlan{Day: "Sábado", Exercises: []domain.Exercise{{Name: "Burpees", Sets: 3}}}
	f := newFixture(WithRestSeconds(3))
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.machine.CompleteSet()
	for i := 0; i < 5; i++ {
		f.machine.Tick()
	}
	if f.notifier.count != 1 {
		t.Fatalf("notifications = %d, want 1", f.notifier.count)
	}
	if f.machine.Phase() != PhaseActive {
		t.Fatalf("rest expiry should return to active")
	}

	f.machine.CompleteSet()
	f.machine.Tick()
	f.machine.SkipRest()
	if f.notifier.count != 1 {
		t.Fatalf("skip played the rest cue: %d notifications", f.notifier.count)
	}
}

func TestNotificationFailuresAreSwallowed(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture(WithRestSeconds(1))
	f.machine.notifier = NotifierFunc(func() error { panic("audio device gone") })
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet()
	f.machine.Tick()
	if f.machine.Phase() != PhaseActive {
		t.Fatalf("panicking notifier blocked the rest transition")
	}

	f.machine.notifier = NotifierFunc(func() error { return errors.New("vibration unavailable") })
	f.machine.CompleteSet()
	f.machine.Tick()
	if s := f.machine.State(); s.Phase != PhaseActive || s.ExerciseIndex != 1 {
		t.Fatalf("failing notifier blocked the rest transition: %+v", s)
	}
}

func TestStartRejectsEmptyDay(t *testing.T) {
	f := newFixture()
	day := domain.DayPlan{Day: "Domingo"}
	err := f.machine.Start(context.Background(), testRoutine(day), day)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if f.gateway.starts != 0 {
		t.Fatalf("gateway called for an empty day")
	}
	if f.machine.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", f.machine.Phase())
	}
}

func TestStartFailureLeavesMachineIdle(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	f.gateway.startErr = apperrors.Transient("session.start", errBackendDown)

	err := f.machine.Start(context.Background(), testRoutine(day), day)
	if !errors.Is(err, apperrors.ErrTransientIO) {
		t.Fatalf("err = %v, want transient error", err)
	}
	if s := f.machine.State(); s.Phase != PhaseIdle || len(s.Exercises) != 0 {
		t.Fatalf("failed start changed state: %+v", s)
	}

	f.gateway.startErr = nil
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("retry start: %v", err)
	}
	if f.machine.Phase() != PhaseActive {
		t.Fatalf("phase = %v after retry", f.machine.Phase())
	}
}

func TestStartWhileInProgressRejected(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.machine.Start(context.Background(), testRoutine(day), day); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("second start err = %v, want validation error", err)
	}
	if f.gateway.starts != 1 {
		t.Fatalf("gateway starts = %d, want 1", f.gateway.starts)
	}
}

func TestCompleteFailurePreservesState(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	ctx := context.Background()
	if err := f.machine.Start(ctx, testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Advance(20 * time.Second)
	f.machine.CompleteSet()
	before := f.machine.State()

	f.gateway.completeErr = apperrors.Transient("session.complete", errBackendDown)
	if _, err := f.machine.Complete(ctx); !errors.Is(err, apperrors.ErrTransientIO) {
		t.Fatalf("err = %v, want transient error", err)
	}
	after := f.machine.State()
	if after.Phase != before.Phase || after.CurrentSet != before.CurrentSet || after.Exercises[0].TimeSpent != 20 {
		t.Fatalf("failed complete changed state: before %+v after %+v", before, after)
	}

	f.gateway.completeErr = nil
	if _, err := f.machine.Complete(ctx); err != nil {
		t.Fatalf("retry complete: %v", err)
	}
	if f.machine.Phase() != PhaseCompleted {
		t.Fatalf("phase = %v, want completed", f.machine.Phase())
	}
}

func TestCompleteWithoutSession(t *testing.T) {
	f := newFixture()
	if _, err := f.machine.Complete(context.Background()); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCompleteSetIgnoredWhileResting(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet()
	f.machine.CompleteSet()
	s := f.machine.State()
	if s.CurrentSet != 2 || s.Exercises[0].SetsCompleted != 1 {
		t.Fatalf("set completed during rest: %+v", s)
	}
}

func TestNextExerciseSkipsWithoutRecording(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Advance(15 * time.Second)
	f.machine.NextExercise()

	s := f.machine.State()
	if s.ExerciseIndex != 1 || s.CurrentSet != 1 || s.Phase != PhaseActive {
		t.Fatalf("state = %+v", s)
	}
	if s.Exercises[0].TimeSpent != 0 || s.Exercises[0].SetsCompleted != 0 {
		t.Fatalf("skipped exercise recorded: %+v", s.Exercises[0])
	}

	f.machine.NextExercise()
	if got := f.machine.State().ExerciseIndex; got != 1 {
		t.Fatalf("next on last exercise moved index to %d", got)
	}
}

func TestSetRestSecondsValidation(t *testing.T) {
	f := newFixture()
	for _, s := range []int{0, -1, 301} {
		if err := f.machine.SetRestSeconds(s); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("SetRestSeconds(%d) = %v, want validation error", s, err)
		}
	}
	if err := f.machine.SetRestSeconds(90); err != nil {
		t.Fatalf("SetRestSeconds(90): %v", err)
	}
	day := twoByTwoDay()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := f.gateway.lastSession.RestTimeUsed; got != 90 {
		t.Fatalf("rest sent to gateway = %d, want 90", got)
	}
	f.machine.CompleteSet()
	if got := f.machine.State().RestRemaining; got != 90 {
		t.Fatalf("rest remaining = %d, want 90", got)
	}
}

func TestOverEstimateFlag(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.clock.Advance(241 * time.Second)
	f.machine.Tick()
	if !f.machine.State().OverEstimate {
		t.Fatalf("241s on a 240s estimate should be over estimate")
	}
}

func TestDayCompletionPercentageAcrossWeek(t *testing.T) {
	monday := twoByTwoDay()
	routine := &domain.Routine{
		Plan: domain.RoutinePlan{WeekPlan: []domain.DayPlan{
			monday,
			{Day: "Miércoles", Exercises: []domain.Exercise{{Name: "Remo", Sets: 3}, {Name: "Curl", Sets: 3}, {Name: "Dominadas", Sets: 3}}},
			{Day: "Viernes", Exercises: []domain.Exercise{{Name: "Press", Sets: 3}, {Name: "Fondos", Sets: 3}, {Name: "Plancha", Sets: 2}}},
		}},
		Progress: domain.Progress{},
	}
	local := NewRoutineProgress(routine, nil)

	clk := newFakeClock()
	m := NewMachine(&fakeGateway{clock: clk}, local, WithClock(clk))
	if err := m.Start(context.Background(), routine, monday); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 4; i++ {
		m.CompleteSet()
		m.SkipRest()
	}
	// 2 of 8 exercises in the week.
	if got := local.CompletionPercentage(); got != 25 {
		t.Fatalf("completion = %d, want 25", got)
	}
}
