package workout

import (
	"context"
	"fmt"
	"sync"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Phase is the main phase of a session. Pause is tracked separately so that
// both an active exercise and a rest interval can be paused.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseResting
	PhaseCompleted
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseResting:
		return "resting"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// InProgress reports whether a session occupies the machine.
func (p Phase) InProgress() bool {
	return p == PhaseActive || p == PhaseResting
}

// Snapshot is a copy of the machine state for rendering.
type Snapshot struct {
	Phase              Phase
	Paused             bool
	SessionID          primitive.ObjectID
	RoutineID          primitive.ObjectID
	Day                string
	ExerciseIndex      int
	ExerciseCount      int
	ExerciseName       string
	CurrentSet         int // 1-based
	TotalSets          int
	Elapsed            int // seconds on the current exercise
	Estimated          int // seconds, current exercise
	OverEstimate       bool
	RestRemaining      int
	RestSeconds        int
	RestsTaken         int
	AwaitingCompletion bool // last set of last exercise done, waiting for Complete
	Exercises          []domain.ExerciseSessionData
}

// Machine coordinates one workout session: exercise index, current set, rest
// and pause state, and the eager write of exercise completion into the
// routine's progress matrix.
//
// The machine does not run a timer. A driving loop calls Tick once per second
// and must stop calling it while Paused() is true; see Driver.
type Machine struct {
	mu sync.Mutex

	gateway  SessionGateway
	progress RoutineProgressUpdater
	notifier NotificationPort
	clock    Clock

	restSeconds int

	phase         Phase
	paused        bool
	session       *domain.WorkoutSession
	routineID     primitive.ObjectID
	day           domain.DayPlan
	exerciseIndex int
	currentSet    int
	elapsed       int
	finished      bool
	restsTaken    int

	restTimer *RestTimer
	exClock   *SessionClock
	tracker   *ExerciseProgressTracker
}

type Option func(*Machine)

func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

func WithNotifier(n NotificationPort) Option {
	return func(m *Machine) { m.notifier = n }
}

// WithRestSeconds sets the configured rest duration. Invalid values keep the default.
func WithRestSeconds(s int) Option {
	return func(m *Machine) {
		if domain.ValidRestSeconds(s) {
			m.restSeconds = s
		}
	}
}

func NewMachine(gateway SessionGateway, progress RoutineProgressUpdater, opts ...Option) *Machine {
	m := &Machine{
		gateway:     gateway,
		progress:    progress,
		clock:       SystemClock{},
		restSeconds: domain.DefaultRestSeconds,
		currentSet:  1,
		tracker:     NewExerciseProgressTracker(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.restTimer = NewRestTimer(m.notifyRestComplete)
	m.exClock = NewSessionClock(m.clock)
	return m
}

// Start opens a session record through the gateway and begins the first set of
// the first exercise. On failure the machine stays idle so the call can be retried.
func (m *Machine) Start(ctx context.Context, routine *domain.Routine, day domain.DayPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase.InProgress() {
		return apperrors.Validation("session.start", "a workout session is already in progress")
	}
	if routine == nil {
		return apperrors.Validation("session.start", "routine is required")
	}
	if len(day.Exercises) == 0 {
		return apperrors.Validation("session.start", fmt.Sprintf("%s has no exercises", day.Day))
	}
	if err := day.Validate(); err != nil {
		return err
	}

	session, err := m.gateway.StartSession(ctx, routine.ID, day.Day, m.restSeconds)
	if err != nil {
		return err
	}

	m.session = session
	m.routineID = routine.ID
	m.day = day
	m.phase = PhaseActive
	m.paused = false
	m.exerciseIndex = 0
	m.currentSet = 1
	m.elapsed = 0
	m.finished = false
	m.restsTaken = 0
	m.restTimer.Skip()
	m.tracker.Initialize(day)
	m.exClock.Start()

	logger.Info("workout session started", "session", session.ID.Hex(), "day", day.Day, "exercises", len(day.Exercises))
	return nil
}

// CompleteSet confirms the current set. It is ignored unless an exercise is
// active and sets remain.
func (m *Machine) CompleteSet() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseActive || m.finished {
		return
	}
	if !m.paused {
		m.elapsed = m.exClock.Tick()
	}

	ex := m.day.Exercises[m.exerciseIndex]
	m.tracker.RecordSetCompletion(m.exerciseIndex, m.currentSet, m.elapsed)

	// Written now, not at Complete, so it survives a later Cancel.
	if m.currentSet >= ex.Sets && m.progress != nil {
		m.progress.UpdateProgress(m.day.Day, m.exerciseIndex, true)
	}

	switch {
	case m.currentSet < ex.Sets:
		m.currentSet++
		m.enterRest()
	case m.exerciseIndex+1 < len(m.day.Exercises):
		m.exerciseIndex++
		m.currentSet = 1
		m.enterRest()
	default:
		m.finished = true
		m.elapsed = 0
	}
}

func (m *Machine) enterRest() {
	m.phase = PhaseResting
	m.elapsed = 0
	m.restsTaken++
	m.restTimer.Start(m.restSeconds)
}

func (m *Machine) leaveRest() {
	m.phase = PhaseActive
	m.elapsed = 0
	m.exClock.Start()
}

// Tick advances the session by one second: it counts the rest timer down, or
// refreshes the elapsed time of the active exercise. Callers must not tick a
// paused machine.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhaseResting:
		if m.restTimer.Tick() {
			m.leaveRest()
		}
	case PhaseActive:
		if !m.finished {
			m.elapsed = m.exClock.Tick()
		}
	}
}

// SkipRest ends the current rest immediately. No rest-complete cue is played.
func (m *Machine) SkipRest() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseResting {
		return
	}
	m.restTimer.Skip()
	m.leaveRest()
}

// NextExercise jumps to set 1 of the next exercise without resting and without
// recording the current one. It is a no-op on the last exercise.
func (m *Machine) NextExercise() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.InProgress() || m.exerciseIndex+1 >= len(m.day.Exercises) {
		return
	}
	m.restTimer.Skip()
	m.exerciseIndex++
	m.currentSet = 1
	m.finished = false
	m.leaveRest()
}

// Pause freezes the session. The elapsed value is captured so Resume can
// continue from it.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.InProgress() || m.paused {
		return
	}
	if m.phase == PhaseActive && !m.finished {
		m.elapsed = m.exClock.Tick()
	}
	m.paused = true
}

// Resume re-anchors the exercise clock at the elapsed value captured by Pause,
// so time spent paused is not counted.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.paused {
		return
	}
	m.paused = false
	if m.phase == PhaseActive {
		m.exClock.Restart(m.elapsed)
	}
}

// TogglePause pauses a running session or resumes a paused one.
func (m *Machine) TogglePause() {
	if m.Paused() {
		m.Resume()
	} else {
		m.Pause()
	}
}

// UpdateEstimatedTime overrides the estimate of an exercise. Allowed at any
// point of the session, including rest and pause.
func (m *Machine) UpdateEstimatedTime(exerciseIndex, seconds int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.OverrideEstimate(exerciseIndex, seconds)
}

// SetRestSeconds changes the rest duration used by subsequent rests.
func (m *Machine) SetRestSeconds(seconds int) error {
	if !domain.ValidRestSeconds(seconds) {
		return apperrors.Validation("session.rest", fmt.Sprintf("rest must be between %d and %d seconds", domain.MinRestSeconds, domain.MaxRestSeconds))
	}
	m.mu.Lock()
	m.restSeconds = seconds
	m.mu.Unlock()
	return nil
}

// Complete persists the session and reconciles every fully completed exercise
// into the routine progress. On gateway failure the session stays in progress
// so the call can be retried.
func (m *Machine) Complete(ctx context.Context) (*domain.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.InProgress() || m.session == nil {
		return nil, apperrors.Validation("session.complete", "no workout session in progress")
	}

	summary := m.tracker.Summary()
	saved, err := m.gateway.CompleteSession(ctx, m.session.ID, summary.Exercises, summary.ExercisesCompleted)
	if err != nil {
		return nil, err
	}

	if m.progress != nil {
		for i, ex := range m.day.Exercises {
			if m.tracker.IsExerciseFullyCompleted(i, ex.Sets) {
				m.progress.UpdateProgress(m.day.Day, i, true)
			}
		}
	}

	logger.Info("workout session completed", "session", m.session.ID.Hex(), "exercises_completed", summary.ExercisesCompleted, "time", summary.TotalTimeSpent)
	m.reset(PhaseCompleted)
	return saved, nil
}

// Cancel drops the session without persisting it. Progress already written by
// CompleteSet is kept.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.phase.InProgress() {
		return
	}
	logger.Info("workout session cancelled", "session", m.session.ID.Hex())
	m.reset(PhaseCancelled)
}

func (m *Machine) reset(phase Phase) {
	m.phase = phase
	m.paused = false
	m.session = nil
	m.routineID = primitive.NilObjectID
	m.day = domain.DayPlan{}
	m.exerciseIndex = 0
	m.currentSet = 1
	m.elapsed = 0
	m.finished = false
	m.restsTaken = 0
	m.restTimer.Skip()
	m.tracker.Reset()
}

func (m *Machine) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Summary returns the progress summary of the running session.
func (m *Machine) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.Summary()
}

// State returns a snapshot of the machine.
func (m *Machine) State() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Phase:              m.phase,
		Paused:             m.paused,
		RoutineID:          m.routineID,
		Day:                m.day.Day,
		ExerciseIndex:      m.exerciseIndex,
		ExerciseCount:      len(m.day.Exercises),
		CurrentSet:         m.currentSet,
		Elapsed:            m.elapsed,
		RestRemaining:      m.restTimer.Remaining(),
		RestSeconds:        m.restSeconds,
		RestsTaken:         m.restsTaken,
		AwaitingCompletion: m.finished,
		Exercises:          m.tracker.Snapshot(),
	}
	if m.session != nil {
		s.SessionID = m.session.ID
	}
	if m.exerciseIndex < len(m.day.Exercises) {
		ex := m.day.Exercises[m.exerciseIndex]
		s.ExerciseName = ex.Name
		s.TotalSets = ex.Sets
	}
	if entry, ok := m.tracker.Entry(m.exerciseIndex); ok {
		s.Estimated = entry.EstimatedTime
		s.OverEstimate = m.elapsed > entry.EstimatedTime
	}
	return s
}

// notifyRestComplete runs on natural rest expiry. Failures never reach the
// state machine.
func (m *Machine) notifyRestComplete() {
	if m.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("rest notification panicked", "panic", r)
		}
	}()
	if err := m.notifier.NotifyRestComplete(); err != nil {
		logger.Debug("rest notification failed", "error", apperrors.Notification(err))
	}
}
