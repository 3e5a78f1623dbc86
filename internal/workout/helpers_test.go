package workout

import (
	"context"
	"errors"
	"sync"
	"time"

	"befit/fitness-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type completeCall struct {
	sessionID          primitive.ObjectID
	exerciseData       []domain.ExerciseSessionData
	exercisesCompleted int
}

type fakeGateway struct {
	clock       Clock
	startErr    error
	completeErr error
	starts      int
	completes   []completeCall
	lastSession *domain.WorkoutSession
}

func (g *fakeGateway) StartSession(_ context.Context, routineID primitive.ObjectID, dayName string, restSeconds int) (*domain.WorkoutSession, error) {
	g.starts++
	if g.startErr != nil {
		return nil, g.startErr
	}
	g.lastSession = &domain.WorkoutSession{
		ID:           primitive.NewObjectID(),
		RoutineID:    routineID,
		DayName:      dayName,
		RestTimeUsed: restSeconds,
		StartTime:    g.clock.Now(),
		Status:       domain.SessionOpen,
	}
	return g.lastSession, nil
}

func (g *fakeGateway) CompleteSession(_ context.Context, sessionID primitive.ObjectID, data []domain.ExerciseSessionData, exercisesCompleted int) (*domain.WorkoutSession, error) {
	if g.completeErr != nil {
		return nil, g.completeErr
	}
	g.completes = append(g.completes, completeCall{sessionID: sessionID, exerciseData: data, exercisesCompleted: exercisesCompleted})
	end := g.clock.Now()
	total := domain.DurationSeconds(g.lastSession.StartTime, end)
	done := *g.lastSession
	done.EndTime = &end
	done.TotalDuration = &total
	done.ExerciseData = data
	done.ExercisesCompleted = exercisesCompleted
	done.IsCompleted = true
	done.Status = domain.SessionCompleted
	return &done, nil
}

type progressCall struct {
	day       string
	index     int
	completed bool
}

type fakeProgress struct {
	mu    sync.Mutex
	calls []progressCall
}

func (p *fakeProgress) UpdateProgress(day string, exerciseIndex int, completed bool) {
	p.mu.Lock()
	p.calls = append(p.calls, progressCall{day, exerciseIndex, completed})
	p.mu.Unlock()
}

func (p *fakeProgress) marked(day string, index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.calls {
		if c.day == day && c.index == index && c.completed {
			return true
		}
	}
	return false
}

type countingNotifier struct {
	count int
	err   error
}

func (n *countingNotifier) NotifyRestComplete() error {
	n.count++
	return n.err
}

var errBackendDown = errors.New("backend unavailable")

func twoByTwoDay() domain.DayPlan {
	return domain.DayPlan{
		Day:   "Lunes",
		Focus: "Pierna",
		Exercises: []domain.Exercise{
			{Name: "Sentadilla", Sets: 2, Reps: "10", Rest: "60s", EstimatedTime: 240},
			{Name: "Zancadas", Sets: 2, Reps: "12", Rest: "60s"},
		},
	}
}

func testRoutine(day domain.DayPlan) *domain.Routine {
	return &domain.Routine{
		ID:       primitive.NewObjectID(),
		Plan:     domain.RoutinePlan{WeekPlan: []domain.DayPlan{day}},
		Progress: domain.Progress{},
		IsActive: true,
	}
}

type machineFixture struct {
	clock    *fakeClock
	gateway  *fakeGateway
	progress *fakeProgress
	notifier *countingNotifier
	machine  *Machine
}

func newFixture(opts ...Option) *machineFixture {
	f := &machineFixture{
		clock:    newFakeClock(),
		progress: &fakeProgress{},
		notifier: &countingNotifier{},
	}
	f.gateway = &fakeGateway{clock: f.clock}
	all := append([]Option{WithClock(f.clock), WithNotifier(f.notifier)}, opts...)
	f.machine = NewMachine(f.gateway, f.progress, all...)
	return f
}
