package workout

import (
	"context"
	"sync"
	"time"

	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/logger"
)

// ProgressSyncer writes one progress entry to the backend and returns the
// server's week-wide completion percentage.
type ProgressSyncer interface {
	SyncProgress(ctx context.Context, day string, exerciseIndex int, completed bool) (int, error)
}

// SyncDispatcher hands a progress write to the backend without blocking the caller.
type SyncDispatcher interface {
	Dispatch(day string, exerciseIndex int, completed bool)
}

// RoutineProgress is the client's optimistic copy of the active routine. Updates
// apply locally at once and are dispatched to the backend; the server stays the
// source of truth and Replace reconciles on the next load.
type RoutineProgress struct {
	mu         sync.Mutex
	routine    *domain.Routine
	dispatcher SyncDispatcher
}

func NewRoutineProgress(routine *domain.Routine, dispatcher SyncDispatcher) *RoutineProgress {
	p := &RoutineProgress{dispatcher: dispatcher}
	p.Replace(routine)
	return p
}

// UpdateProgress implements RoutineProgressUpdater.
func (p *RoutineProgress) UpdateProgress(day string, exerciseIndex int, completed bool) {
	p.mu.Lock()
	if p.routine != nil {
		if p.routine.Progress == nil {
			p.routine.Progress = domain.Progress{}
		}
		p.routine.Progress.Set(day, exerciseIndex, completed)
	}
	p.mu.Unlock()

	if p.dispatcher != nil {
		p.dispatcher.Dispatch(day, exerciseIndex, completed)
	}
}

// Replace installs a freshly fetched routine, discarding local divergence.
func (p *RoutineProgress) Replace(routine *domain.Routine) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if routine == nil {
		p.routine = nil
		return
	}
	cp := *routine
	cp.Progress = routine.Progress.Clone()
	p.routine = &cp
}

// Routine returns a copy of the local routine, or nil.
func (p *RoutineProgress) Routine() *domain.Routine {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.routine == nil {
		return nil
	}
	cp := *p.routine
	cp.Progress = p.routine.Progress.Clone()
	return &cp
}

func (p *RoutineProgress) CompletionPercentage() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.routine == nil {
		return 0
	}
	return p.routine.CompletionPercentage()
}

// FireAndForget sends each write in its own goroutine. Failures are logged and
// dropped; there is no retry.
type FireAndForget struct {
	syncer  ProgressSyncer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewFireAndForget(syncer ProgressSyncer, timeout time.Duration) *FireAndForget {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FireAndForget{syncer: syncer, timeout: timeout}
}

func (f *FireAndForget) Dispatch(day string, exerciseIndex int, completed bool) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		if _, err := f.syncer.SyncProgress(ctx, day, exerciseIndex, completed); err != nil {
			logger.Warn("progress sync failed", "day", day, "exercise", exerciseIndex, "error", err)
		}
	}()
}

// Wait blocks until in-flight writes finish.
func (f *FireAndForget) Wait() {
	f.wg.Wait()
}
