package workout

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDriverStopsWhenSessionEnds(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}

	ticks := 0
	d := NewDriver(f.machine, func(s Snapshot) {
		ticks++
		if ticks == 3 {
			f.machine.Cancel()
		}
	})
	d.interval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ticks != 4 {
		t.Fatalf("ticks = %d, want 4", ticks)
	}
	if f.machine.Phase() != PhaseCancelled {
		t.Fatalf("phase = %v", f.machine.Phase())
	}
}

func TestDriverSkipsTicksWhilePaused(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture()
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.Pause()

	ticks := 0
	d := NewDriver(f.machine, func(Snapshot) { ticks++ })
	d.interval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := d.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run err = %v, want deadline exceeded", err)
	}
	if ticks != 0 {
		t.Fatalf("paused machine was ticked %d times", ticks)
	}
}

func TestDriverCountsRestDown(t *testing.T) {
	day := twoByTwoDay()
	f := newFixture(WithRestSeconds(2))
	if err := f.machine.Start(context.Background(), testRoutine(day), day); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.machine.CompleteSet()

	var phases []Phase
	d := NewDriver(f.machine, func(s Snapshot) {
		phases = append(phases, s.Phase)
		if len(phases) == 2 {
			f.machine.Cancel()
		}
	})
	d.interval = time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if phases[0] != PhaseResting || phases[1] != PhaseActive {
		t.Fatalf("phases = %v, want resting then active", phases)
	}
	if f.notifier.count != 1 {
		t.Fatalf("notifications = %d, want 1", f.notifier.count)
	}
}
