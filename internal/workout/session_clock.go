package workout

import "time"

// SessionClock measures elapsed time for the exercise in progress. Elapsed time
// is derived from a wall-clock anchor (elapsed = now - anchor), so time spent
// while the process was suspended is still counted on the next tick.
//
// The clock has no paused state. Pausing is the caller's job: stop calling
// Tick, then Restart with the last reported elapsed value on resume.
type SessionClock struct {
	clock  Clock
	anchor time.Time
}

func NewSessionClock(clock Clock) *SessionClock {
	if clock == nil {
		clock = SystemClock{}
	}
	c := &SessionClock{clock: clock}
	c.anchor = clock.Now()
	return c
}

// Start anchors the clock at now.
func (c *SessionClock) Start() {
	c.Restart(0)
}

// Restart anchors the clock so that elapsed continues from previousElapsed.
func (c *SessionClock) Restart(previousElapsed int) {
	if previousElapsed < 0 {
		previousElapsed = 0
	}
	c.anchor = c.clock.Now().Add(-time.Duration(previousElapsed) * time.Second)
}

// Tick returns the whole seconds elapsed since the anchor.
func (c *SessionClock) Tick() int {
	elapsed := int(c.clock.Now().Sub(c.anchor) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
