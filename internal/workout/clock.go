// Package workout implements the live workout session engine: the rest timer,
// the drift-corrected exercise clock, per-exercise progress bookkeeping and the
// session state machine that coordinates them.
package workout

import "time"

// Clock abstracts wall-clock time to keep the engine deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
