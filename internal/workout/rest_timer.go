package workout

// RestTimer counts down a rest interval one tick (one second) at a time.
// Natural expiry invokes the completion callback exactly once; Skip does not.
type RestTimer struct {
	remaining  int
	running    bool
	onComplete func()
}

// NewRestTimer returns a stopped timer. onComplete may be nil.
func NewRestTimer(onComplete func()) *RestTimer {
	return &RestTimer{onComplete: onComplete}
}

// Start resets the countdown to durationSeconds and runs it.
func (t *RestTimer) Start(durationSeconds int) {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	t.remaining = durationSeconds
	t.running = durationSeconds > 0
}

// Tick advances the countdown by one second. It reports whether this tick
// expired the timer. Ticks on a stopped timer are no-ops.
func (t *RestTimer) Tick() bool {
	if !t.running {
		return false
	}
	t.remaining--
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	t.running = false
	if t.onComplete != nil {
		t.onComplete()
	}
	return true
}

// Skip stops the timer at zero without signalling completion.
func (t *RestTimer) Skip() {
	t.remaining = 0
	t.running = false
}

func (t *RestTimer) Remaining() int { return t.remaining }

func (t *RestTimer) Running() bool { return t.running }
