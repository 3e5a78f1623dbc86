package workout

import (
	"context"
	"time"
)

// Driver is the one-second polling loop of a session. It honours the machine's
// pause contract by skipping ticks while the machine is paused.
type Driver struct {
	machine  *Machine
	interval time.Duration
	onTick   func(Snapshot)
}

func NewDriver(machine *Machine, onTick func(Snapshot)) *Driver {
	return &Driver{machine: machine, interval: time.Second, onTick: onTick}
}

// Run ticks until ctx is done or the session leaves the in-progress phases.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if d.machine.Paused() {
				continue
			}
			d.machine.Tick()
			s := d.machine.State()
			if d.onTick != nil {
				d.onTick(s)
			}
			if !s.Phase.InProgress() {
				return nil
			}
		}
	}
}
