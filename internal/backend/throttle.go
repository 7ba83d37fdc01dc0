package backend

import (
	"context"
	"sync"
	"time"
)

// throttle spaces successive Slurm commands of one poller at least gap
// apart, so a burst of pokes after an edit cannot hammer slurmctld.
type throttle struct {
	gap time.Duration

	mu   sync.Mutex
	last time.Time
}

func newThrottle(gap time.Duration) *throttle {
	return &throttle{gap: gap}
}

// wait blocks until the gap since the previous command has passed or ctx
// ends. It claims the slot before returning nil.
func (t *throttle) wait(ctx context.Context) error {
	if t == nil || t.gap <= 0 {
		return ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if d := t.gap - time.Since(t.last); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	t.last = time.Now()
	return nil
}
