package service

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs only the last of a burst of triggers, after the burst has
// been quiet for Delay. A newer trigger also cancels the context handed to a
// run that already started.
type Debouncer struct {
	Delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{Delay: delay}
}

func (d *Debouncer) Trigger(parent context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.Delay, func() {
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
}

// Stop drops any pending run and cancels one in flight.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
