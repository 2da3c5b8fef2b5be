package core

import (
	"sync"
	"time"
)

// DelayResult is the value delivered on a Delay's channel.
type DelayResult int

const (
	// DelayElapsed is the sentinel delivered when the delay runs to
	// completion without being cancelled.
	DelayElapsed DelayResult = iota
	// DelayResolved is delivered when the delay was resolved early via
	// Resolve.
	DelayResolved
)

// Delay is a scheduled wakeup that can be cancelled or resolved early.
// Exactly one of three things happens to a Delay: it elapses naturally,
// it is resolved early with a value, or it is abandoned and never
// delivers anything. Cancelling twice, or cancelling after natural
// elapsal, is a no-op.
type Delay struct {
	timer *time.Timer
	ch    chan DelayResult

	mu   sync.Mutex
	done bool
}

// ScheduleDelay starts a delay that delivers DelayElapsed on its channel
// after the given duration unless cancelled first.
func ScheduleDelay(duration time.Duration) *Delay {
	delay := &Delay{ch: make(chan DelayResult, 1)}
	delay.timer = time.AfterFunc(duration, func() {
		delay.mu.Lock()
		defer delay.mu.Unlock()
		if delay.done {
			return
		}
		delay.done = true
		delay.ch <- DelayElapsed
	})
	return delay
}

// C returns the channel on which the delay delivers its result. An
// abandoned delay never delivers; callers racing a delay must not block
// solely on an abandoned channel.
func (d *Delay) C() <-chan DelayResult {
	return d.ch
}

// Resolve stops the timer and delivers the given value immediately.
// No-op if the delay already elapsed, resolved, or was abandoned.
func (d *Delay) Resolve(value DelayResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return
	}
	d.done = true
	d.timer.Stop()
	d.ch <- value
}

// Abandon stops the timer without delivering anything. The caller must
// ensure nothing still waits on the channel, e.g. because the delay
// already lost a race. No-op if the delay already fired.
func (d *Delay) Abandon() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done {
		return
	}
	d.done = true
	d.timer.Stop()
}
