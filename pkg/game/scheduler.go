package game

import "time"

// CancelFunc stops a scheduled callback. It reports whether the callback
// was stopped before firing; canceling an already-fired or already-canceled
// callback is a harmless no-op.
type CancelFunc func() bool

// Scheduler arms one-shot delayed callbacks. The production implementation
// wraps time.AfterFunc; tests substitute a manual scheduler to fire
// callbacks deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) CancelFunc
}

type timerScheduler struct{}

// NewTimerScheduler returns the wall-clock Scheduler.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
