package fight

import (
	"sync"
	"time"
)

// Watchdog fires a callback once after a wall-clock duration unless stopped.
// Run uses it to abort fights that exceed Rules.MaxDuration. It is safe for
// concurrent use.
type Watchdog struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

// NewWatchdog starts a watchdog that calls onFire after d in its own goroutine.
//
// Precondition: d > 0; onFire must not be nil.
func NewWatchdog(d time.Duration, onFire func()) *Watchdog {
	w := &Watchdog{}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timer = time.AfterFunc(d, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.fired = true
		w.mu.Unlock()
		onFire()
	})
	return w
}

// Stop prevents the callback from firing. Safe to call multiple times.
//
// Postcondition: onFire will not be called after Stop returns, unless it had already started.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	w.timer.Stop()
}

// Fired reports whether the callback was invoked.
func (w *Watchdog) Fired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}
