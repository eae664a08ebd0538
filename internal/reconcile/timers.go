package reconcile

import (
	"sync"
	"time"

	"github.com/Cheertaboi/flash-coupon-service/internal/clock"
)

// Timers keeps at most one armed expiry timer per coupon. A timer fires once,
// and a cancelled or replaced timer never fires.
type Timers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	clock  clock.Clock
	fire   func(id string)
}

func NewTimers(clk clock.Clock, fire func(id string)) *Timers {
	return &Timers{
		timers: make(map[string]*time.Timer),
		clock:  clk,
		fire:   fire,
	}
}

// Schedule arms a timer for id at the given instant, replacing any earlier one.
// Instants in the past fire immediately.
func (t *Timers) Schedule(id string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.timers[id]; ok {
		old.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(at.Sub(t.clock.Now()), func() {
		t.mu.Lock()
		cur, ok := t.timers[id]
		if !ok || cur != timer {
			t.mu.Unlock()
			return
		}
		delete(t.timers, id)
		t.mu.Unlock()

		t.fire(id)
	})
	t.timers[id] = timer
}

// Cancel disarms the timer for id and reports whether one was pending.
func (t *Timers) Cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, id)
	return true
}

func (t *Timers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

// Stop disarms every pending timer.
func (t *Timers) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}
