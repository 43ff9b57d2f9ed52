package gateway

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default redirect timings.
const (
	DefaultRedirectDelay    = 100 * time.Millisecond
	DefaultRedirectCooldown = time.Second
)

// RedirectGuard is the single pending-redirect slot. At most one redirect
// sequence is in flight; attempts made while one is pending are dropped.
type RedirectGuard struct {
	clock    clockwork.Clock
	delay    time.Duration
	cooldown time.Duration

	mu      sync.Mutex
	pending bool
	timers  []clockwork.Timer
}

// NewRedirectGuard creates a guard. Zero durations take the defaults.
func NewRedirectGuard(clock clockwork.Clock, delay, cooldown time.Duration) *RedirectGuard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}
	if cooldown <= 0 {
		cooldown = DefaultRedirectCooldown
	}
	return &RedirectGuard{clock: clock, delay: delay, cooldown: cooldown}
}

// Trigger claims the slot and schedules redirect after the delay. The slot
// is released cooldown after the redirect. It returns false, doing
// nothing, when a sequence is already pending.
func (g *RedirectGuard) Trigger(redirect func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending {
		return false
	}
	g.pending = true

	g.timers = []clockwork.Timer{
		g.clock.AfterFunc(g.delay, redirect),
		g.clock.AfterFunc(g.delay+g.cooldown, g.release),
	}
	return true
}

// Pending reports whether a redirect sequence is in flight.
func (g *RedirectGuard) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}

// Stop cancels a pending sequence and frees the slot.
func (g *RedirectGuard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = nil
	g.pending = false
}

func (g *RedirectGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = false
	g.timers = nil
}
