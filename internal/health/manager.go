package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTimeout bounds each check.
const DefaultTimeout = 5 * time.Second

// Report aggregates check results in registration order.
type Report struct {
	Status  Status    `json:"status"`
	Results []*Result `json:"checks"`
}

// Manager runs checkers in parallel, each under its own timeout.
type Manager struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
	clock    clockwork.Clock
}

// NewManager creates a manager with DefaultTimeout. A nil clock uses the
// real clock.
func NewManager(clock clockwork.Clock) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{timeout: DefaultTimeout, clock: clock}
}

// WithTimeout sets the per-check timeout.
func (m *Manager) WithTimeout(timeout time.Duration) *Manager {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return m
}

// AddChecker registers a checker.
func (m *Manager) AddChecker(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
}

// CheckNames returns the registered checker names in order.
func (m *Manager) CheckNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.checkers))
	for i, c := range m.checkers {
		names[i] = c.Name()
	}
	return names
}

// Check runs every checker and returns the aggregated report. A checker
// that panics is reported as unhealthy.
func (m *Manager) Check(ctx context.Context) *Report {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	timeout := m.timeout
	m.mu.RUnlock()

	results := make([]*Result, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = m.run(ctx, c, timeout)
		}(i, c)
	}
	wg.Wait()

	return &Report{Status: Overall(results), Results: results}
}

func (m *Manager) run(ctx context.Context, c Checker, timeout time.Duration) (result *Result) {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := m.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			result = Unhealthy(fmt.Sprintf("check panicked: %v", r))
		}
		if result == nil {
			result = Unhealthy("check returned no result")
		}
		result.Name = c.Name()
		if result.Latency == 0 {
			result.Latency = m.clock.Since(start)
		}
	}()
	return c.Check(checkCtx)
}

// Overall returns unhealthy if any result is unhealthy, degraded if any is
// degraded, and healthy otherwise.
func Overall(results []*Result) Status {
	status := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
