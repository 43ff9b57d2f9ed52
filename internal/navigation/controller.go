package navigation

import (
	"sync"

	"github.com/hospital-is/hisctl/internal/log"
	"github.com/hospital-is/hisctl/internal/metrics"
	"github.com/hospital-is/hisctl/internal/session"
)

// SessionReader is the read side of the session store.
type SessionReader interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot, session.Event)) (cancel func())
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTable replaces DefaultTable.
func WithTable(t Table) ControllerOption {
	return func(c *Controller) { c.table = t }
}

// WithControllerLogger sets the logger.
func WithControllerLogger(l *log.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l.WithComponent("navigation") }
}

// WithControllerMetrics records resolution outcomes.
func WithControllerMetrics(m *metrics.Metrics) ControllerOption {
	return func(c *Controller) { c.metrics = m }
}

// Controller keeps the current Resolution in step with the port and the
// session store, and performs the redirects resolutions ask for.
type Controller struct {
	port    Port
	store   SessionReader
	table   Table
	logger  *log.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	current Resolution
	seq     uint64

	lmu       sync.Mutex
	listeners map[int]func(Resolution)
	nextID    int

	stopOnce sync.Once
	cancels  []func()
}

// NewController wires a controller; call Start to begin tracking.
func NewController(port Port, store SessionReader, opts ...ControllerOption) *Controller {
	c := &Controller{
		port:      port,
		store:     store,
		table:     DefaultTable,
		logger:    log.Discard(),
		listeners: make(map[int]func(Resolution)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes to location and session changes and evaluates once.
func (c *Controller) Start() {
	c.cancels = append(c.cancels,
		c.port.Observe(func(Location) { c.evaluate() }),
		c.store.Subscribe(func(session.Snapshot, session.Event) { c.evaluate() }),
	)
	c.evaluate()
}

// Stop detaches from the port and the store.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		for _, cancel := range c.cancels {
			cancel()
		}
	})
}

// Current returns the latest resolution.
func (c *Controller) Current() Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Navigate replaces the location with path.
func (c *Controller) Navigate(path string) {
	c.port.Replace(ParseLocation(path))
}

// Subscribe registers fn for every new resolution.
func (c *Controller) Subscribe(fn func(Resolution)) func() {
	c.lmu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.lmu.Unlock()

	return func() {
		c.lmu.Lock()
		delete(c.listeners, id)
		c.lmu.Unlock()
	}
}

// evaluate resolves the latest location and session. Listeners and the
// redirect run without locks held; a redirect re-enters through the port.
// Concurrent evaluations may reach listeners out of order, so listeners
// keep the resolution with the highest Seq.
func (c *Controller) evaluate() {
	c.mu.Lock()
	res := Resolve(c.port.Current(), c.store.Snapshot(), c.table)
	c.seq++
	res.Seq = c.seq
	c.current = res
	c.mu.Unlock()

	c.metrics.RecordResolution(res.Outcome.String())
	c.logger.Debug("resolved",
		"location", res.Location.String(),
		"view", string(res.View),
		"outcome", res.Outcome.String(),
		"redirect", res.Redirect.String(),
	)

	c.publish(res)

	if res.Redirect != RedirectNone && !res.Target.Equal(res.Location) {
		if res.Redirect == RedirectToLogin {
			c.metrics.RecordRedirect("navigation")
		}
		c.port.Replace(res.Target)
	}
}

func (c *Controller) publish(res Resolution) {
	c.lmu.Lock()
	fns := make([]func(Resolution), 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	c.lmu.Unlock()

	for _, fn := range fns {
		fn(res)
	}
}
