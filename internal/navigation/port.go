package navigation

import "sync"

// Port is the client's history: it holds the current location and tells
// observers when it is replaced. Navigation never pushes; every change is a
// replacement followed by a change notification.
type Port interface {
	Current() Location
	Observe(fn func(Location)) (cancel func())
	Replace(loc Location)
}

// MemoryPort is an in-process Port.
//
// Replacements are delivered strictly in the order they were made. A
// Replace issued while observers are being notified (from an observer or
// another goroutine) is queued and delivered by the goroutine already
// dispatching, after the current notification completes.
type MemoryPort struct {
	mu          sync.Mutex
	current     Location
	observers   map[int]func(Location)
	nextID      int
	queue       []Location
	dispatching bool
}

// NewMemoryPort starts at initial.
func NewMemoryPort(initial Location) *MemoryPort {
	return &MemoryPort{
		current:   initial,
		observers: make(map[int]func(Location)),
	}
}

// Current implements Port.
func (p *MemoryPort) Current() Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Observe implements Port.
func (p *MemoryPort) Observe(fn func(Location)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.observers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

// Replace implements Port.
func (p *MemoryPort) Replace(loc Location) {
	p.mu.Lock()
	p.queue = append(p.queue, loc)
	if p.dispatching {
		p.mu.Unlock()
		return
	}
	p.dispatching = true

	for len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.current = next
		fns := p.snapshotObservers()
		p.mu.Unlock()

		for _, fn := range fns {
			fn(next)
		}

		p.mu.Lock()
	}
	p.dispatching = false
	p.mu.Unlock()
}

func (p *MemoryPort) snapshotObservers() []func(Location) {
	fns := make([]func(Location), 0, len(p.observers))
	for id := 0; id < p.nextID; id++ {
		if fn, ok := p.observers[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
