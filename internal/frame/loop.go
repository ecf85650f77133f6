// Package frame drives per-frame callbacks from a host-provided frame source.
package frame

import (
	"slices"
	"sync"
	"time"
)

// Source schedules a single callback for the next frame. The returned
// cancel function withdraws the request if it has not fired yet.
type Source interface {
	RequestFrame(fn func(now time.Duration)) (cancel func())
}

// Loop re-requests a frame after every tick until stopped. It owns the
// cancel handle of the pending request.
type Loop struct {
	src    Source
	tick   func(now time.Duration)
	cancel func()
	active bool
}

// NewLoop returns a stopped loop calling tick once per frame.
func NewLoop(src Source, tick func(now time.Duration)) *Loop {
	return &Loop{src: src, tick: tick}
}

// Start arms the first frame. Starting a running loop is a no-op.
func (l *Loop) Start() {
	if l.active {
		return
	}
	l.active = true
	l.arm()
}

func (l *Loop) arm() {
	l.cancel = l.src.RequestFrame(l.run)
}

func (l *Loop) run(now time.Duration) {
	if !l.active {
		return
	}
	l.cancel = nil
	l.tick(now)
	// tick may have stopped the loop.
	if l.active {
		l.arm()
	}
}

// Stop cancels the pending frame. It is safe to call more than once.
func (l *Loop) Stop() {
	if !l.active {
		return
	}
	l.active = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Running reports whether a frame is scheduled.
func (l *Loop) Running() bool { return l.active }

// Manual is a Source advanced explicitly by the host, typically from a
// game loop's update or draw hook.
type Manual struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]func(time.Duration)
}

// RequestFrame implements Source.
func (m *Manual) RequestFrame(fn func(now time.Duration)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		m.pending = make(map[uint64]func(time.Duration))
	}
	m.next++
	id := m.next
	m.pending[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}
}

// Step fires every callback requested before the call, in request order.
// Callbacks requested during Step wait for the next Step.
func (m *Manual) Step(now time.Duration) {
	m.mu.Lock()
	due := make([]uint64, 0, len(m.pending))
	for id := range m.pending {
		due = append(due, id)
	}
	m.mu.Unlock()
	slices.Sort(due)

	for _, id := range due {
		m.mu.Lock()
		fn, ok := m.pending[id]
		delete(m.pending, id)
		m.mu.Unlock()
		if ok {
			fn(now)
		}
	}
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
