package resource

import "sync"

// Subscriber receives every published state of a container.
type Subscriber[T any] func(State[T])

// Container is the single point of truth for one async resource. All reads
// go through Current and all writes go through a transition method.
// Transitions are atomic with respect to observers: subscribers are invoked
// synchronously under the publish, in subscription order, and never observe
// a half-applied transition.
//
// The container applies transitions in the order the transition methods are
// called, not the order their owning operations began. Callers that need to
// drop a superseded slow completion use the generation token returned by
// SetLoading together with CompleteReady/CompleteFailed.
type Container[T any] struct {
	mu      sync.Mutex
	state   State[T]
	version uint64
	gen     uint64
	nextSub uint64
	subs    []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn Subscriber[T]
}

// NewContainer creates a container in the idle state.
func NewContainer[T any]() *Container[T] {
	return &Container[T]{state: Idle[T]()}
}

// Current returns the latest published state without side effects.
func (c *Container[T]) Current() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Version returns a counter that increases on every transition. Views use
// it to detect whether the source changed since their last recomputation.
func (c *Container[T]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// SetLoading transitions to Loading unconditionally, discarding any prior
// error, and returns a generation token identifying this load.
func (c *Container[T]) SetLoading() uint64 {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.publishLocked(Loading[T]())
	return gen
}

// SetReady transitions to Ready(value) unconditionally.
func (c *Container[T]) SetReady(value T) {
	c.mu.Lock()
	c.publishLocked(Ready(value))
}

// SetFailed transitions to Failed(err) unconditionally. Any prior Ready
// value is discarded; callers needing a last-known-good value must cache
// it themselves.
func (c *Container[T]) SetFailed(err error) {
	c.mu.Lock()
	c.publishLocked(Failed[T](err))
}

// SetIdle resets the container to the idle state.
func (c *Container[T]) SetIdle() {
	c.mu.Lock()
	c.publishLocked(Idle[T]())
}

// CompleteReady publishes Ready(value) only if no later SetLoading has
// superseded the load identified by gen. It reports whether the state was
// published.
func (c *Container[T]) CompleteReady(gen uint64, value T) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.publishLocked(Ready(value))
	return true
}

// CompleteFailed publishes Failed(err) only if the load identified by gen
// has not been superseded. It reports whether the state was published.
func (c *Container[T]) CompleteFailed(gen uint64, err error) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	c.publishLocked(Failed[T](err))
	return true
}

// Mutate atomically reads the current state, applies fn, and publishes the
// returned state if fn reports true. The read and publish happen under one
// critical section, so fn always sees the latest state even if the
// container changed while the caller's remote request was in flight.
func (c *Container[T]) Mutate(fn func(State[T]) (State[T], bool)) {
	c.mu.Lock()
	next, ok := fn(c.state)
	if !ok {
		c.mu.Unlock()
		return
	}
	c.publishLocked(next)
}

// Subscribe registers fn to be called after every transition and returns an
// unsubscribe function. Delivery order is guaranteed within this container
// only.
func (c *Container[T]) Subscribe(fn Subscriber[T]) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscription[T]{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// publishLocked stores the state, bumps the version, and notifies
// subscribers in subscription order. The caller must hold c.mu; the lock is
// released before callbacks run so subscribers may read Current or trigger
// further transitions without deadlocking.
func (c *Container[T]) publishLocked(next State[T]) {
	c.state = next
	c.version++
	subs := make([]subscription[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
}
