package resource

import "sync"

// View is a pure projection of a container's state, memoized by the
// container's version. The projection function must be side-effect free;
// it is re-run at most once per container transition, on the first Get
// that observes the new version.
type View[T, R any] struct {
	source  *Container[T]
	project func(State[T]) R

	mu     sync.Mutex
	seen   uint64
	cached R
	primed bool
}

// NewView creates a memoized view over source.
func NewView[T, R any](source *Container[T], project func(State[T]) R) *View[T, R] {
	return &View[T, R]{source: source, project: project}
}

// Get returns the projection of the container's latest state, recomputing
// only if the container changed since the last Get.
func (v *View[T, R]) Get() R {
	version := v.source.Version()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.primed && v.seen == version {
		return v.cached
	}

	state := v.source.Current()
	v.cached = v.project(state)
	v.seen = version
	v.primed = true
	return v.cached
}
