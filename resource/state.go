// Package resource provides the reactive state primitives the SDK is built
// on: a single-source-of-truth container for one asynchronously fetched
// resource, and memoized derived views over it. All higher-level flows
// (session lifecycle, order collection) publish through a Container and
// read through its latest state.
package resource

import (
	"encoding/json"
	"fmt"
)

// Phase is the lifecycle phase of an async resource.
type Phase int32

const (
	// PhaseIdle indicates no load has been attempted and no value is held.
	PhaseIdle Phase = iota

	// PhaseLoading indicates a load or reload is in flight.
	PhaseLoading

	// PhaseReady indicates the resource holds a usable value.
	PhaseReady

	// PhaseFailed indicates the last load ended in an error.
	PhaseFailed
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", p)
	}
}

// MarshalJSON implements json.Marshaler.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*p = ParsePhase(str)
	return nil
}

// ParsePhase converts a string to a Phase.
func ParsePhase(s string) Phase {
	switch s {
	case "idle":
		return PhaseIdle
	case "loading":
		return PhaseLoading
	case "ready":
		return PhaseReady
	case "failed":
		return PhaseFailed
	default:
		return PhaseIdle
	}
}

// State is the published state of an async resource. Exactly one phase is
// active at a time: a value is present only in PhaseReady and an error only
// in PhaseFailed. The zero value is PhaseIdle.
type State[T any] struct {
	phase Phase
	value T
	err   error
}

// Idle returns the idle state.
func Idle[T any]() State[T] {
	return State[T]{phase: PhaseIdle}
}

// Loading returns the loading state.
func Loading[T any]() State[T] {
	return State[T]{phase: PhaseLoading}
}

// Ready returns a ready state holding value.
func Ready[T any](value T) State[T] {
	return State[T]{phase: PhaseReady, value: value}
}

// Failed returns a failed state holding err.
func Failed[T any](err error) State[T] {
	return State[T]{phase: PhaseFailed, err: err}
}

// Phase returns the active phase.
func (s State[T]) Phase() Phase { return s.phase }

// Value returns the held value and whether the state is ready.
func (s State[T]) Value() (T, bool) {
	return s.value, s.phase == PhaseReady
}

// MustValue returns the held value, or the zero value outside PhaseReady.
func (s State[T]) MustValue() T { return s.value }

// Err returns the held error, nil outside PhaseFailed.
func (s State[T]) Err() error {
	if s.phase != PhaseFailed {
		return nil
	}
	return s.err
}

// IsIdle reports whether the state is idle.
func (s State[T]) IsIdle() bool { return s.phase == PhaseIdle }

// IsLoading reports whether a load is in flight.
func (s State[T]) IsLoading() bool { return s.phase == PhaseLoading }

// IsReady reports whether a value is held.
func (s State[T]) IsReady() bool { return s.phase == PhaseReady }

// IsFailed reports whether the last load failed.
func (s State[T]) IsFailed() bool { return s.phase == PhaseFailed }
