package resource

import (
	"errors"
	"testing"
)

func TestContainer_StartsIdle(t *testing.T) {
	c := NewContainer[int]()
	if !c.Current().IsIdle() {
		t.Errorf("new container phase = %v, want idle", c.Current().Phase())
	}
}

func TestContainer_CurrentReflectsLatestTransition(t *testing.T) {
	c := NewContainer[int]()
	boom := errors.New("boom")

	c.SetLoading()
	if !c.Current().IsLoading() {
		t.Fatalf("after SetLoading phase = %v", c.Current().Phase())
	}

	c.SetReady(7)
	if v, ok := c.Current().Value(); !ok || v != 7 {
		t.Fatalf("after SetReady value = %d, %v", v, ok)
	}

	c.SetFailed(boom)
	if c.Current().Err() != boom {
		t.Fatalf("after SetFailed err = %v", c.Current().Err())
	}
	if _, ok := c.Current().Value(); ok {
		t.Error("Failed must not retain the prior Ready value")
	}

	// Loading discards the prior error.
	c.SetLoading()
	if c.Current().Err() != nil {
		t.Errorf("after SetLoading err = %v, want nil", c.Current().Err())
	}

	c.SetReady(9)
	if v, _ := c.Current().Value(); v != 9 {
		t.Errorf("last write should win, value = %d", v)
	}
}

func TestContainer_SubscribersNotifiedInOrder(t *testing.T) {
	c := NewContainer[int]()

	var order []string
	c.Subscribe(func(s State[int]) { order = append(order, "first") })
	c.Subscribe(func(s State[int]) { order = append(order, "second") })

	c.SetReady(1)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("notification order = %v", order)
	}
}

func TestContainer_SubscriberSeesPublishedState(t *testing.T) {
	c := NewContainer[int]()

	var seen []State[int]
	c.Subscribe(func(s State[int]) { seen = append(seen, s) })

	c.SetLoading()
	c.SetReady(3)
	c.SetFailed(errors.New("x"))

	if len(seen) != 3 {
		t.Fatalf("got %d notifications, want 3", len(seen))
	}
	if !seen[0].IsLoading() || !seen[1].IsReady() || !seen[2].IsFailed() {
		t.Errorf("phases = %v %v %v", seen[0].Phase(), seen[1].Phase(), seen[2].Phase())
	}
}

func TestContainer_Unsubscribe(t *testing.T) {
	c := NewContainer[int]()

	calls := 0
	unsub := c.Subscribe(func(State[int]) { calls++ })

	c.SetReady(1)
	unsub()
	c.SetReady(2)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	// Unsubscribing twice is harmless.
	unsub()
	c.SetReady(3)
	if calls != 1 {
		t.Errorf("calls after double unsubscribe = %d, want 1", calls)
	}
}

func TestContainer_GenerationGuard(t *testing.T) {
	c := NewContainer[string]()

	stale := c.SetLoading()
	fresh := c.SetLoading()

	// The fresh load completes first; the stale one must not overwrite it.
	if !c.CompleteReady(fresh, "fresh") {
		t.Fatal("fresh completion should publish")
	}
	if c.CompleteReady(stale, "stale") {
		t.Fatal("stale completion should be dropped")
	}
	if v, _ := c.Current().Value(); v != "fresh" {
		t.Errorf("value = %q, want %q", v, "fresh")
	}

	if c.CompleteFailed(stale, errors.New("stale failure")) {
		t.Error("stale failure should be dropped")
	}
	if !c.Current().IsReady() {
		t.Errorf("phase = %v, want ready", c.Current().Phase())
	}
}

func TestContainer_MutateSeesLatestState(t *testing.T) {
	c := NewContainer[[]int]()
	c.SetReady([]int{1, 2})

	// Simulate a publish racing in before a mutation lands.
	c.SetReady([]int{10, 20, 30})

	c.Mutate(func(s State[[]int]) (State[[]int], bool) {
		list, ok := s.Value()
		if !ok {
			return s, false
		}
		return Ready(append([]int{99}, list...)), true
	})

	v, _ := c.Current().Value()
	if len(v) != 4 || v[0] != 99 || v[1] != 10 {
		t.Errorf("mutate result = %v, want prepend against latest state", v)
	}
}

func TestContainer_MutateNoPublishWhenDeclined(t *testing.T) {
	c := NewContainer[int]()
	before := c.Version()

	c.Mutate(func(s State[int]) (State[int], bool) { return s, false })

	if c.Version() != before {
		t.Error("declined mutate must not publish")
	}
}

func TestContainer_VersionMonotonic(t *testing.T) {
	c := NewContainer[int]()
	v0 := c.Version()
	c.SetLoading()
	v1 := c.Version()
	c.SetReady(1)
	v2 := c.Version()

	if !(v0 < v1 && v1 < v2) {
		t.Errorf("versions not increasing: %d %d %d", v0, v1, v2)
	}
}

func TestContainer_SubscriberMayReadCurrent(t *testing.T) {
	c := NewContainer[int]()

	var got int
	c.Subscribe(func(State[int]) {
		got, _ = c.Current().Value()
	})

	c.SetReady(5)
	if got != 5 {
		t.Errorf("subscriber read %d, want 5", got)
	}
}
