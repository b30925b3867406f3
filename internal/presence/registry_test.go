package presence

import (
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestRegistry_Transitions(t *testing.T) {
	tests := map[string]struct {
		ops      func(r *Registry)
		expAuth  int
		expWorld int
	}{
		"authenticate one": {
			ops: func(r *Registry) {
				r.Connect("c1")
				r.MarkAuthenticated("c1")
			},
			expAuth:  1,
			expWorld: 0,
		},
		"authenticate is idempotent": {
			ops: func(r *Registry) {
				r.MarkAuthenticated("c1")
				r.MarkAuthenticated("c1")
				r.MarkAuthenticated("c1")
			},
			expAuth:  1,
			expWorld: 0,
		},
		"enter world after auth": {
			ops: func(r *Registry) {
				r.MarkAuthenticated("c1")
				r.MarkInWorld("c1")
			},
			expAuth:  1,
			expWorld: 1,
		},
		"enter world without auth is allowed but counted": {
			ops: func(r *Registry) {
				r.MarkInWorld("c1")
			},
			expAuth:  0,
			expWorld: 1,
		},
		"leave world keeps authentication": {
			ops: func(r *Registry) {
				r.MarkAuthenticated("c1")
				r.MarkInWorld("c1")
				r.MarkLeftWorld("c1")
			},
			expAuth:  1,
			expWorld: 0,
		},
		"leave world for unknown id is a no-op": {
			ops: func(r *Registry) {
				r.MarkLeftWorld("ghost")
			},
			expAuth:  0,
			expWorld: 0,
		},
		"remove purges both sets": {
			ops: func(r *Registry) {
				r.MarkAuthenticated("c1")
				r.MarkInWorld("c1")
				r.Remove("c1")
			},
			expAuth:  0,
			expWorld: 0,
		},
		"remove unknown id is a no-op": {
			ops: func(r *Registry) {
				r.MarkAuthenticated("c1")
				r.Remove("ghost")
			},
			expAuth:  1,
			expWorld: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRegistry()
			tt.ops(r)
			testutil.AssertEqual(t, "authenticated", r.CountAuthenticated(), tt.expAuth)
			testutil.AssertEqual(t, "in world", r.CountInWorld(), tt.expWorld)
		})
	}
}

func TestRegistry_SnapshotConsistentAfterRemove(t *testing.T) {
	r := NewRegistry()
	r.MarkAuthenticated("c1")
	r.MarkInWorld("c1")
	r.Remove("c1")

	auth, inWorld := r.Snapshot()
	testutil.AssertEqual(t, "authenticated", auth, 0)
	testutil.AssertEqual(t, "in world", inWorld, 0)
}

func TestRegistry_ConcurrentLifecycles(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Connect(id)
				r.MarkAuthenticated(id)
				r.MarkInWorld(id)
				r.MarkLeftWorld(id)
				r.Remove(id)
			}
		}(id)
	}
	wg.Wait()

	testutil.AssertEqual(t, "connected", r.CountConnected(), 0)
	testutil.AssertEqual(t, "authenticated", r.CountAuthenticated(), 0)
	testutil.AssertEqual(t, "in world", r.CountInWorld(), 0)
}

func TestRegistry_Observers(t *testing.T) {
	r := NewRegistry()

	var mu sync.Mutex
	var seen []Event
	r.Observe(func(tr Transition) {
		mu.Lock()
		seen = append(seen, tr.Event)
		mu.Unlock()
	})

	r.Connect("c1")
	r.MarkAuthenticated("c1")
	r.MarkInWorld("c1")
	r.MarkLeftWorld("c1")
	r.Remove("c1")

	exp := []Event{EventConnected, EventAuthenticated, EventEnteredWorld, EventLeftWorld, EventDisconnected}
	testutil.AssertEqual(t, "event count", len(seen), len(exp))
	for i, e := range exp {
		testutil.AssertEqual(t, "event order", seen[i], e)
	}
}

func TestRegistry_LeftWorldNotNotifiedForUnknown(t *testing.T) {
	r := NewRegistry()

	count := 0
	r.Observe(func(Transition) { count++ })

	r.MarkLeftWorld("ghost")
	testutil.AssertEqual(t, "notifications", count, 0)
}
