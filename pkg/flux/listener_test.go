package flux_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluxkit/internal/counter"
	"fluxkit/pkg/flux"
)

// waitProcessed settles a listener: blocks until it has consumed at least n
// publications.
func waitProcessed[S, A, O any](t *testing.T, l *flux.Listener[S, A, O], n uint64) {
	t.Helper()
	require.Eventually(t, func() bool { return l.Processed() >= n },
		5*time.Second, time.Millisecond, "listener stuck at %d of %d publications", l.Processed(), n)
}

// outputRecorder wraps an output selector to record every computed value.
type outputRecorder struct {
	mu   sync.Mutex
	seen []int
}

func (r *outputRecorder) selector(s int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, s)
	return s
}

func (r *outputRecorder) values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seen...)
}

func TestListenerOutputFollowsStates(t *testing.T) {
	store := newCounterStore(t, 0)
	rec := &outputRecorder{}

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(flux.Params[int, counter.Action, int]{
		Output: flux.Out(rec.selector, flux.NotEqual[int]),
	})
	lis.Listen(store)
	t.Cleanup(lis.Cancel)

	require.NoError(t, store.Dispatch(counter.Increment))
	require.NoError(t, store.Dispatch(counter.Increment))
	require.NoError(t, store.Dispatch(counter.Decrement))
	waitProcessed(t, lis, 4)

	assert.Equal(t, []int{0, 1, 2, 1}, rec.values())
	assert.Equal(t, 1, lis.Output())
}

func TestUnchangedDependenciesSkipOutputRecomputation(t *testing.T) {
	store := newCounterStore(t, 0)
	var outputCalls atomic.Uint64

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(flux.Params[int, counter.Action, int]{
		Dependencies: []flux.DependencySelector[int]{
			// Track only the decade; single increments never invalidate it.
			flux.Dep(func(s int) int { return s / 10 }, flux.NotEqual[int]),
		},
		Output: flux.Out(func(s int) int {
			outputCalls.Add(1)
			return s
		}, flux.NotEqual[int]),
	})
	lis.Listen(store)
	t.Cleanup(lis.Cancel)

	waitProcessed(t, lis, 1)
	require.EqualValues(t, 1, outputCalls.Load())

	require.NoError(t, store.Dispatch(counter.Increment))
	require.NoError(t, store.Dispatch(counter.Increment))
	waitProcessed(t, lis, 3)

	// Dependency stayed at decade 0, so the cached output survives even
	// though the state moved on.
	assert.EqualValues(t, 1, outputCalls.Load())
	assert.Equal(t, 0, lis.Output())
}

func TestFilterSkipsAllSelectorWork(t *testing.T) {
	store := newCounterStore(t, 0)
	var depCalls, outputCalls atomic.Uint64

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(flux.Params[int, counter.Action, int]{
		Filter: func(prior int, a counter.Action) bool {
			return a != counter.Decrement
		},
		Dependencies: []flux.DependencySelector[int]{
			flux.Dep(func(s int) int {
				depCalls.Add(1)
				return s
			}, flux.NotEqual[int]),
		},
		Output: flux.Out(func(s int) int {
			outputCalls.Add(1)
			return s
		}, flux.NotEqual[int]),
	})
	lis.Listen(store)
	t.Cleanup(lis.Cancel)

	waitProcessed(t, lis, 1)

	require.NoError(t, store.Dispatch(counter.Decrement)) // filtered out
	require.NoError(t, store.Dispatch(counter.Increment))
	waitProcessed(t, lis, 3)

	// One call for the replay, one for the increment; none for the
	// filtered decrement.
	assert.EqualValues(t, 2, depCalls.Load())
	assert.EqualValues(t, 2, outputCalls.Load())
	assert.Equal(t, 0, lis.Output())
}

func TestIdentityChangeClearsCaches(t *testing.T) {
	store := newCounterStore(t, 0)
	var outputCalls atomic.Uint64

	params := flux.Params[int, counter.Action, int]{
		ID: "entity-a",
		Dependencies: []flux.DependencySelector[int]{
			// Never invalidates, so only an empty cache can trigger
			// recomputation.
			flux.Dep(func(s int) int { return s }, flux.Never[int]),
		},
		Output: flux.Out(func(s int) int {
			outputCalls.Add(1)
			return s
		}, flux.NotEqual[int]),
	}

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(params)
	lis.Listen(store)
	t.Cleanup(lis.Cancel)
	waitProcessed(t, lis, 1)
	require.EqualValues(t, 1, outputCalls.Load())

	// Same id: the replay finds warm caches and skips recomputation.
	lis.Update(params)
	lis.Listen(store)
	waitProcessed(t, lis, 2)
	assert.EqualValues(t, 1, outputCalls.Load())

	// New id: caches are discarded, the replay recomputes unconditionally
	// even though the state never changed.
	params.ID = "entity-b"
	lis.Update(params)
	lis.Listen(store)
	waitProcessed(t, lis, 3)
	assert.EqualValues(t, 2, outputCalls.Load())
}

func TestRebindingAloneNeverRecomputes(t *testing.T) {
	store := newCounterStore(t, 0)
	var outputCalls atomic.Uint64

	params := flux.Params[int, counter.Action, int]{
		Dependencies: []flux.DependencySelector[int]{
			flux.Dep(func(s int) int { return s }, flux.NotEqual[int]),
		},
		Output: flux.Out(func(s int) int {
			outputCalls.Add(1)
			return s
		}, flux.NotEqual[int]),
	}

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(params)
	lis.Listen(store)
	t.Cleanup(lis.Cancel)
	waitProcessed(t, lis, 1)

	// New label and filter, same identity, unchanged state: the replayed
	// snapshot compares equal against the warm dependency cache.
	params.Label = "renamed"
	params.Filter = func(int, counter.Action) bool { return true }
	lis.Update(params)
	lis.Listen(store)
	waitProcessed(t, lis, 2)

	assert.EqualValues(t, 1, outputCalls.Load())
}

func TestEqualOutputDoesNotReplaceCache(t *testing.T) {
	// A reducer that maps every action onto the same state value forces
	// recomputation without an output change.
	store := flux.NewStore(7, func(s int, _ string) (int, error) { return s, nil })

	lis := flux.NewListener[int, string, []int]()
	lis.Update(flux.Params[int, string, []int]{
		Output: flux.Out(
			func(s int) []int { return []int{s} },
			func(old, new []int) bool { return old[0] != new[0] },
		),
	})
	lis.Listen(store)
	t.Cleanup(lis.Cancel)
	waitProcessed(t, lis, 1)

	first := lis.Output()
	require.Equal(t, []int{7}, first)

	require.NoError(t, store.Dispatch("noop"))
	waitProcessed(t, lis, 2)

	// The recomputed slice compared equal, so the externally visible value
	// is still the originally cached slice, not a fresh allocation.
	second := lis.Output()
	assert.Same(t, &first[0], &second[0])
}

func TestZeroDependenciesRecomputeWheneverUnfiltered(t *testing.T) {
	store := newCounterStore(t, 0)
	var outputCalls atomic.Uint64

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(flux.Params[int, counter.Action, int]{
		Output: flux.Out(func(s int) int {
			outputCalls.Add(1)
			return s
		}, flux.NotEqual[int]),
	})
	lis.Listen(store)
	t.Cleanup(lis.Cancel)

	require.NoError(t, store.Dispatch(counter.Increment))
	require.NoError(t, store.Dispatch(counter.Decrement))
	waitProcessed(t, lis, 3)

	assert.EqualValues(t, 3, outputCalls.Load())
}

func TestDependencyCacheAlwaysTracksLatestState(t *testing.T) {
	store := newCounterStore(t, 0)

	var mu sync.Mutex
	var compared [][2]int

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(flux.Params[int, counter.Action, int]{
		Dependencies: []flux.DependencySelector[int]{
			flux.Dep(func(s int) int { return s }, func(old, new int) bool {
				mu.Lock()
				compared = append(compared, [2]int{old, new})
				mu.Unlock()
				// Single steps are "unchanged" so the output is never
				// recomputed, yet the cache must still advance.
				return new != old+1
			}),
		},
		Output: flux.Out(func(s int) int { return s }, flux.NotEqual[int]),
	})
	lis.Listen(store)
	t.Cleanup(lis.Cancel)

	require.NoError(t, store.Dispatch(counter.Increment))
	require.NoError(t, store.Dispatch(counter.Increment))
	require.NoError(t, store.Dispatch(counter.Increment))
	waitProcessed(t, lis, 4)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {2, 3}}, compared)
	assert.Equal(t, 0, lis.Output())
}

func TestListenerRetargetsBetweenStores(t *testing.T) {
	storeA := newCounterStore(t, 10)
	storeB := newCounterStore(t, 100)

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(flux.Params[int, counter.Action, int]{
		Output: flux.Out(func(s int) int { return s }, flux.NotEqual[int]),
	})

	lis.Listen(storeA)
	t.Cleanup(lis.Cancel)
	waitProcessed(t, lis, 1)
	assert.Equal(t, 10, lis.Output())

	lis.Listen(storeB)
	require.Eventually(t, func() bool { return lis.Output() == 100 },
		5*time.Second, time.Millisecond)

	// Updates on the abandoned store no longer reach the listener.
	require.NoError(t, storeA.Dispatch(counter.Increment))
	require.NoError(t, storeB.Dispatch(counter.Increment))
	require.Eventually(t, func() bool { return lis.Output() == 101 },
		5*time.Second, time.Millisecond)
}

func TestCancelStopsObservation(t *testing.T) {
	store := newCounterStore(t, 0)

	lis := flux.NewListener[int, counter.Action, int]()
	lis.Update(flux.Params[int, counter.Action, int]{
		Output: flux.Out(func(s int) int { return s }, flux.NotEqual[int]),
	})
	lis.Listen(store)
	waitProcessed(t, lis, 1)

	lis.Cancel()
	processed := lis.Processed()

	require.NoError(t, store.Dispatch(counter.Increment))
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, processed, lis.Processed())
	assert.Equal(t, 0, lis.Output(), "cached output remains readable after Cancel")
}

func TestListenerMisuse(t *testing.T) {
	lis := flux.NewListener[int, counter.Action, int]()

	assert.Panics(t, func() {
		lis.Update(flux.Params[int, counter.Action, int]{})
	}, "Update without an output selector")

	assert.Panics(t, func() {
		lis.Listen(newCounterStore(t, 0))
	}, "Listen before Update")

	lis.Update(flux.Params[int, counter.Action, int]{
		Output: flux.Out(func(s int) int { return s }, flux.NotEqual[int]),
	})
	assert.Panics(t, func() { lis.Listen(nil) }, "Listen with a nil store")
}
