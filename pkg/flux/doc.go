// Package flux implements a unidirectional-data-flow state container: one
// authoritative immutable state per Store, mutated only by a pure reducer
// applied to dispatched actions, and observed through cancellable
// subscriptions and memoizing listeners.
//
// A Store serializes every mutation behind a single critical section, so all
// subscribers observe the same total order of states. A Subscription is an
// unbounded per-consumer queue that replays the current state first; a slow
// consumer never stalls the store or its peers. A Listener binds a store to a
// set of dependency selectors and one output selector, recomputing its cached
// output only when a tracked dependency actually changed. A Dispatcher is a
// thin forwarding handle for call sites that should not hold a full store
// reference.
//
// Typical wiring:
//
//	store := flux.NewStore(0, func(s int, a CounterAction) (int, error) { ... })
//	lis := flux.NewListener[int, CounterAction, int]()
//	lis.Update(flux.Params[int, CounterAction, int]{
//	    Output: flux.Out(func(s int) int { return s }, flux.NotEqual[int]),
//	})
//	lis.Listen(store)
//	_ = flux.NewDispatcher(store).Dispatch(Increment)
//	current := lis.Output()
package flux
