package flux

import (
	"sync"

	"go.uber.org/zap"

	"fluxkit/internal/logging"
)

// Reducer computes the next state from the current state and an action. It
// must be pure: no mutation of its inputs, no I/O, no blocking. Returning an
// error rejects the action; the store keeps its current state.
type Reducer[S, A any] func(S, A) (S, error)

// Store owns one current state and the reducer that evolves it. All
// mutations run inside a single critical section, so concurrent Dispatch
// calls never interleave reducer applications and every subscriber observes
// the same total order of states.
type Store[S, A any] struct {
	mu      sync.Mutex
	reducer Reducer[S, A]
	state   S
	subs    []*Subscription[S, A] // in subscription order; fan-out order is stable
	nextSub uint64
	seq     uint64 // successful dispatches so far

	log *zap.Logger
}

// NewStore creates a store holding initial and evolving it with reducer.
func NewStore[S, A any](initial S, reducer Reducer[S, A]) *Store[S, A] {
	if reducer == nil {
		panic("flux: NewStore requires a non-nil reducer")
	}
	return &Store[S, A]{
		reducer: reducer,
		state:   initial,
		log:     logging.Get(logging.CategoryStore),
	}
}

// Placeholder returns a deliberately unusable store for default wiring, e.g.
// as the zero dependency in a registry before real wiring happens. Dispatch
// and Subscribe panic with ErrMisconfiguredStore: using a placeholder is a
// wiring bug, not a runtime condition.
func Placeholder[S, A any]() *Store[S, A] {
	return &Store[S, A]{log: logging.Get(logging.CategoryStore)}
}

// State returns the current state snapshot.
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seq returns the number of successful dispatches applied so far.
func (s *Store[S, A]) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Dispatch applies the reducer to (current state, action). On success the new
// state replaces the current one and is published to every subscription in
// subscription order before Dispatch returns. On reducer failure the state is
// unchanged, nothing is published, and the error is returned wrapped in a
// *ReducerError.
func (s *Store[S, A]) Dispatch(action A) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reducer == nil {
		panic(ErrMisconfiguredStore)
	}

	next, err := s.reducer(s.state, action)
	if err != nil {
		s.log.Debug("reducer rejected action", zap.Error(err))
		return &ReducerError{Action: action, Err: err}
	}

	u := Update[S, A]{Prior: s.state, Action: action, State: next}
	s.state = next
	s.seq++

	// Enqueue to all subscribers while still holding the store lock: every
	// subscriber sees state n queued before any subscriber sees state n+1.
	for _, sub := range s.subs {
		sub.enqueue(u)
	}
	s.log.Debug("dispatched", zap.Uint64("seq", s.seq), zap.Int("subscribers", len(s.subs)))
	return nil
}

// Subscribe registers a new subscription whose first delivered update replays
// the current state, so late subscribers never miss the current snapshot.
// Each subscription has its own unbounded queue; consumers proceed at
// independent rates and cancel locally without affecting the store.
func (s *Store[S, A]) Subscribe() *Subscription[S, A] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reducer == nil {
		panic(ErrMisconfiguredStore)
	}

	sub := newSubscription(s, s.nextSub)
	s.nextSub++
	s.subs = append(s.subs, sub)
	sub.enqueue(Update[S, A]{Prior: s.state, State: s.state, Replay: true})
	go sub.pump()

	s.log.Debug("subscribed", zap.Uint64("subscription", sub.id))
	return sub
}

// remove unregisters a cancelled subscription. Idempotent.
func (s *Store[S, A]) remove(sub *Subscription[S, A]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.subs {
		if cur == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			s.log.Debug("unsubscribed", zap.Uint64("subscription", sub.id))
			return
		}
	}
}
