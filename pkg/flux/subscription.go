package flux

import "sync"

// Update describes one publication from a store: the state that was current
// before the action, the action itself, and the state it produced. The first
// update on every subscription is a replay of the state current at
// subscription time; replayed updates have Replay set, no meaningful Action,
// and Prior equal to State.
type Update[S, A any] struct {
	Prior  S
	Action A
	State  S
	Replay bool
}

// Subscription is one consumer's view of a store's publication stream. It
// buffers updates in an unbounded queue drained by a dedicated pump
// goroutine, so a slow consumer never stalls the store or other subscribers.
type Subscription[S, A any] struct {
	store *Store[S, A]
	id    uint64

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []Update[S, A]
	closed   bool
	enqueued uint64

	out  chan Update[S, A]
	done chan struct{}
	once sync.Once
}

func newSubscription[S, A any](store *Store[S, A], id uint64) *Subscription[S, A] {
	sub := &Subscription[S, A]{
		store: store,
		id:    id,
		out:   make(chan Update[S, A]),
		done:  make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)
	return sub
}

// Updates returns the delivery channel. It is closed after Cancel, once the
// pump goroutine has stopped.
func (sub *Subscription[S, A]) Updates() <-chan Update[S, A] {
	return sub.out
}

// Enqueued returns how many updates the store has queued on this
// subscription, including the initial replay.
func (sub *Subscription[S, A]) Enqueued() uint64 {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.enqueued
}

// Cancel stops delivery and unregisters the subscription from its store.
// Pending queued updates are discarded. Idempotent; never affects other
// subscribers.
func (sub *Subscription[S, A]) Cancel() {
	sub.once.Do(func() {
		sub.store.remove(sub)
		sub.mu.Lock()
		sub.closed = true
		sub.queue = nil
		sub.cond.Broadcast()
		sub.mu.Unlock()
		close(sub.done)
	})
}

// enqueue appends one update. Called by the store with its own lock held;
// lock order is always store.mu before sub.mu.
func (sub *Subscription[S, A]) enqueue(u Update[S, A]) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.queue = append(sub.queue, u)
	sub.enqueued++
	sub.cond.Signal()
}

// pump drains the queue to the delivery channel until cancelled.
func (sub *Subscription[S, A]) pump() {
	defer close(sub.out)
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.closed {
			sub.cond.Wait()
		}
		if sub.closed {
			sub.mu.Unlock()
			return
		}
		u := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.out <- u:
		case <-sub.done:
			return
		}
	}
}
