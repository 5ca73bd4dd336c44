// Package testutil provides deterministic harnesses for driving store
// subscriptions in tests, so assertions can await the Nth published state
// instead of sleeping.
package testutil

import (
	"testing"
	"time"

	"fluxkit/pkg/flux"
)

// Collector subscribes to a store and records every update its subscription
// delivers, in delivery order.
type Collector[S, A any] struct {
	sub     *flux.Subscription[S, A]
	updates chan flux.Update[S, A]
	done    chan struct{}

	recorded []flux.Update[S, A]
}

// Collect subscribes to store and starts recording. The first recorded state
// is the subscription-time replay.
func Collect[S, A any](store *flux.Store[S, A]) *Collector[S, A] {
	c := &Collector[S, A]{
		sub:     store.Subscribe(),
		updates: make(chan flux.Update[S, A], 64),
		done:    make(chan struct{}),
	}
	go c.loop()
	return c
}

func (c *Collector[S, A]) loop() {
	defer close(c.done)
	for u := range c.sub.Updates() {
		c.updates <- u
	}
	close(c.updates)
}

// WaitStates blocks until n states have been recorded and returns them.
// Fails the test after five seconds.
func (c *Collector[S, A]) WaitStates(tb testing.TB, n int) []S {
	tb.Helper()
	us := c.WaitUpdates(tb, n)
	states := make([]S, len(us))
	for i, u := range us {
		states[i] = u.State
	}
	return states
}

// WaitUpdates blocks until n updates have been recorded and returns them.
func (c *Collector[S, A]) WaitUpdates(tb testing.TB, n int) []flux.Update[S, A] {
	tb.Helper()
	deadline := time.NewTimer(5 * time.Second)
	defer deadline.Stop()
	for len(c.recorded) < n {
		select {
		case u, ok := <-c.updates:
			if !ok {
				tb.Fatalf("subscription closed after %d of %d updates", len(c.recorded), n)
				return c.recorded
			}
			c.recorded = append(c.recorded, u)
		case <-deadline.C:
			tb.Fatalf("timed out waiting for %d updates, have %d", n, len(c.recorded))
			return c.recorded
		}
	}
	return append([]flux.Update[S, A](nil), c.recorded[:n]...)
}

// Cancel stops the subscription and waits for the recording loop to exit.
// Undrained updates are discarded.
func (c *Collector[S, A]) Cancel() {
	c.sub.Cancel()
	for range c.updates {
	}
	<-c.done
}
