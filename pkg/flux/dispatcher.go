package flux

import (
	"go.uber.org/zap"

	"fluxkit/internal/logging"
)

// Dispatcher is a stateless forwarding handle over a store, for call sites
// that submit actions but should not hold a full store reference. It carries
// no cache and no concurrency behavior of its own.
type Dispatcher[S, A any] struct {
	store *Store[S, A]
	log   *zap.Logger
}

// NewDispatcher wraps store in a forwarding handle.
func NewDispatcher[S, A any](store *Store[S, A]) Dispatcher[S, A] {
	if store == nil {
		panic("flux: NewDispatcher requires a non-nil store")
	}
	return Dispatcher[S, A]{store: store, log: logging.Get(logging.CategoryDispatch)}
}

// Dispatch forwards the action to the store and returns its outcome
// unchanged.
func (d Dispatcher[S, A]) Dispatch(action A) error {
	err := d.store.Dispatch(action)
	if err != nil {
		d.log.Debug("dispatch failed", zap.Error(err))
	}
	return err
}
