package flux

import (
	"errors"
	"fmt"
)

// ErrMisconfiguredStore is the panic value raised when a placeholder store is
// dispatched to or subscribed to. Hitting it means a wiring bug: some call
// site was handed a Placeholder that was never replaced with a real store.
var ErrMisconfiguredStore = errors.New("flux: store has no reducer; replace the placeholder with a configured store")

// ReducerError wraps the domain error returned by a reducer that rejected an
// action. The store's state is unchanged and nothing was published, so the
// dispatch is safe to retry.
type ReducerError struct {
	Action any
	Err    error
}

func (e *ReducerError) Error() string {
	return fmt.Sprintf("flux: reducer rejected %T: %v", e.Action, e.Err)
}

func (e *ReducerError) Unwrap() error { return e.Err }
