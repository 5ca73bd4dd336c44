package flux

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fluxkit/internal/logging"
)

// Params carries one observation site's configuration into Listener.Update.
//
// ID is an identity token scoping the listener's caches: when it changes
// (including between nil and non-nil), all cached dependency values and the
// cached output are discarded. It must be comparable with ==; nil means "no
// identity".
//
// Filter, when non-nil, pre-screens publications: returning false for
// (priorState, action) skips all selector work for that publication. Err
// toward returning true when unsure. Replayed updates bypass the filter,
// since no action produced them.
//
// Dependencies is the ordered invalidation key; slot position is the cache
// identity. A nil per-slot DidChange is treated as always-changed. With zero
// dependencies, the output is recomputed on every unfiltered publication.
// Changing the dependency type at a position without also changing ID is a
// programmer error (the cached value of the old type meets the new
// predicate).
//
// Output produces the externally visible value. A nil Output.DidChange is
// treated as always-differs, so every recomputation replaces the cache.
type Params[S, A, O any] struct {
	ID           any
	Label        string
	Filter       func(prior S, action A) bool
	Dependencies []DependencySelector[S]
	Output       OutputSelector[S, O]
}

// Listener binds one store to a set of dependency selectors and one output
// selector, caching the last-seen dependency values and the last accepted
// output. Update and Listen are repeatable any number of times and are meant
// to be called by a single logical owner; Output is safe to read from any
// goroutine and never recomputes on read.
type Listener[S, A, O any] struct {
	mu     sync.Mutex
	label  string
	id     any
	hasID  bool
	filter func(S, A) bool
	deps   []DependencySelector[S]
	outSel OutputSelector[S, O]

	depValues []any // positionally keyed; always refreshed on evaluation
	depKnown  []bool
	output    O
	hasOutput bool

	sub *Subscription[S, A]
	gen uint64 // invalidates in-flight run loops after re-Listen/Cancel

	processed atomic.Uint64

	log *zap.Logger
}

// NewListener creates an unbound listener. Call Update then Listen to start
// observing a store.
func NewListener[S, A, O any]() *Listener[S, A, O] {
	return &Listener[S, A, O]{log: logging.Get(logging.CategoryListener)}
}

// Update adopts new construction parameters. Changing ID discards all cached
// dependency values and the cached output; every other parameter change only
// alters how future recomputation decisions are made and never triggers one
// by itself.
func (l *Listener[S, A, O]) Update(p Params[S, A, O]) {
	if p.Output.Select == nil {
		panic("flux: listener requires an output selector")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if p.Label != "" {
		l.label = p.Label
	} else if l.label == "" {
		l.label = uuid.NewString()[:8]
	}

	newID := p.ID != nil
	if newID != l.hasID || (newID && p.ID != l.id) {
		l.depValues = nil
		l.depKnown = nil
		var zero O
		l.output = zero
		l.hasOutput = false
		l.log.Debug("identity changed, caches cleared", zap.String("listener", l.label))
	}
	l.id = p.ID
	l.hasID = newID

	l.filter = p.Filter
	l.deps = p.Dependencies
	l.outSel = p.Output

	// Positional slots beyond the new dependency list are stale identity.
	if len(l.depValues) > len(l.deps) {
		l.depValues = l.depValues[:len(l.deps)]
		l.depKnown = l.depKnown[:len(l.deps)]
	}
}

// Listen (re)subscribes the listener to store. The fresh subscription replays
// the current state, so the first recomputation decision happens immediately
// against whatever caches survived Update. Any previous subscription is
// cancelled first; updates still in flight from it are discarded.
func (l *Listener[S, A, O]) Listen(store *Store[S, A]) {
	if store == nil {
		panic("flux: Listen requires a non-nil store")
	}

	l.mu.Lock()
	if l.outSel.Select == nil {
		l.mu.Unlock()
		panic("flux: Listen before Update")
	}
	l.gen++
	gen := l.gen
	old := l.sub
	l.sub = nil
	l.mu.Unlock()

	if old != nil {
		old.Cancel()
	}

	sub := store.Subscribe()

	l.mu.Lock()
	if l.gen != gen {
		// A concurrent Listen or Cancel superseded us.
		l.mu.Unlock()
		sub.Cancel()
		return
	}
	l.sub = sub
	l.mu.Unlock()

	go l.run(sub, gen)
}

// Cancel stops observing. Cached values and Output remain readable.
func (l *Listener[S, A, O]) Cancel() {
	l.mu.Lock()
	l.gen++
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// Output returns the most recent successfully computed output, or the zero
// value before the first computation. Never recomputes.
func (l *Listener[S, A, O]) Output() O {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.output
}

// Processed returns how many publications the listener has consumed,
// including ones skipped by the filter. Useful for instrumentation and for
// settling in tests.
func (l *Listener[S, A, O]) Processed() uint64 {
	return l.processed.Load()
}

func (l *Listener[S, A, O]) run(sub *Subscription[S, A], gen uint64) {
	for u := range sub.Updates() {
		if !l.handle(u, gen) {
			return
		}
	}
}

// handle applies one publication to the cache. Reports false once the run
// loop's generation has been superseded.
func (l *Listener[S, A, O]) handle(u Update[S, A], gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != gen {
		return false
	}
	defer l.processed.Add(1)

	// Cheap pre-filter: skip all selector work for irrelevant actions.
	if !u.Replay && l.filter != nil && !l.filter(u.Prior, u.Action) {
		l.log.Debug("filtered", zap.String("listener", l.label))
		return true
	}

	// Evaluate every dependency slot against the new state. Any changed (or
	// not yet cached) slot marks the dependencies stale; the cache is
	// refreshed regardless so the next comparison is against the most recent
	// state.
	stale := false
	values := make([]any, len(l.deps))
	for i, d := range l.deps {
		v := d.Select(u.State)
		values[i] = v
		switch {
		case i >= len(l.depKnown) || !l.depKnown[i]:
			stale = true
		case d.DidChange == nil || d.DidChange(l.depValues[i], v):
			stale = true
		}
	}
	l.depValues = values
	l.depKnown = make([]bool, len(l.deps))
	for i := range l.depKnown {
		l.depKnown[i] = true
	}

	// With zero dependencies the filter alone gates recomputation.
	if !stale && len(l.deps) > 0 {
		l.log.Debug("dependencies unchanged", zap.String("listener", l.label))
		return true
	}

	out := l.outSel.Select(u.State)
	if !l.hasOutput || l.outSel.DidChange == nil || l.outSel.DidChange(l.output, out) {
		l.output = out
		l.hasOutput = true
		l.log.Debug("output updated", zap.String("listener", l.label))
	}
	return true
}
