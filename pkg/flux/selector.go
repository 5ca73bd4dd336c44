package flux

// DependencySelector projects one tracked dependency value out of state and
// decides whether two observations of it differ. The concrete dependency type
// is erased behind any so a listener can track an arbitrary mix of dependency
// types in one ordered list; the slot position in that list is the stable
// cache identity.
type DependencySelector[S any] struct {
	Select    func(S) any
	DidChange func(old, new any) bool
}

// Dep builds a DependencySelector from a typed projection and change
// predicate, erasing the dependency type D.
func Dep[S, D any](sel func(S) D, didChange func(old, new D) bool) DependencySelector[S] {
	if sel == nil {
		panic("flux: Dep requires a non-nil selector")
	}
	ds := DependencySelector[S]{
		Select: func(s S) any { return sel(s) },
	}
	if didChange != nil {
		ds.DidChange = func(old, new any) bool { return didChange(old.(D), new.(D)) }
	}
	return ds
}

// OutputSelector projects the externally visible derived value out of state,
// with a change predicate deciding whether a recomputed output replaces the
// cached one.
type OutputSelector[S, O any] struct {
	Select    func(S) O
	DidChange func(old, new O) bool
}

// Out builds an OutputSelector. Symmetric with Dep; no type erasure is needed
// because a listener has exactly one output type.
func Out[S, O any](sel func(S) O, didChange func(old, new O) bool) OutputSelector[S, O] {
	if sel == nil {
		panic("flux: Out requires a non-nil selector")
	}
	return OutputSelector[S, O]{Select: sel, DidChange: didChange}
}

// NotEqual is the usual change predicate for comparable dependency and output
// types: changed when the values differ.
func NotEqual[T comparable](old, new T) bool { return old != new }

// Always reports every pair as changed, forcing recomputation on each
// unfiltered publication.
func Always[T any](old, new T) bool { return true }

// Never reports no pair as changed, pinning the first computed value.
func Never[T any](old, new T) bool { return false }
