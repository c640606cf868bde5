package sigil

import "sync/atomic"

// Lazy is a compare-and-publish cell for a lazily resolved field.
//
// A cell starts not-evaluated and becomes cached on first access. Concurrent
// first accesses may each run the resolver, but exactly one result is
// published; every access thereafter observes that same value without
// re-evaluating. Once cached, the value is immutable until the owner
// explicitly calls Set or Reset.
type Lazy[T any] struct {
	p atomic.Pointer[lazyBox[T]]
}

type lazyBox[T any] struct{ val T }

// Get returns the cached value, computing it with resolve when the cell is
// still empty. resolve may run more than once under contention; only one
// result wins.
func (l *Lazy[T]) Get(resolve func() T) T {
	if b := l.p.Load(); b != nil {
		return b.val
	}
	b := &lazyBox[T]{val: resolve()}
	if l.p.CompareAndSwap(nil, b) {
		return b.val
	}
	return l.p.Load().val
}

// Cached returns the published value, if any, without evaluating.
func (l *Lazy[T]) Cached() (T, bool) {
	if b := l.p.Load(); b != nil {
		return b.val, true
	}
	var zero T
	return zero, false
}

// Set publishes v, replacing any cached value.
func (l *Lazy[T]) Set(v T) { l.p.Store(&lazyBox[T]{val: v}) }

// Reset clears the cell back to not-evaluated.
func (l *Lazy[T]) Reset() { l.p.Store(nil) }
