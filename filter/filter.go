// Package filter implements a lazy one-item lookahead filter over a sequence of items.
//
// Slice and Runes adapt a slice and an io.RuneReader into a Source,
// and Collect drains a Filter into a slice. They are part of the public API.
package filter

import (
	"io"
)

// Source is a sequence of items. Next returns io.EOF when the sequence is exhausted.
type Source[T any] interface {
	Next() (T, error)
}

// Decider decides whether cur is kept, given the item that follows it in the source.
// When more is false, cur is the last item and next is the zero value.
// A Decider may carry state that is updated on every call.
type Decider[T any] interface {
	Keep(cur, next T, more bool) bool
}

// DeciderFunc is a function that implements Decider.
type DeciderFunc[T any] func(cur, next T, more bool) bool

// Keep calls f(cur, next, more).
func (f DeciderFunc[T]) Keep(cur, next T, more bool) bool {
	return f(cur, next, more)
}

////////////////////////////////////////////////////////////////

// Filter yields the items of a source that its decider keeps. It is single pass.
type Filter[T any] struct {
	src Source[T]
	d   Decider[T]

	started bool
	cur     T
	hasCur  bool
	err     error
}

// New returns a new Filter. Nothing is read from src until the first call to Next.
func New[T any](src Source[T], d Decider[T]) *Filter[T] {
	return &Filter[T]{
		src: src,
		d:   d,
	}
}

// Next returns the next kept item. It returns io.EOF after the last item, and any error from the source.
// Errors are sticky, the filter cannot be resumed.
func (f *Filter[T]) Next() (T, error) {
	var zero T
	if f.err != nil {
		return zero, f.err
	}
	if !f.started {
		f.started = true
		if !f.pull() {
			return zero, f.err
		}
	}

	for f.hasCur {
		cur := f.cur
		if !f.pull() && f.err != io.EOF {
			return zero, f.err
		}
		if f.d.Keep(cur, f.cur, f.hasCur) {
			return cur, nil
		}
	}
	f.err = io.EOF
	return zero, io.EOF
}

// pull reads the lookahead item into cur. It returns false at the end of the source or on error.
func (f *Filter[T]) pull() bool {
	item, err := f.src.Next()
	if err != nil {
		var zero T
		f.cur, f.hasCur = zero, false
		f.err = err
		return false
	}
	f.cur, f.hasCur = item, true
	return true
}

// Collect reads all kept items from f.
func Collect[T any](f *Filter[T]) ([]T, error) {
	items := []T{}
	for {
		item, err := f.Next()
		if err == io.EOF {
			return items, nil
		} else if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}
