package filter

import (
	"io"
)

type sliceSource[T any] struct {
	items []T
}

// Slice returns a Source over the items of a slice.
func Slice[T any](items []T) Source[T] {
	return &sliceSource[T]{items}
}

func (s *sliceSource[T]) Next() (T, error) {
	if len(s.items) == 0 {
		var zero T
		return zero, io.EOF
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item, nil
}

type runeSource struct {
	r io.RuneReader
}

// Runes returns a Source of the runes read from r.
func Runes(r io.RuneReader) Source[rune] {
	if src, ok := r.(Source[rune]); ok {
		return src
	}
	return runeSource{r}
}

func (s runeSource) Next() (rune, error) {
	c, _, err := s.r.ReadRune()
	return c, err
}
