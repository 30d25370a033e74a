package sequence

import (
	"context"
	"iter"
)

// All returns a range-over-func view of the sequence. A failure is yielded
// once as the final pair. Leaving the loop early closes the sequence.
func (s *Sequence[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				yield(v, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Collect pulls every value from it and returns them. On failure the values
// pulled so far are returned with the error.
func Collect[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	defer it.Close()
	var result []T
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			return result, nil
		}
		result = append(result, val)
	}
}

// ForEach pulls every value from it and calls fn for each. An error from fn
// stops the loop and closes it.
func ForEach[T any](ctx context.Context, it Iterator[T], fn func(context.Context, T) error) error {
	defer it.Close()
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, val); err != nil {
			return err
		}
	}
}
